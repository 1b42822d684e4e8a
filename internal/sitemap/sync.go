package sitemap

import (
	"fmt"
	"log/slog"

	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// SyncSummary reports what a reconciliation pass changed.
type SyncSummary struct {
	ModulesCreated int `json:"modulesCreated"`
	ModulesUpdated int `json:"modulesUpdated"`
	PagesCreated   int `json:"pagesCreated"`
	PagesUpdated   int `json:"pagesUpdated"`
	TotalModules   int `json:"totalModules"`
	TotalPages     int `json:"totalPages"`
}

// Synchronizer reconciles a sitemap definition into the catalog store.
// It upserts by slug and never deletes: entities removed from the
// definition stay in the catalog for manual curation.
type Synchronizer struct {
	store  core.Store
	logger *slog.Logger
}

// NewSynchronizer creates a synchronizer. A nil logger discards output.
func NewSynchronizer(store core.Store, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synchronizer{store: store, logger: logger}
}

// Sync applies the definition to the store. Running twice against an
// unchanged definition produces zero additional creates; adding one item
// to the definition produces exactly one create and no changes elsewhere.
func (s *Synchronizer) Sync(def *Definition) (*SyncSummary, error) {
	summary := &SyncSummary{
		TotalModules: len(def.Modules),
	}

	for order, md := range def.Modules {
		module, err := s.store.GetModuleBySlug(md.Slug)
		if err != nil {
			return nil, fmt.Errorf("failed to look up module %s: %w", md.Slug, err)
		}

		if module == nil {
			module = &core.Module{
				Name:        md.Name,
				Slug:        md.Slug,
				Description: md.Description,
				Order:       order,
				Enabled:     true,
			}
			if err := s.store.CreateModule(module); err != nil {
				return nil, fmt.Errorf("failed to create module %s: %w", md.Slug, err)
			}
			summary.ModulesCreated++
			s.logger.Info("created module", slog.String("slug", md.Slug))
		} else {
			module.Name = md.Name
			module.Order = order
			if err := s.store.UpdateModule(module); err != nil {
				return nil, fmt.Errorf("failed to update module %s: %w", md.Slug, err)
			}
			summary.ModulesUpdated++
		}

		for itemOrder, item := range md.Items {
			summary.TotalPages++
			slug := PageSlug(md.Slug, item.ID)

			page, err := s.store.GetPageBySlug(slug)
			if err != nil {
				return nil, fmt.Errorf("failed to look up page %s: %w", slug, err)
			}

			if page == nil {
				page = &core.Page{
					ModuleID: module.ID,
					Name:     item.Name,
					Slug:     slug,
					Route:    item.Route,
					Order:    itemOrder,
					Enabled:  true,
				}
				if err := s.store.CreatePage(page); err != nil {
					return nil, fmt.Errorf("failed to create page %s: %w", slug, err)
				}
				summary.PagesCreated++
				s.logger.Info("created page", slog.String("slug", slug), slog.String("route", item.Route))
			} else {
				page.Name = item.Name
				page.Route = item.Route
				page.Order = itemOrder
				if err := s.store.UpdatePage(page); err != nil {
					return nil, fmt.Errorf("failed to update page %s: %w", slug, err)
				}
				summary.PagesUpdated++
			}
		}
	}

	s.logger.Info("sitemap sync complete",
		slog.Int("modules_created", summary.ModulesCreated),
		slog.Int("modules_updated", summary.ModulesUpdated),
		slog.Int("pages_created", summary.PagesCreated),
		slog.Int("pages_updated", summary.PagesUpdated))

	return summary, nil
}
