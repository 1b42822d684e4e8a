package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// --- Module operations ---

// CreateModule inserts a new module. An empty ID is assigned a UUID.
func (s *SQLiteStore) CreateModule(m *core.Module) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if m.ID == "" {
		m.ID = generateID()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	s.logger.Debug("creating module", slog.String("id", m.ID), slog.String("slug", m.Slug))

	_, err := s.db.Exec(
		`INSERT INTO modules (id, name, slug, description, sort_order, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Slug, m.Description, m.Order, m.Enabled, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}

// UpdateModule updates a module's display fields. The slug is the
// reconciliation key and is never rewritten.
func (s *SQLiteStore) UpdateModule(m *core.Module) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	m.UpdatedAt = time.Now().UTC()
	result, err := s.db.Exec(
		`UPDATE modules SET name = ?, description = ?, sort_order = ?, enabled = ?, updated_at = ? WHERE id = ?`,
		m.Name, m.Description, m.Order, m.Enabled, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("module not found: %s", m.ID)
	}
	return nil
}

// GetModule retrieves a module by ID.
func (s *SQLiteStore) GetModule(id string) (*core.Module, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	return s.scanModule(s.db.QueryRow(
		`SELECT id, name, slug, description, sort_order, enabled, created_at, updated_at
		 FROM modules WHERE id = ?`, id))
}

// GetModuleBySlug retrieves a module by slug.
// Returns (nil, nil) when no module carries the slug.
func (s *SQLiteStore) GetModuleBySlug(slug string) (*core.Module, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	m, err := s.scanModule(s.db.QueryRow(
		`SELECT id, name, slug, description, sort_order, enabled, created_at, updated_at
		 FROM modules WHERE slug = ?`, slug))
	if err != nil && errors.Is(err, errNotFound) {
		return nil, nil
	}
	return m, err
}

// ListModules retrieves all modules ordered by sort order.
func (s *SQLiteStore) ListModules() ([]*core.Module, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, name, slug, description, sort_order, enabled, created_at, updated_at
		 FROM modules ORDER BY sort_order, slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	defer rows.Close()

	var modules []*core.Module
	for rows.Next() {
		m := &core.Module{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Slug, &m.Description, &m.Order, &m.Enabled, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// DeleteModule removes a module by ID.
func (s *SQLiteStore) DeleteModule(id string) error {
	return s.deleteByID("modules", "module", id)
}

// errNotFound marks a row-level miss; exported lookups convert it to
// either an error message or (nil, nil) per operation, and callers can
// detect it with errors.Is(err, core.ErrNotFound).
var errNotFound = core.ErrNotFound

func (s *SQLiteStore) scanModule(row *sql.Row) (*core.Module, error) {
	m := &core.Module{}
	err := row.Scan(&m.ID, &m.Name, &m.Slug, &m.Description, &m.Order, &m.Enabled, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("module %w", errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return m, nil
}

// --- Page operations ---

// CreatePage inserts a new page. An empty ID is assigned a UUID.
func (s *SQLiteStore) CreatePage(p *core.Page) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if p.ID == "" {
		p.ID = generateID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	s.logger.Debug("creating page", slog.String("id", p.ID), slog.String("slug", p.Slug))

	_, err := s.db.Exec(
		`INSERT INTO pages (id, module_id, name, slug, route, description, sort_order, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ModuleID, p.Name, p.Slug, p.Route, p.Description, p.Order, p.Enabled, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	return nil
}

// UpdatePage updates a page's display fields and route. The slug is
// never rewritten.
func (s *SQLiteStore) UpdatePage(p *core.Page) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	p.UpdatedAt = time.Now().UTC()
	result, err := s.db.Exec(
		`UPDATE pages SET name = ?, route = ?, description = ?, sort_order = ?, enabled = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Route, p.Description, p.Order, p.Enabled, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("page not found: %s", p.ID)
	}
	return nil
}

// GetPage retrieves a page by ID.
func (s *SQLiteStore) GetPage(id string) (*core.Page, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	return s.scanPage(s.db.QueryRow(
		`SELECT id, module_id, name, slug, route, description, sort_order, enabled, created_at, updated_at
		 FROM pages WHERE id = ?`, id))
}

// GetPageBySlug retrieves a page by slug.
// Returns (nil, nil) when no page carries the slug.
func (s *SQLiteStore) GetPageBySlug(slug string) (*core.Page, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	p, err := s.scanPage(s.db.QueryRow(
		`SELECT id, module_id, name, slug, route, description, sort_order, enabled, created_at, updated_at
		 FROM pages WHERE slug = ?`, slug))
	if err != nil && errors.Is(err, errNotFound) {
		return nil, nil
	}
	return p, err
}

// GetPages retrieves pages ordered by sort order, filtered to a module
// when moduleID is non-empty.
func (s *SQLiteStore) GetPages(moduleID string) ([]*core.Page, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, module_id, name, slug, route, description, sort_order, enabled, created_at, updated_at
	          FROM pages ORDER BY sort_order, slug`
	args := []any{}
	if moduleID != "" {
		query = `SELECT id, module_id, name, slug, route, description, sort_order, enabled, created_at, updated_at
		         FROM pages WHERE module_id = ? ORDER BY sort_order, slug`
		args = append(args, moduleID)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []*core.Page
	for rows.Next() {
		p := &core.Page{}
		if err := rows.Scan(&p.ID, &p.ModuleID, &p.Name, &p.Slug, &p.Route, &p.Description, &p.Order, &p.Enabled, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// DeletePage removes a page by ID.
func (s *SQLiteStore) DeletePage(id string) error {
	return s.deleteByID("pages", "page", id)
}

func (s *SQLiteStore) scanPage(row *sql.Row) (*core.Page, error) {
	p := &core.Page{}
	err := row.Scan(&p.ID, &p.ModuleID, &p.Name, &p.Slug, &p.Route, &p.Description, &p.Order, &p.Enabled, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("page %w", errNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return p, nil
}

// deleteByID removes one row from the named table.
func (s *SQLiteStore) deleteByID(table, kind, id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.Exec(`DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return nil
}
