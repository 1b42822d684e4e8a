package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pagecheck-labs/pagecheck/internal/runner"
	"github.com/pagecheck-labs/pagecheck/internal/sitemap"
	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// defaultRunListLimit bounds unqualified run-history reads.
const defaultRunListLimit = 50

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	tree, err := s.store.GetFullHierarchy()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if tree == nil {
		tree = []*core.ModuleTree{}
	}
	s.writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	def, err := sitemap.Load(s.sitemapPath)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	summary, err := s.synchronizer.Sync(def)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req runner.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !req.Scope.Valid() {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown scope: " + string(req.Scope)})
		return
	}

	summary, err := s.runner.Execute(r.Context(), req, nil)
	if err != nil && !runner.IsCancelled(err) {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.store.ListRuns(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []*core.TestRun{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(id)
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	results, err := s.store.GetResultsForRun(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if results == nil {
		results = []*core.TestRunResult{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run":     run,
		"results": results,
	})
}

func (s *Server) handleCreateSweep(w http.ResponseWriter, r *http.Request) {
	if s.newSession == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "sweep execution is not configured"})
		return
	}

	var req runner.SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.sweeper.Sweep(r.Context(), s.newSession(), req, nil)
	if err != nil && !runner.IsCancelled(err) {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleDevLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListDevTestLog(defaultRunListLimit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []*core.DevTestLogEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Error("request failed", slog.String("error", err.Error()))
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
