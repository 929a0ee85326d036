// Package server exposes the dedup engine over HTTP for form frontends: a
// scan endpoint for the review queue and a check endpoint the live duplicate
// warning calls as the user types.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dedup/internal/dedup"
	"github.com/sells-group/lead-dedup/internal/livecheck"
	"github.com/sells-group/lead-dedup/internal/model"
	"github.com/sells-group/lead-dedup/internal/store"
)

// Server handles HTTP requests against a lead store.
type Server struct {
	store store.Store
	cfg   dedup.Config
	log   *zap.Logger
}

// New creates a Server.
func New(st store.Store, cfg dedup.Config) *Server {
	return &Server{
		store: st,
		cfg:   cfg,
		log:   zap.L().With(zap.String("component", "server")),
	}
}

// Router builds the chi router with CORS enabled for browser frontends.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/duplicates", s.handleDuplicates)
	r.Post("/check", s.handleCheck)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// duplicatesResponse is the scan result payload.
type duplicatesResponse struct {
	Stats  model.DuplicateStats   `json:"stats"`
	Groups []model.DuplicateGroup `json:"groups"`
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg
	if raw := r.URL.Query().Get("min"); raw != "" {
		minSim, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min must be an integer")
			return
		}
		cfg.MinSimilarity = minSim
		if cfg.MediumThreshold < cfg.MinSimilarity {
			cfg.MediumThreshold = cfg.MinSimilarity
		}
		if err := cfg.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	leads, err := s.store.ListLeads(r.Context(), store.LeadFilter{})
	if err != nil {
		s.log.Error("list leads failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list leads failed")
		return
	}

	groups := dedup.FindDuplicates(leads, cfg)
	writeJSON(w, http.StatusOK, duplicatesResponse{
		Stats:  dedup.ComputeStats(groups),
		Groups: groups,
	})
}

// checkRequest carries the form field values to evaluate.
type checkRequest struct {
	Fields    map[model.FieldKind]string `json:"fields"`
	ExcludeID string                     `json:"exclude_id,omitempty"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "fields is required")
		return
	}

	leads, err := s.store.ListLeads(r.Context(), store.LeadFilter{})
	if err != nil {
		s.log.Error("list leads failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list leads failed")
		return
	}

	result := livecheck.Check(livecheck.Input{
		Fields:    req.Fields,
		ExcludeID: req.ExcludeID,
	}, leads, s.cfg)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
