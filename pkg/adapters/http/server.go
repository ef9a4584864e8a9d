package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/optigate"
	"github.com/aretw0/optigate/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// Facade defines the client operations exposed over HTTP.
// *optigate.Client implements it.
type Facade interface {
	Available(ctx context.Context) bool
	Snapshot(ctx context.Context) domain.Snapshot
	ActiveExperiments(ctx context.Context) []string
	AllVariations(ctx context.Context) map[string]domain.Variation
	PossibleIDs(ctx context.Context, name string) []string
	ExperimentByName(ctx context.Context, name string) *domain.Experiment
	IsEnabled(ctx context.Context, name string) bool
	IsActive(ctx context.Context, name string) bool
	IsNameUnique(ctx context.Context, name string) bool
	Activate(ctx context.Context, name string) bool
	Variant(ctx context.Context, name string) []string
	Tag(ctx context.Context, tags ...any) error
	Track(ctx context.Context, event string, opts ...optigate.TrackOption)
}

// Server serves the facade as a JSON API.
type Server struct {
	Facade Facade
}

// Option configures the handler.
type Option func(chi.Router)

// WithMetrics mounts a metrics handler (e.g. promhttp.Handler()) on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(r chi.Router) {
		r.Method(http.MethodGet, "/metrics", h)
	}
}

// NewHandler creates a new HTTP handler for the facade.
func NewHandler(facade Facade, opts ...Option) http.Handler {
	server := &Server{Facade: facade}
	r := chi.NewRouter()

	r.Get("/health", server.GetHealth)
	r.Get("/state", server.GetState)
	r.Get("/experiments/active", server.GetActiveExperiments)
	r.Get("/experiments/{name}", server.GetExperiment)
	r.Post("/experiments/{name}/activate", server.Activate)
	r.Get("/experiments/{name}/variant", server.GetVariant)
	r.Get("/variations", server.GetVariations)
	r.Post("/track", server.Track)
	r.Post("/tag", server.Tag)

	for _, opt := range opts {
		opt(r)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ExperimentResponse describes an experiment resolved by name.
type ExperimentResponse struct {
	Experiment  *domain.Experiment `json:"experiment"`
	PossibleIDs []string           `json:"possibleIds"`
	Unique      bool               `json:"unique"`
	Enabled     bool               `json:"enabled"`
	Active      bool               `json:"active"`
}

// VariantResponse carries the variation IDs of an experiment and the first
// one resolved to a full variation.
type VariantResponse struct {
	VariationIDs []string          `json:"variationIds"`
	Variation    *domain.Variation `json:"variation"`
}

// TrackRequest is the body of POST /track.
type TrackRequest struct {
	Event   string `json:"event"`
	Revenue *int64 `json:"revenue,omitempty"`
}

// TagRequest is the body of POST /tag. Every entry must be a JSON object.
type TagRequest struct {
	Tags []any `json:"tags"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	resp := map[string]any{"status": "ok", "host": true}
	if !s.Facade.Available(r.Context()) {
		status = http.StatusServiceUnavailable
		resp = map[string]any{"status": "degraded", "host": false}
	}
	writeJSON(w, status, resp)
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Facade.Snapshot(r.Context()))
}

// GetActiveExperiments handles GET /experiments/active.
func (s *Server) GetActiveExperiments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Facade.ActiveExperiments(r.Context()))
}

// GetVariations handles GET /variations.
func (s *Server) GetVariations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Facade.AllVariations(r.Context()))
}

// GetExperiment handles GET /experiments/{name}.
func (s *Server) GetExperiment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	exp := s.Facade.ExperimentByName(ctx, name)
	if exp == nil {
		http.Error(w, "experiment not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ExperimentResponse{
		Experiment:  exp,
		PossibleIDs: s.Facade.PossibleIDs(ctx, name),
		Unique:      s.Facade.IsNameUnique(ctx, name),
		Enabled:     s.Facade.IsEnabled(ctx, name),
		Active:      s.Facade.IsActive(ctx, name),
	})
}

// Activate handles POST /experiments/{name}/activate.
func (s *Server) Activate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	active := s.Facade.Activate(r.Context(), name)
	slog.Debug("Activate", "experiment", name, "active", active)
	writeJSON(w, http.StatusOK, map[string]bool{"active": active})
}

// GetVariant handles GET /experiments/{name}/variant.
func (s *Server) GetVariant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids := s.Facade.Variant(ctx, chi.URLParam(r, "name"))

	resp := VariantResponse{VariationIDs: ids}
	if ids == nil {
		resp.VariationIDs = []string{}
	}
	if len(ids) > 0 {
		if v, ok := s.Facade.AllVariations(ctx)[ids[0]]; ok {
			resp.Variation = &v
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Track handles POST /track.
func (s *Server) Track(w http.ResponseWriter, r *http.Request) {
	var body TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("Track: Invalid request body", "error", err)
		return
	}
	if body.Event == "" {
		http.Error(w, "event is required", http.StatusBadRequest)
		return
	}

	var opts []optigate.TrackOption
	if body.Revenue != nil {
		opts = append(opts, optigate.WithRevenue(*body.Revenue))
	}
	s.Facade.Track(r.Context(), body.Event, opts...)
	w.WriteHeader(http.StatusAccepted)
}

// Tag handles POST /tag.
func (s *Server) Tag(w http.ResponseWriter, r *http.Request) {
	var body TagRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("Tag: Invalid request body", "error", err)
		return
	}

	if err := s.Facade.Tag(r.Context(), body.Tags...); err != nil {
		if errors.Is(err, domain.ErrInvalidTagType) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Tag error", http.StatusInternalServerError)
		slog.Error("Tag failed", "error", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
