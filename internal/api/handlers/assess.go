package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"apkrisk/internal/config"
	"apkrisk/internal/domain/models"
	"apkrisk/internal/domain/services"
	"apkrisk/internal/infrastructure/cache"
	"apkrisk/pkg/logger"
)

// AssessRequest is the per-job input: raw static findings, the collected
// dynamic event sequence (possibly empty), and transient scoring overrides.
type AssessRequest struct {
	PackageName     string                         `json:"package_name"`
	StaticResults   map[string]models.StaticResult `json:"static_results"`
	DynamicEvents   []models.InstrumentationEvent  `json:"dynamic_events,omitempty"`
	ConfigOverrides *models.ScoringOverrides       `json:"config_overrides,omitempty"`
}

// AssessHandler handles risk assessment job submissions
type AssessHandler struct {
	pipeline *services.Pipeline
	cache    *cache.AssessmentCache
	cfg      *config.Config
	logger   *logger.Logger
}

// NewAssessHandler creates a new assessment handler
func NewAssessHandler(pipeline *services.Pipeline, c *cache.AssessmentCache, cfg *config.Config, log *logger.Logger) *AssessHandler {
	return &AssessHandler{
		pipeline: pipeline,
		cache:    c,
		cfg:      cfg,
		logger:   log.WithComponent("assess-handler"),
	}
}

// Submit handles POST /api/v1/assess
func (h *AssessHandler) Submit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.StaticResults) == 0 {
		respondError(w, http.StatusBadRequest, "static_results is required")
		return
	}
	if max := h.cfg.Assessing.MaxEvents; max > 0 && len(req.DynamicEvents) > max {
		respondError(w, http.StatusBadRequest, "too many dynamic events")
		return
	}

	digest, served := h.tryCache(w, r, &req)
	if served {
		return
	}

	assessment, err := h.pipeline.Run(r.Context(), services.Job{
		PackageName:   req.PackageName,
		StaticResults: req.StaticResults,
		DynamicEvents: req.DynamicEvents,
		Overrides:     h.mergeOverrides(req.ConfigOverrides),
	})
	if err != nil {
		h.respondPipelineError(w, req.PackageName, err)
		observeAssessment("failed", time.Since(start))
		return
	}

	if h.cache != nil && digest != "" {
		if err := h.cache.Put(r.Context(), digest, assessment); err != nil {
			h.logger.Warn().Err(err).Msg("failed to cache assessment")
		}
	}

	observeAssessment(string(assessment.RiskLevel), time.Since(start))
	respondJSON(w, http.StatusOK, assessment)
}

// tryCache computes the identical-input cache key and serves a cached
// assessment when one exists. It returns the digest for the post-run Put
// and whether the response was already written.
func (h *AssessHandler) tryCache(w http.ResponseWriter, r *http.Request, req *AssessRequest) (string, bool) {
	if h.cache == nil {
		return "", false
	}

	digest, err := cache.JobDigest(req)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to digest job input, skipping cache")
		return "", false
	}

	cached, err := h.cache.Get(r.Context(), digest)
	if err == nil {
		w.Header().Set("X-Cache", "hit")
		respondJSON(w, http.StatusOK, cached)
		return digest, true
	}
	if !errors.Is(err, cache.ErrMiss) {
		h.logger.Warn().Err(err).Msg("cache lookup failed")
	}
	return digest, false
}

// mergeOverrides layers the request's transient overrides over the
// deployment-level ones from configuration; request keys win.
func (h *AssessHandler) mergeOverrides(reqOverrides *models.ScoringOverrides) models.ScoringOverrides {
	merged := models.ScoringOverrides{
		Weights: map[string]float64{},
		Caps:    map[string]int{},
	}
	for name, weight := range h.cfg.Scoring.Weights {
		merged.Weights[name] = weight
	}
	for name, c := range h.cfg.Scoring.Caps {
		merged.Caps[name] = c
	}
	if reqOverrides != nil {
		for name, weight := range reqOverrides.Weights {
			merged.Weights[name] = weight
		}
		for name, c := range reqOverrides.Caps {
			merged.Caps[name] = c
		}
	}
	return merged
}

// respondPipelineError maps typed engine failures onto HTTP statuses.
func (h *AssessHandler) respondPipelineError(w http.ResponseWriter, packageName string, err error) {
	var cfgErr *services.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		respondError(w, http.StatusBadRequest, cfgErr.Error())
	case errors.Is(err, services.ErrMandatoryExtractorMissing):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error().Err(err).Str("package", packageName).Msg("assessment failed")
		respondError(w, http.StatusInternalServerError, "assessment failed")
	}
}
