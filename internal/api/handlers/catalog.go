package handlers

import (
	"net/http"

	"apkrisk/internal/config"
	"apkrisk/internal/domain/services"
	"apkrisk/pkg/logger"
)

// CatalogHandler exposes the effective metric catalog
type CatalogHandler struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(cfg *config.Config, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		cfg:    cfg,
		logger: log.WithComponent("catalog-handler"),
	}
}

// CatalogMetric is one declared metric with its effective weight and cap.
type CatalogMetric struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Source      string  `json:"source"`
	Weight      float64 `json:"weight"`
	Cap         int     `json:"cap,omitempty"`
	Description string  `json:"description"`
}

// CatalogResponse lists the metrics in declaration order plus the score bands.
type CatalogResponse struct {
	EngineVersion string          `json:"engine_version"`
	Metrics       []CatalogMetric `json:"metrics"`
	Bands         struct {
		Medium int `json:"medium"`
		High   int `json:"high"`
	} `json:"bands"`
}

// List handles GET /api/v1/catalog
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog, err := services.ResolveCatalog(h.cfg.Scoring.Overrides())
	if err != nil {
		h.logger.Error().Err(err).Msg("configured scoring overrides are invalid")
		respondError(w, http.StatusInternalServerError, "scoring configuration is invalid")
		return
	}

	resp := CatalogResponse{EngineVersion: services.EngineVersion}
	for _, spec := range catalog.Specs() {
		resp.Metrics = append(resp.Metrics, CatalogMetric{
			Name:        spec.Name,
			Kind:        string(spec.Kind),
			Source:      string(spec.Source),
			Weight:      spec.DefaultWeight,
			Cap:         spec.Cap,
			Description: spec.Description,
		})
	}
	resp.Bands.Medium = h.cfg.Scoring.Bands.Medium
	resp.Bands.High = h.cfg.Scoring.Bands.High

	respondJSON(w, http.StatusOK, resp)
}
