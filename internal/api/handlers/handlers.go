package handlers

import (
	"encoding/json"
	"net/http"

	"apkrisk/internal/config"
	"apkrisk/internal/domain/services"
	"apkrisk/internal/infrastructure/cache"
	"apkrisk/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health  *HealthHandler
	Assess  *AssessHandler
	Catalog *CatalogHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Pipeline *services.Pipeline
	Cache    *cache.AssessmentCache // nil when the result cache is disabled
	Config   *config.Config
	Logger   *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Cache, deps.Config, deps.Logger),
		Assess:  NewAssessHandler(deps.Pipeline, deps.Cache, deps.Config, deps.Logger),
		Catalog: NewCatalogHandler(deps.Config, deps.Logger),
	}
}

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
