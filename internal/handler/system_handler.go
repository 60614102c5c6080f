package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seshat-edu/seshat-backend/internal/response"
)

// SubjectCatalogue is the static catalogue served by GET /materias.
var SubjectCatalogue = []string{"Matemática", "Português", "História", "Redação", "Física"}

// Check pings one dependency for /health.
type Check func(ctx context.Context) error

// SystemHandler serves liveness, health and the subject catalogue.
type SystemHandler struct {
	checks map[string]Check
	log    zerolog.Logger
}

func NewSystemHandler(checks map[string]Check, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		checks: checks,
		log:    log.With().Str("component", "system_handler").Logger(),
	}
}

// Root godoc
// GET /
func (h *SystemHandler) Root(c *gin.Context) {
	response.Message(c, http.StatusOK, "API do Projeto SeShat está no ar!")
}

// Health godoc
// GET /health
// Reports 503 when any dependency check fails.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.checks))
	status, code := "ok", http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			deps[name] = "down"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	response.Success(c, code, gin.H{"status": status, "dependencies": deps})
}

// Subjects godoc
// GET /materias
func (h *SystemHandler) Subjects(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"materias_disponiveis": SubjectCatalogue})
}
