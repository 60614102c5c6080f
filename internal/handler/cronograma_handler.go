package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seshat-edu/seshat-backend/internal/middleware"
	"github.com/seshat-edu/seshat-backend/internal/model"
	"github.com/seshat-edu/seshat-backend/internal/response"
	"github.com/seshat-edu/seshat-backend/internal/service"
	"github.com/seshat-edu/seshat-backend/internal/validator"
)

// CronogramaHandler handles the caller's study plan.
// Every route requires RequireJWT.
type CronogramaHandler struct {
	cronogramaService *service.CronogramaService
	log               zerolog.Logger
}

// NewCronogramaHandler creates a new CronogramaHandler.
func NewCronogramaHandler(cronogramaService *service.CronogramaService, log zerolog.Logger) *CronogramaHandler {
	return &CronogramaHandler{
		cronogramaService: cronogramaService,
		log:               log.With().Str("component", "cronograma_handler").Logger(),
	}
}

func (h *CronogramaHandler) ownerID(c *gin.Context) (int, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return 0, false
	}
	return claims.UserID, true
}

// GetMine godoc
// GET /cronograma/me
func (h *CronogramaHandler) GetMine(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	cronograma, err := h.cronogramaService.GetMine(c.Request.Context(), ownerID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cronograma": cronograma})
}

// Weekly godoc
// GET /cronograma/me/semanal
func (h *CronogramaHandler) Weekly(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	week, err := h.cronogramaService.Weekly(c.Request.Context(), ownerID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, week)
}

// AddMateria godoc
// POST /cronograma/materias
func (h *CronogramaHandler) AddMateria(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req model.CreateMateriaRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	materia, err := h.cronogramaService.AddMateria(c.Request.Context(), ownerID, req.Nome)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"materia": materia})
}

// DeleteMateria godoc
// DELETE /cronograma/materias/:id
func (h *CronogramaHandler) DeleteMateria(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	materiaID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.cronogramaService.DeleteMateria(c.Request.Context(), ownerID, materiaID); err != nil {
		failService(c, h.log, err)
		return
	}

	response.Message(c, http.StatusOK, "Matéria removida.")
}

// AddTopico godoc
// POST /cronograma/materias/:id/topicos
func (h *CronogramaHandler) AddTopico(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	materiaID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.CreateTopicoRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	topico, err := h.cronogramaService.AddTopico(c.Request.Context(), ownerID, materiaID, req.Nome)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"topico": topico})
}

// UpdateTopico godoc
// PATCH /cronograma/topicos/:id
func (h *CronogramaHandler) UpdateTopico(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	topicoID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateTopicoRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	topico, err := h.cronogramaService.SetTopicoConcluido(c.Request.Context(), ownerID, topicoID, *req.Concluido)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"topico": topico})
}

// DeleteTopico godoc
// DELETE /cronograma/topicos/:id
func (h *CronogramaHandler) DeleteTopico(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	topicoID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.cronogramaService.DeleteTopico(c.Request.Context(), ownerID, topicoID); err != nil {
		failService(c, h.log, err)
		return
	}

	response.Message(c, http.StatusOK, "Tópico removido.")
}

// Generate godoc
// POST /cronograma/gerar
// 201 when the advisor produced a plan, 200 with gerado=false otherwise.
func (h *CronogramaHandler) Generate(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req model.GeneratePlanRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	res, err := h.cronogramaService.Generate(c.Request.Context(), ownerID, &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	status := http.StatusOK
	if res.Gerado {
		status = http.StatusCreated
	}
	response.Success(c, status, res)
}
