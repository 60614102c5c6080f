package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seshat-edu/seshat-backend/internal/model"
	"github.com/seshat-edu/seshat-backend/internal/response"
	"github.com/seshat-edu/seshat-backend/internal/service"
	"github.com/seshat-edu/seshat-backend/internal/validator"
)

// QuestionHandler handles the question bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
	log             zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		log:             log.With().Str("component", "question_handler").Logger(),
	}
}

// Create godoc
// POST /perguntas
func (h *QuestionHandler) Create(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}
	if fields := req.CheckAnswerKey(); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Create(c.Request.Context(), &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// Sample godoc
// GET /perguntas/:subject?count=&source=&year=
// Returns random questions of a subject without their answers.
func (h *QuestionHandler) Sample(c *gin.Context) {
	var query model.QuestionQuery
	if fields := validator.BindQuery(c, &query); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	questions, err := h.questionService.Sample(c.Request.Context(), c.Param("subject"), query)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Verify godoc
// POST /perguntas/verificar
func (h *QuestionHandler) Verify(c *gin.Context) {
	var req model.VerifyAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	res, err := h.questionService.Verify(c.Request.Context(), req.QuestionID, req.UserAnswer)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// Hint godoc
// GET /perguntas/id/:id/dica
func (h *QuestionHandler) Hint(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	hint, err := h.questionService.Hint(c.Request.Context(), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, hint)
}
