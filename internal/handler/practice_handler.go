package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/seshat-edu/seshat-backend/internal/middleware"
	"github.com/seshat-edu/seshat-backend/internal/model"
	"github.com/seshat-edu/seshat-backend/internal/response"
	"github.com/seshat-edu/seshat-backend/internal/service"
	ws "github.com/seshat-edu/seshat-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// PracticeHandler streams a practice round over a WebSocket: one question
// at a time, each answer checked as it arrives.
type PracticeHandler struct {
	questionService *service.QuestionService
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(questionService *service.QuestionService, log zerolog.Logger, allowedOrigins []string) *PracticeHandler {
	return &PracticeHandler{
		questionService: questionService,
		log:             log.With().Str("component", "practice_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/pratica/:subject?token=&count=
// Questions are sampled before the upgrade so an empty subject is a plain 404.
func (h *PracticeHandler) Stream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	count := service.DefaultQuestionCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, map[string]string{
				"count": "count must be a positive integer",
			})
			return
		}
		count = n
	}

	subject := c.Param("subject")
	questions, err := h.questionService.SampleFull(c.Request.Context(), subject, count)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("subject", subject).
		Int("total", len(questions)).
		Logger()
	wsLog.Info().Msg("Practice started")

	round := &practiceRound{questions: questions}
	if err := round.sendCurrent(conn); err != nil {
		wsLog.Debug().Err(err).Msg("Send failed")
		return
	}

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		case ws.ActionAnswer:
			var done bool
			done, err = round.answer(conn, &msg)
			if err == nil && done {
				wsLog.Info().Int("correct", round.correct).Msg("Practice finished")
				_ = ws.Close(conn, "finished")
				return
			}
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			err = ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
		if err != nil {
			wsLog.Debug().Err(err).Msg("Send failed")
			return
		}
	}
}

// practiceRound tracks progress through one sampled set of questions.
type practiceRound struct {
	questions []model.Question
	current   int
	correct   int
}

func (r *practiceRound) sendCurrent(conn *websocket.Conn) error {
	q := &r.questions[r.current]
	return ws.WriteTyped(conn, ws.QuestionResponse{
		Event:    ws.EventQuestion,
		Index:    r.current + 1,
		Total:    len(r.questions),
		Question: q.View(),
	})
}

// answer checks msg against the current question, replies with the result
// and advances. It reports true once the finished event has been sent.
func (r *practiceRound) answer(conn *websocket.Conn, msg *ws.RequestPayload) (bool, error) {
	q := &r.questions[r.current]
	if msg.QuestionID != q.ID {
		return false, ws.WriteError(conn, fmt.Sprintf("expected an answer for question %d", q.ID))
	}

	res := q.Check(msg.UserAnswer)
	if res.IsCorrect {
		r.correct++
	}
	if err := ws.WriteTyped(conn, ws.ResultResponse{Event: ws.EventResult, Result: res}); err != nil {
		return false, err
	}

	r.current++
	if r.current == len(r.questions) {
		err := ws.WriteTyped(conn, ws.FinishedResponse{
			Event:   ws.EventFinished,
			Correct: r.correct,
			Total:   len(r.questions),
		})
		return true, err
	}
	return false, r.sendCurrent(conn)
}
