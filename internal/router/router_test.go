package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seshat-edu/seshat-backend/internal/handler"
	"github.com/seshat-edu/seshat-backend/internal/model"
	"github.com/seshat-edu/seshat-backend/internal/response"
	"github.com/seshat-edu/seshat-backend/internal/service"
	"github.com/seshat-edu/seshat-backend/internal/service/servicetest"
	"github.com/seshat-edu/seshat-backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type testApp struct {
	engine    *gin.Engine
	questions *servicetest.QuestionStore
	advisor   *servicetest.Advisor
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	_, rdb := servicetest.NewRedis(t)

	cfg := servicetest.Config()
	cfg.GinMode = gin.TestMode
	cfg.LoginRatePerMinute = 100
	cfg.AIRatePerMinute = 100

	log := zerolog.Nop()
	questions := &servicetest.QuestionStore{}
	advisor := &servicetest.Advisor{}

	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(&servicetest.UserStore{}, authService)
	questionService := service.NewQuestionService(questions, advisor, rdb, cfg.HintCacheTTL, log)
	cronogramaService := service.NewCronogramaService(servicetest.NewCronogramaStore(), advisor, log)

	handlers := &Handlers{
		System: handler.NewSystemHandler(map[string]handler.Check{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, log),
		Auth:       handler.NewAuthHandler(authService, userService, log),
		Question:   handler.NewQuestionHandler(questionService, log),
		Cronograma: handler.NewCronogramaHandler(cronogramaService, log),
		Practice:   handler.NewPracticeHandler(questionService, log, nil),
	}

	return &testApp{
		engine:    SetupRouter(cfg, authService, userService, rdb, handlers, log),
		questions: questions,
		advisor:   advisor,
	}
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.serve(t, req)
}

func (a *testApp) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (a *testApp) login(t *testing.T, email, password string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.serve(t, req)
}

// signup registers and logs in, returning a bearer token.
func (a *testApp) signup(t *testing.T, email string) string {
	t.Helper()
	w, _ := a.do(t, http.MethodPost, "/register", gin.H{"email": email, "password": "segredo123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := a.login(t, email, "segredo123")
	require.Equal(t, http.StatusOK, w.Code)
	var tok model.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	require.Equal(t, "bearer", tok.TokenType)
	return tok.AccessToken
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestSystemRoutes(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "SeShat")

	w, env = app.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, env.Data)["status"])

	w, env = app.do(t, http.MethodGet, "/materias", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Cache-Control"))
	got := decode[map[string][]string](t, env.Data)["materias_disponiveis"]
	assert.Equal(t, []string{"Matemática", "Português", "História", "Redação", "Física"}, got)
}

func TestAccountFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "ana@example.com")

	w, env := app.do(t, http.MethodPost, "/register", gin.H{"email": "ana@example.com", "password": "outra123"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrEmailTaken, env.Error.Code)

	w, env = app.do(t, http.MethodPost, "/register", gin.H{"email": "nope", "password": "1"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error.Fields, "email")
	assert.Contains(t, env.Error.Fields, "password")

	w, env = app.login(t, "ana@example.com", "errada")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrInvalidCredentials, env.Error.Code)

	w, env = app.do(t, http.MethodGet, "/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotContains(t, string(env.Data), "password")
	assert.Contains(t, string(env.Data), "ana@example.com")

	w, _ = app.do(t, http.MethodPost, "/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = app.do(t, http.MethodGet, "/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenInvalid, env.Error.Code)

	w, env = app.do(t, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenRequired, env.Error.Code)
}

func TestTokenForMissingUser(t *testing.T) {
	token := newTestApp(t).signup(t, "gil@example.com")

	// Same signing key, but the account no longer exists.
	app := newTestApp(t)
	for _, path := range []string{"/users/me", "/cronograma/me", "/cronograma/me/semanal"} {
		w, env := app.do(t, http.MethodGet, path, nil, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		require.NotNil(t, env.Error, path)
		assert.Equal(t, response.ErrTokenInvalid, env.Error.Code, path)
	}

	w, _ := app.do(t, http.MethodPost, "/cronograma/materias", gin.H{"nome": "Física"}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A different account now holds the same id.
	app.signup(t, "outra@example.com")
	w, env := app.do(t, http.MethodGet, "/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenInvalid, env.Error.Code)
}

func TestQuestionRoutes(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "bia@example.com")

	w, env := app.do(t, http.MethodPost, "/perguntas", gin.H{
		"subject": "Matemática", "text": "2+2?", "options": []string{"3", "4"}, "correct_answer": "C",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error.Fields, "correct_answer")

	w, env = app.do(t, http.MethodPost, "/perguntas", gin.H{
		"subject": "Matemática", "text": "2+2?", "options": []string{"3", "4"}, "correct_answer": "B", "year": 2023,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[map[string]model.Question](t, env.Data)["question"]
	assert.Equal(t, "B", created.CorrectAnswer)

	w, env = app.do(t, http.MethodGet, "/perguntas/"+url.PathEscape("Matemática")+"?count=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), "correct_answer")
	assert.Len(t, decode[map[string][]model.QuestionView](t, env.Data)["questions"], 1)

	w, env = app.do(t, http.MethodGet, "/perguntas/"+url.PathEscape("Matemática")+"?year=1999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.ErrNoQuestions, env.Error.Code)

	w, _ = app.do(t, http.MethodGet, "/perguntas/"+url.PathEscape("Matemática")+"?count=500", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.MaxQuestionCount, app.questions.LastFilter.Limit)

	w, _ = app.do(t, http.MethodGet, "/perguntas/"+url.PathEscape("Matemática")+"?count=-1", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = app.do(t, http.MethodPost, "/perguntas/verificar", gin.H{"question_id": created.ID, "user_answer": "B"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = app.do(t, http.MethodPost, "/perguntas/verificar", gin.H{"question_id": created.ID, "user_answer": "B"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.VerifyAnswerResult](t, env.Data).IsCorrect)

	w, env = app.do(t, http.MethodPost, "/perguntas/verificar", gin.H{"question_id": created.ID, "user_answer": "A"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[model.VerifyAnswerResult](t, env.Data)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, "B", res.CorrectAnswer)

	w, _ = app.do(t, http.MethodPost, "/perguntas/verificar", gin.H{"question_id": 999, "user_answer": "A"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	app.advisor.HintText, app.advisor.Generated = "Conte nos dedos.", true
	w, env = app.do(t, http.MethodGet, "/perguntas/id/1/dica", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Conte nos dedos.", decode[model.HintResponse](t, env.Data).Dica)

	w, env = app.do(t, http.MethodGet, "/perguntas/id/abc/dica", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidID, env.Error.Code)
}

func TestCronogramaRoutes(t *testing.T) {
	app := newTestApp(t)
	owner := app.signup(t, "caio@example.com")
	other := app.signup(t, "duda@example.com")

	w, env := app.do(t, http.MethodGet, "/cronograma/me/semanal", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sem_materias", string(decode[service.WeeklySchedule](t, env.Data).Status))

	var materiaIDs []int
	for _, nome := range []string{"Math", "Physics", "Chemistry"} {
		w, env = app.do(t, http.MethodPost, "/cronograma/materias", gin.H{"nome": nome}, owner)
		require.Equal(t, http.StatusCreated, w.Code)
		materiaIDs = append(materiaIDs, decode[map[string]model.MateriaCronograma](t, env.Data)["materia"].ID)
	}

	w, env = app.do(t, http.MethodPost, "/cronograma/materias", gin.H{"nome": "Biology"}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrLimitReached, env.Error.Code)

	w, env = app.do(t, http.MethodGet, "/cronograma/me", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string]model.Cronograma](t, env.Data)["cronograma"].Materias, 3)

	math := materiaIDs[0]
	topicosPath := "/cronograma/materias/" + strconv.Itoa(math) + "/topicos"
	var topicoIDs []int
	for _, nome := range []string{"A", "B", "C"} {
		w, env = app.do(t, http.MethodPost, topicosPath, gin.H{"nome": nome}, owner)
		require.Equal(t, http.StatusCreated, w.Code)
		topicoIDs = append(topicoIDs, decode[map[string]model.TopicoCronograma](t, env.Data)["topico"].ID)
	}

	w, env = app.do(t, http.MethodPost, topicosPath, gin.H{"nome": "D"}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrLimitReached, env.Error.Code)

	w, env = app.do(t, http.MethodPost, topicosPath, gin.H{"nome": "X"}, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrForbidden, env.Error.Code)

	w, _ = app.do(t, http.MethodPost, "/cronograma/materias/9999/topicos", gin.H{"nome": "X"}, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = app.do(t, http.MethodPost, "/cronograma/materias/zero/topicos", gin.H{"nome": "X"}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = app.do(t, http.MethodGet, "/cronograma/me/semanal", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	week := decode[service.WeeklySchedule](t, env.Data)
	assert.Equal(t, "A", week.Semana["Segunda-feira"])
	assert.Equal(t, "Descanso", week.Semana["Domingo"])
	assert.Len(t, week.Ordem, 7)

	w, _ = app.do(t, http.MethodPatch, "/cronograma/topicos/"+strconv.Itoa(topicoIDs[0]), gin.H{}, owner)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = app.do(t, http.MethodPatch, "/cronograma/topicos/"+strconv.Itoa(topicoIDs[0]), gin.H{"concluido": true}, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = app.do(t, http.MethodPatch, "/cronograma/topicos/"+strconv.Itoa(topicoIDs[0]), gin.H{"concluido": true}, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[map[string]model.TopicoCronograma](t, env.Data)["topico"].Concluido)

	w, _ = app.do(t, http.MethodDelete, "/cronograma/topicos/"+strconv.Itoa(topicoIDs[1]), nil, owner)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(t, http.MethodDelete, "/cronograma/topicos/"+strconv.Itoa(topicoIDs[1]), nil, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = app.do(t, http.MethodDelete, "/cronograma/materias/"+strconv.Itoa(materiaIDs[2]), nil, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = app.do(t, http.MethodDelete, "/cronograma/materias/"+strconv.Itoa(materiaIDs[2]), nil, owner)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateRoute(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "eva@example.com")
	body := gin.H{"meses": 6, "areas_foco": []string{"exatas"}}

	w, _ := app.do(t, http.MethodPost, "/cronograma/gerar", gin.H{"meses": 30, "areas_foco": []string{"x"}}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, env := app.do(t, http.MethodPost, "/cronograma/gerar", body, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[model.GeneratePlanResponse](t, env.Data).Gerado)

	app.advisor.Plan = &model.GeneratedPlan{
		NomePlano: "Rumo ao ENEM",
		Materias:  []model.GeneratedMateria{{Nome: "Matemática", Topicos: []string{"Funções"}}},
	}
	w, env = app.do(t, http.MethodPost, "/cronograma/gerar", body, token)
	require.Equal(t, http.StatusCreated, w.Code)
	res := decode[model.GeneratePlanResponse](t, env.Data)
	assert.True(t, res.Gerado)
	assert.Equal(t, "Rumo ao ENEM", res.Cronograma.Nome)
	require.Len(t, res.Cronograma.Materias, 1)
	assert.Equal(t, "Funções", res.Cronograma.Materias[0].Topicos[0].Nome)
}

func TestPracticeStream(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "fabi@example.com")
	app.questions.Questions = []model.Question{
		{ID: 1, Subject: "Física", Text: "g?", Options: json.RawMessage(`["9.8","10"]`), CorrectAnswer: "A"},
		{ID: 2, Subject: "Física", Text: "c?", Options: json.RawMessage(`{"A":"3e8","B":"1"}`), CorrectAnswer: "A"},
	}

	srv := httptest.NewServer(app.engine)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/pratica/" + url.PathEscape("Física")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token="+token+"&count=0", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token+"&count=500", nil)
	require.NoError(t, err)
	defer conn.Close()

	var event map[string]any
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "question", event["event"])
	assert.EqualValues(t, 2, event["total"])
	assert.NotContains(t, event["question"], "correct_answer")

	require.NoError(t, conn.WriteJSON(gin.H{"action": "ping"}))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "pong", event["event"])

	require.NoError(t, conn.WriteJSON(gin.H{"action": "dance"}))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "error", event["event"])

	require.NoError(t, conn.WriteJSON(gin.H{"action": "answer", "question_id": 1, "user_answer": "A"}))
	var result struct {
		Event  string                   `json:"event"`
		Result model.VerifyAnswerResult `json:"result"`
	}
	require.NoError(t, conn.ReadJSON(&result))
	assert.Equal(t, "result", result.Event)
	assert.True(t, result.Result.IsCorrect)

	event = nil
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "question", event["event"])

	require.NoError(t, conn.WriteJSON(gin.H{"action": "answer", "question_id": 2, "user_answer": "B"}))
	require.NoError(t, conn.ReadJSON(&result))
	assert.False(t, result.Result.IsCorrect)

	var finished struct {
		Event   string `json:"event"`
		Correct int    `json:"correct"`
		Total   int    `json:"total"`
	}
	require.NoError(t, conn.ReadJSON(&finished))
	assert.Equal(t, "finished", finished.Event)
	assert.Equal(t, 1, finished.Correct)
	assert.Equal(t, 2, finished.Total)
}

