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

// AuthHandler handles registration, login and the current user.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// Register godoc
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	h.log.Info().Int("user_id", user.ID).Msg("User registered")
	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Login godoc
// POST /login
// OAuth2 password form: the username field carries the email.
func (h *AuthHandler) Login(c *gin.Context) {
	var form model.LoginForm
	if fields := validator.BindForm(c, &form); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, model.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Logout godoc
// POST /logout
// Revokes the presented token until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Revoke(c.Request.Context(), claims); err != nil {
		failService(c, h.log, err)
		return
	}

	response.Message(c, http.StatusOK, "Sessão encerrada.")
}

// Me godoc
// GET /users/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
