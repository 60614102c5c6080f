package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/seshat-edu/seshat-backend/internal/config"
	"github.com/seshat-edu/seshat-backend/internal/handler"
	"github.com/seshat-edu/seshat-backend/internal/middleware"
	"github.com/seshat-edu/seshat-backend/internal/response"
	"github.com/seshat-edu/seshat-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	System     *handler.SystemHandler
	Auth       *handler.AuthHandler
	Question   *handler.QuestionHandler
	Cronograma *handler.CronogramaHandler
	Practice   *handler.PracticeHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	cfg *config.Config,
	authService *service.AuthService,
	userService *service.UserService,
	rdb *redis.Client,
	handlers *Handlers,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	corsConfig.AllowCredentials = len(cfg.AllowedOrigins) > 0
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	requireJWT := middleware.RequireJWT(authService, userService, log)
	loginLimiter := middleware.NewRateLimiter(rdb, "login", cfg.LoginRatePerMinute, time.Minute, log)
	aiLimiter := middleware.NewRateLimiter(rdb, "ai", cfg.AIRatePerMinute, time.Minute, log)

	// ─── 0. Public ─────────────────────────────────────────────────────
	router.GET("/", handlers.System.Root)
	router.GET("/health", handlers.System.Health)
	router.GET("/materias", middleware.CacheControl(3600), handlers.System.Subjects)

	// ─── 1. Accounts ───────────────────────────────────────────────────
	noStore := middleware.NoStore()
	router.POST("/register", handlers.Auth.Register)
	router.POST("/login", noStore, loginLimiter.Middleware(), handlers.Auth.Login)
	router.POST("/logout", requireJWT, handlers.Auth.Logout)
	router.GET("/users/me", noStore, requireJWT, handlers.Auth.Me)

	// ─── 2. Question bank ──────────────────────────────────────────────
	perguntas := router.Group("/perguntas")
	{
		perguntas.POST("", handlers.Question.Create)
		perguntas.POST("/verificar", requireJWT, handlers.Question.Verify)
		perguntas.GET("/id/:id/dica", requireJWT, aiLimiter.Middleware(), handlers.Question.Hint)
		perguntas.GET("/:subject", handlers.Question.Sample)
	}

	// ─── 3. Study plan (JWT) ───────────────────────────────────────────
	cronograma := router.Group("/cronograma")
	cronograma.Use(noStore, requireJWT)
	{
		cronograma.GET("/me", handlers.Cronograma.GetMine)
		cronograma.GET("/me/semanal", handlers.Cronograma.Weekly)
		cronograma.POST("/materias", handlers.Cronograma.AddMateria)
		cronograma.DELETE("/materias/:id", handlers.Cronograma.DeleteMateria)
		cronograma.POST("/materias/:id/topicos", handlers.Cronograma.AddTopico)
		cronograma.PATCH("/topicos/:id", handlers.Cronograma.UpdateTopico)
		cronograma.DELETE("/topicos/:id", handlers.Cronograma.DeleteTopico)
		cronograma.POST("/gerar", aiLimiter.Middleware(), handlers.Cronograma.Generate)
	}

	// ─── 4. WebSocket (token via query) ────────────────────────────────
	router.GET("/ws/pratica/:subject", requireJWT, handlers.Practice.Stream)

	return router
}
