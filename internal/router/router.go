package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/medjourney/simulados-backend/internal/config"
	"github.com/medjourney/simulados-backend/internal/handler"
	"github.com/medjourney/simulados-backend/internal/middleware"
	"github.com/medjourney/simulados-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam         *handler.ExamHandler
	Session      *handler.SessionHandler
	QuestionBank *handler.QuestionBankHandler
	Media        *handler.MediaHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.TokenValidator,
	limiter middleware.Limiter,
	handlers *Handlers,
	cfg *config.Config,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		MinLength:    middleware.DefaultBrotliConfig.MinLength,
		SkipPrefixes: []string{"/uploads"},
	}))

	// Local media driver: images are immutable, cache for a year.
	if cfg.MediaDriver == config.MediaDriverLocal {
		uploadsGroup := router.Group("/uploads")
		uploadsGroup.Use(middleware.CacheControl(31536000))
		{
			uploadsGroup.Static("/", cfg.UploadDir)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.RequireJWT(auth))
	{
		// ─── Exams ─────────────────────────────────────────────────────
		exams := api.Group("/exams")
		{
			exams.POST("", handlers.Exam.CreateExam)
			exams.GET("", handlers.Exam.ListExams)
			exams.GET("/:exam_id", handlers.Exam.GetExam)
			exams.DELETE("/:exam_id", handlers.Exam.DeleteExam)
		}

		// ─── Exam session ──────────────────────────────────────────────
		session := api.Group("/exams/:exam_id")
		session.Use(middleware.NoStore())
		{
			session.POST("/session", handlers.Session.StartSession)
			session.PUT("/answers", middleware.RateLimit(limiter), handlers.Session.RecordAnswer)
			session.POST("/finalize", handlers.Session.Finalize)
			session.GET("/result", handlers.Session.GetResult)
		}

		// ─── Question banks ────────────────────────────────────────────
		banks := api.Group("/question-banks")
		{
			banks.POST("", handlers.QuestionBank.CreateBank)
			banks.GET("", handlers.QuestionBank.ListBanks)
			banks.GET("/:bank_id", handlers.QuestionBank.GetBank)
			banks.DELETE("/:bank_id", handlers.QuestionBank.DeleteBank)
			banks.POST("/:bank_id/questions", handlers.QuestionBank.AddQuestion)
			banks.PUT("/:bank_id/questions/:question_id", handlers.QuestionBank.UpdateQuestion)
			banks.DELETE("/:bank_id/questions/:question_id", handlers.QuestionBank.RemoveQuestion)
		}

		// ─── Media ─────────────────────────────────────────────────────
		api.POST("/media/upload", middleware.RateLimit(limiter), handlers.Media.UploadQuestionImage)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	// Browsers cannot set headers on the upgrade, RequireJWT reads ?token=.
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireJWT(auth))
	{
		wsGroup.GET("/exams/:exam_id/stream", handlers.WS.ExamWebSocketStream)
	}

	return router
}
