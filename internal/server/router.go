package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/koinetutor-backend/internal/handlers"
	"github.com/yungbote/koinetutor-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	SessionHandler *handlers.SessionHandler
	TutorHandler   *handlers.TutorHandler
	QuizHandler    *handlers.QuizHandler
	SyntaxHandler  *handlers.SyntaxHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("koinetutor"))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Sessions
	api.POST("/sessions", cfg.SessionHandler.CreateSession)
	api.GET("/sessions/:id", cfg.SessionHandler.GetSession)
	api.POST("/sessions/:id/complete", cfg.SessionHandler.CompleteSession)
	api.POST("/sessions/:id/bootstrap", cfg.SessionHandler.BootstrapSession)
	api.POST("/sessions/:id/units", cfg.TutorHandler.CreateUnit)
	api.POST("/sessions/:id/insights", cfg.SessionHandler.SaveInsight)
	api.GET("/sessions/:id/insights", cfg.SessionHandler.ListInsights)
	api.GET("/sessions/:id/syntax", cfg.SyntaxHandler.ListBySession)
	// Units
	api.POST("/units/:id/response", cfg.TutorHandler.EvaluateResponse)
	api.GET("/units/:id/quiz", cfg.QuizHandler.GetQuiz)
	// Tutor
	api.POST("/tutor/identify-forms", cfg.TutorHandler.IdentifyForms)
	api.POST("/tutor/morphology", cfg.TutorHandler.ExplainMorphology)
	api.POST("/tutor/question", cfg.TutorHandler.AnswerFreeQuestion)
	// Syntax
	api.POST("/syntax/analyze", cfg.SyntaxHandler.Analyze)

	return router
}
