package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/koinetutor-backend/internal/cache"
	"github.com/yungbote/koinetutor-backend/internal/db"
	"github.com/yungbote/koinetutor-backend/internal/handlers"
	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/middleware"
	"github.com/yungbote/koinetutor-backend/internal/observability"
	"github.com/yungbote/koinetutor-backend/internal/repos"
	"github.com/yungbote/koinetutor-backend/internal/server"
	"github.com/yungbote/koinetutor-backend/internal/services"
	"github.com/yungbote/koinetutor-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	ctx := context.Background()
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "koinetutor", log),
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	sessionRepo := repos.NewStudySessionRepo(thePG, log)
	unitRepo := repos.NewTrainingUnitRepo(thePG, log)
	responseRepo := repos.NewUserResponseRepo(thePG, log)
	insightRepo := repos.NewInsightRepo(thePG, log)
	quizRepo := repos.NewQuizCacheRepo(thePG, log)
	syntaxRepo := repos.NewSyntaxAnalysisRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	var templates *services.PromptTemplates
	if path := utils.GetEnv("PROMPTS_FILE", "", nil); path != "" {
		templates, err = services.LoadPromptTemplates(path, log)
		if err != nil {
			log.Error("Could not load prompt templates", "error", err, "path", path)
			os.Exit(1)
		}
	}
	fastCache, err := cacheOrNil(log)
	if err != nil {
		log.Warn("Redis init failed, quiz cache runs on Postgres only", "error", err)
	}
	authService := services.NewAuthService(log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	tutorService := services.NewTutorService(log, openaiClient, templates)
	sessionService := services.NewSessionService(log, sessionRepo, unitRepo, responseRepo, insightRepo, tutorService)
	quizService := services.NewQuizCacheService(log, openaiClient, fastCache, quizRepo, templates)
	syntaxService := services.NewSyntaxService(log, syntaxRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	sessionHandler := handlers.NewSessionHandler(log, sessionService)
	tutorHandler := handlers.NewTutorHandler(log, tutorService, sessionService)
	quizHandler := handlers.NewQuizHandler(log, quizService, sessionService)
	syntaxHandler := handlers.NewSyntaxHandler(log, syntaxService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		SessionHandler: sessionHandler,
		TutorHandler:   tutorHandler,
		QuizHandler:    quizHandler,
		SyntaxHandler:  syntaxHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}

// cacheOrNil skips the redis layer entirely when REDIS_ADDR is unset.
func cacheOrNil(log *logger.Logger) (cache.QuizFastCache, error) {
	if utils.GetEnv("REDIS_ADDR", "", nil) == "" {
		log.Info("REDIS_ADDR not set, quiz cache runs on Postgres only")
		return nil, nil
	}
	return cache.NewQuizFastCache(log)
}
