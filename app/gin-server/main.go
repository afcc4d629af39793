package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/gembotdev/gembot/config"
	"github.com/gembotdev/gembot/internal/api/handlers"
	"github.com/gembotdev/gembot/internal/api/middleware"
	"github.com/gembotdev/gembot/internal/api/routes"
	"github.com/gembotdev/gembot/internal/cache"
	"github.com/gembotdev/gembot/internal/logger"
	"github.com/gembotdev/gembot/internal/providers/llm"
	mongorepo "github.com/gembotdev/gembot/internal/repositories/mongo"
	pgrepo "github.com/gembotdev/gembot/internal/repositories/postgres"
	"github.com/gembotdev/gembot/internal/services"
	"github.com/gembotdev/gembot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	appCfg := config.LoadApp()
	l := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	l.Info("MongoDB connected")

	ctx := context.Background()

	gen := llm.GenerationConfig{
		Temperature:     appCfg.Temperature,
		TopP:            appCfg.TopP,
		TopK:            appCfg.TopK,
		MaxOutputTokens: appCfg.MaxOutputTokens,
	}
	retry := llm.RetryPolicy{
		MaxAttempts: appCfg.MaxAttempts,
		BaseDelay:   appCfg.RetryBaseDelay,
	}

	var provider llm.Provider
	var err error
	switch appCfg.LLMProvider {
	case "vertex":
		provider, err = llm.NewVertexGemini(ctx, appCfg.VertexProject, appCfg.VertexLocation, appCfg.Model, gen, retry)
	default:
		provider, err = llm.NewGemini(appCfg.GeminiBaseURL, appCfg.GeminiAPIKey, appCfg.Model, gen, retry)
	}
	if err != nil {
		log.Fatalf("LLM provider init error: %v", err)
	}
	defer provider.Close()

	var uploader storage.Uploader
	if appCfg.ExportBucket != "" {
		gcsUp, uerr := storage.NewGCSUploader(ctx, appCfg.ExportBucket)
		if uerr != nil {
			log.Fatalf("GCS init error: %v", uerr)
		}
		defer gcsUp.Close()
		uploader = gcsUp
	}

	// Repos + services
	logRepo := pgrepo.NewChatLogRepo(config.PostgresDB)
	settingRepo := mongorepo.NewSettingRepo(config.MongoDatabase())
	histCache := cache.NewRedisCache(config.RedisClient, "gembot:")

	historySvc := services.NewHistoryService(histCache, logRepo, appCfg.HistoryTTL, appCfg.HistoryMaxTurns, l)
	chatSvc := services.NewChatService(historySvc, logRepo, settingRepo, provider, uploader, appCfg.HistoryMaxTurns, l)

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Chat:   handlers.NewChatHandler(chatSvc),
		Prompt: handlers.NewPromptHandler(settingRepo),
		WS:     handlers.NewWSHandler(chatSvc),
	})

	if err := r.Run(":" + appCfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
