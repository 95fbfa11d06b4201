package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hybridtechie/roundtable-ai/internal/adapter/handler"
	"github.com/hybridtechie/roundtable-ai/internal/adapter/repository"
	"github.com/hybridtechie/roundtable-ai/internal/infrastructure/cache"
	"github.com/hybridtechie/roundtable-ai/internal/infrastructure/database"
	"github.com/hybridtechie/roundtable-ai/internal/infrastructure/external/knowledge"
	"github.com/hybridtechie/roundtable-ai/internal/usecase/chat"
	"github.com/hybridtechie/roundtable-ai/internal/usecase/discussion"
	"github.com/hybridtechie/roundtable-ai/pkg/ai"
	"github.com/hybridtechie/roundtable-ai/pkg/config"
	"github.com/hybridtechie/roundtable-ai/pkg/validator"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("❌ Failed to load configuration", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("❌ Invalid configuration", zap.Error(err))
	}
	logger.Info("✅ Configuration loaded", zap.String("port", cfg.Server.Port))

	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("❌ Failed to connect to database", zap.Error(err))
	}

	// Redis is optional; the knowledge cache falls back to an in-process
	// store when it is unreachable.
	var knowledgeCache cache.Store
	if redisClient, err := cache.NewRedisClient(cfg, logger); err != nil {
		logger.Warn("⚠️ Redis unavailable, using in-memory knowledge cache", zap.Error(err))
		knowledgeCache = cache.NewMemoryStore()
	} else {
		knowledgeCache = cache.NewRedisStore(redisClient)
	}

	sessionStore := repository.NewChatSessionRepository(db)
	meetingResolver := repository.NewMeetingRepository(db)

	llmClient := ai.NewLLMClient(&cfg.LLM)

	searcher := knowledge.NewCachedSearcher(
		knowledge.NewClient(&cfg.Knowledge, logger),
		knowledgeCache,
		cfg.Knowledge.CacheTTL,
		logger,
	)
	augmenter := discussion.NewAugmenter(searcher, cfg.Knowledge.TopK, cfg.Knowledge.ScoreThreshold, logger)

	discussionService := discussion.NewService(llmClient, augmenter, sessionStore, cfg.Discussion.TurnPacing, logger)
	chatService := chat.NewService(llmClient, augmenter, meetingResolver, sessionStore, logger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
	}))

	handler.RegisterRoutes(e,
		handler.NewDiscussionHandler(discussionService, meetingResolver, logger),
		handler.NewChatHandler(chatService, logger),
	)

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("🚀 Server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("❌ Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("❌ Server shutdown failed", zap.Error(err))
	}
	logger.Info("👋 Server stopped")
}
