package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"menu-recommender/internal/api"
	"menu-recommender/internal/api/middleware"
	"menu-recommender/internal/core/ai/cache"
	"menu-recommender/internal/core/ai/ocr"
	"menu-recommender/internal/core/ai/openrouter"
	"menu-recommender/internal/core/ai/provider"
	"menu-recommender/internal/core/ai/queue"
	"menu-recommender/internal/core/ai/service"
	"menu-recommender/internal/core/image"
	"menu-recommender/internal/core/menu"
	"menu-recommender/internal/core/recommend"
	"menu-recommender/internal/infrastructure/config"
	"menu-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.Bool("ocr_enabled", cfg.OCR.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	// 初始化快取
	store, err := cache.NewStore(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	// 上游呼叫閘門
	gate := queue.NewManager(&cfg.Queue)
	defer gate.Close()

	// 菜色抽取（LLM）
	var dishes provider.DishGenerator
	if cfg.OpenRouter.Enabled {
		llm := openrouter.NewClient(&cfg.OpenRouter)
		defer llm.Close()
		dishes = menu.NewExtractor(service.NewService(llm, store, gate))
	}

	// 菜單文字辨識
	var textExtractor provider.TextExtractor
	if cfg.OCR.Enabled {
		textExtractor = ocr.NewClient(&cfg.OCR)
	}

	engine := recommend.NewEngine(menu.EngineOptions(cfg.Ranking))
	scans := menu.NewScanService(image.NewService(cfg.Image.MaxSizeBytes), textExtractor, dishes, engine)

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	defer dedup.Stop()

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Scan:         scans,
		Queue:        gate,
		Cache:        store,
		Deduplicator: dedup,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
