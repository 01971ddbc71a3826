package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"menu-recommender/internal/api/handlers/health"
	menuHandler "menu-recommender/internal/api/handlers/menu"
	"menu-recommender/internal/api/middleware"
	"menu-recommender/internal/core/ai/cache"
	"menu-recommender/internal/core/ai/queue"
	menuService "menu-recommender/internal/core/menu"
	"menu-recommender/internal/infrastructure/config"
	"menu-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (10MB)
	maxBodySize = 10 << 20
)

// Dependencies 路由需要的服務；Queue 與 Cache 可為 nil
type Dependencies struct {
	Scan         *menuService.ScanService
	Queue        *queue.Manager
	Cache        cache.Store
	Deduplicator *middleware.Deduplicator
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Scan == nil {
		return nil, errors.New("scan service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制：圖片上限加上 base64 膨脹與 JSON 欄位
	bodyLimit := int64(maxBodySize)
	if cfg.Image.MaxSizeBytes > 0 && cfg.Image.MaxSizeBytes*2 > bodyLimit {
		bodyLimit = cfg.Image.MaxSizeBytes * 2
	}
	router.Use(middleware.BodySizeLimit(bodyLimit))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if deps.Deduplicator != nil {
		router.Use(deps.Deduplicator.Handler())
	}

	// 設置請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeRequestTimeout,
				Message: "Request timeout",
				Details: timeoutDuration.String(),
			})
		}
	})

	// 健康檢查路由
	healthHandler := newHealthHandler(cfg, deps)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	h := menuHandler.NewHandler(deps.Scan)
	api := router.Group("/api/v1")
	{
		menuGroup := api.Group("/menu")
		{
			// 菜單照片 → 推薦
			menuGroup.POST("/scan", h.HandleScan)
			// 菜單文字 → 推薦
			menuGroup.POST("/extract", h.HandleExtract)
		}

		recGroup := api.Group("/recommendations")
		{
			recGroup.POST("", h.HandleRecommend)
			recGroup.POST("/prefilter", h.HandlePreFilter)
		}

		api.GET("/catalog", h.HandleCatalog)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("cache_enabled", deps.Cache != nil),
		zap.Bool("queue_enabled", deps.Queue != nil),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("deduplication", deps.Deduplicator != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", bodyLimit),
	)

	return router, nil
}

// newHealthHandler 避免把 nil 指標包成非 nil 介面
func newHealthHandler(cfg *config.Config, deps Dependencies) *health.Handler {
	var gate interface{ GetQueueStatus() *queue.Status }
	if deps.Queue != nil {
		gate = deps.Queue
	}
	return health.NewHandler(cfg, gate, deps.Cache)
}
