package health

import (
	"net/http"
	"runtime"
	"time"

	"menu-recommender/internal/core/ai/queue"
	"menu-recommender/internal/infrastructure/config"
	"menu-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Services  map[string]bool        `json:"services"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

type queueStatus interface {
	GetQueueStatus() *queue.Status
}

type cacheStats interface {
	Stats() map[string]interface{}
}

// Handler 健康檢查；queue 與 cache 可為 nil
type Handler struct {
	cfg   *config.Config
	queue queueStatus
	cache cacheStats
}

// NewHandler 創建健康檢查處理器
func NewHandler(cfg *config.Config, q queueStatus, c cacheStats) *Handler {
	return &Handler{cfg: cfg, queue: q, cache: c}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// 構建響應
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Services: map[string]bool{
			"openrouter": h.cfg.OpenRouter.Enabled,
			"ocr":        h.cfg.OCR.Enabled,
			"cache":      h.cfg.Cache.Enabled,
		},
	}
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}
	if h.cache != nil {
		response.Cache = h.cache.Stats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：上游閘門已滿時回報 not_ready
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.queue != nil {
		st := h.queue.GetQueueStatus()
		if st.MaxQueueSize > 0 && st.QueueLength >= st.MaxQueueSize {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"reason": "upstream queue is full",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
