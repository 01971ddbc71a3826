package menu

import (
	"context"
	"net/http"
	"time"

	menuService "menu-recommender/internal/core/menu"
	"menu-recommender/internal/core/recommend"
	"menu-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// scanner 掃描與推薦服務
type scanner interface {
	Scan(ctx context.Context, req menuService.ScanRequest) (*menuService.ScanResult, error)
	RecommendText(ctx context.Context, req menuService.TextRequest) (*menuService.ScanResult, error)
	Recommend(dishes []recommend.Dish, prefs menuService.Preferences) (recommend.Recommendation, error)
}

// Handler 菜單相關 API
type Handler struct {
	scans scanner
}

// NewHandler 創建菜單處理器
func NewHandler(scans scanner) *Handler {
	return &Handler{scans: scans}
}

// ScanRequest 菜單照片掃描請求
type ScanRequest struct {
	Image string `json:"image" binding:"required"` // base64、data URI 或圖片 URL
	PreferencesRequest
}

// ExtractRequest 菜單文字請求
type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
	PreferencesRequest
}

// RecommendRequest 對已知菜色做推薦；use_catalog 為 true 時改用內建菜單
type RecommendRequest struct {
	Dishes     []map[string]any `json:"dishes"`
	UseCatalog bool             `json:"use_catalog"`
	PreferencesRequest
}

// PreFilterRequest 只做硬性過濾
type PreFilterRequest struct {
	Dishes  []map[string]any      `json:"dishes" binding:"required"`
	Profile recommend.UserProfile `json:"profile"`
}

// CatalogResponse 內建菜單
type CatalogResponse struct {
	Count  int              `json:"count"`
	Dishes []recommend.Dish `json:"dishes"`
}

// HandleScan 處理 /menu/scan
func (h *Handler) HandleScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	start := time.Now()
	common.LogInfo("開始處理菜單掃描請求",
		zap.String("request_id", requestid.Get(c)),
		zap.String("image_type", getImageType(req.Image)),
		zap.Int("image_length", len(req.Image)),
		zap.String("mode", req.Mode),
	)

	result, err := h.scans.Scan(c.Request.Context(), menuService.ScanRequest{
		Image:       req.Image,
		Preferences: req.toPreferences(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("菜單掃描完成",
		zap.String("request_id", requestid.Get(c)),
		zap.String("scan_id", result.ScanID),
		zap.Int("dishes", len(result.Dishes)),
		zap.Duration("耗時", time.Since(start)),
	)
	c.JSON(http.StatusOK, result)
}

// HandleExtract 處理 /menu/extract
func (h *Handler) HandleExtract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.scans.RecommendText(c.Request.Context(), menuService.TextRequest{
		Text:        req.Text,
		Preferences: req.toPreferences(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleRecommend 處理 /recommendations
func (h *Handler) HandleRecommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var dishes []recommend.Dish
	switch {
	case req.UseCatalog:
		catalog, err := menuService.Catalog()
		if err != nil {
			respondError(c, err)
			return
		}
		dishes = catalog
	case len(req.Dishes) > 0:
		dishes = recommend.NormalizeDishes(req.Dishes)
		if len(dishes) == 0 {
			respondError(c, common.ErrNoDishesFound)
			return
		}
	default:
		respondError(c, common.NewValidationError("dishes or use_catalog is required"))
		return
	}

	rec, err := h.scans.Recommend(dishes, req.toPreferences())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandlePreFilter 處理 /recommendations/prefilter
func (h *Handler) HandlePreFilter(c *gin.Context) {
	var req PreFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, recommend.PreFilter(recommend.NormalizeDishes(req.Dishes), req.Profile))
}

// HandleCatalog 處理 /catalog
func (h *Handler) HandleCatalog(c *gin.Context) {
	dishes, err := menuService.Catalog()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CatalogResponse{Count: len(dishes), Dishes: dishes})
}
