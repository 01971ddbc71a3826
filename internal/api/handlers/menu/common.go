package menu

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	menuService "menu-recommender/internal/core/menu"
	"menu-recommender/internal/core/recommend"
	"menu-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextRequest 單次請求的情境；空值使用預設 moderate / regular
type ContextRequest struct {
	Hunger string `json:"hunger" binding:"omitempty,oneof=light moderate hearty"`
	Timing string `json:"timing" binding:"omitempty,oneof=pre_workout post_workout regular"`
}

// PreferencesRequest 各個推薦端點共用的 profile / context / mode
type PreferencesRequest struct {
	Profile recommend.UserProfile `json:"profile"`
	Context ContextRequest        `json:"context"`
	Mode    string                `json:"mode" binding:"omitempty,oneof=weighted category"`
}

func (p PreferencesRequest) toPreferences() menuService.Preferences {
	return menuService.Preferences{
		Profile: p.Profile,
		Context: recommend.Context{
			Hunger: recommend.Hunger(p.Context.Hunger),
			Timing: recommend.Timing(p.Context.Timing),
		},
		Mode: recommend.Mode(p.Mode),
	}
}

// respondError 將錯誤轉為統一的 JSON 錯誤響應
func respondError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = common.ErrGatewayTimeout.Wrap(err)
	}
	status, resp := common.ToResponse(err, gin.IsDebugging())
	_ = c.Error(err)

	common.LogError("請求處理失敗",
		zap.Error(err),
		zap.Int("status", status),
		zap.String("code", resp.Code),
		zap.String("request_id", requestid.Get(c)),
	)
	c.JSON(status, resp)
}

// respondBindError 請求格式或欄位驗證失敗
func respondBindError(c *gin.Context, err error) {
	common.LogWarn("請求格式無效",
		zap.Error(err),
		zap.String("request_id", requestid.Get(c)),
	)
	resp := common.ErrorResponse{
		Code:    common.ErrCodeInvalidRequest,
		Message: "Invalid request format",
		Details: err.Error(),
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

// getImageType 獲取圖片類型（用於日誌記錄）
func getImageType(image string) string {
	if image == "" {
		return "empty"
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return "url"
	}
	if strings.HasPrefix(image, "data:image/") {
		parts := strings.Split(image, ";base64,")
		if len(parts) == 2 {
			return "base64_data_uri_" + strings.TrimPrefix(parts[0], "data:image/")
		}
		return "invalid_data_uri"
	}
	if _, err := base64.StdEncoding.DecodeString(image); err == nil {
		return "base64"
	}
	return "unknown_format"
}
