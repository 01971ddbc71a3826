package menu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"menu-recommender/internal/core/ai/provider"
	"menu-recommender/internal/core/recommend"
	"menu-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Preferences 每次請求帶入的使用者設定、情境與推薦模式
type Preferences struct {
	Profile recommend.UserProfile `json:"profile"`
	Context recommend.Context     `json:"context"`
	Mode    recommend.Mode        `json:"mode,omitempty"`
}

// ScanRequest 菜單照片掃描請求；Image 可以是 URL、data URI 或 base64
type ScanRequest struct {
	Image string
	Preferences
}

// TextRequest 已取得菜單文字時的請求
type TextRequest struct {
	Text string
	Preferences
}

// ScanResult 掃描結果
type ScanResult struct {
	ScanID         string                   `json:"scan_id"`
	MenuText       string                   `json:"menu_text"`
	Dishes         []recommend.Dish         `json:"dishes"`
	Recommendation recommend.Recommendation `json:"recommendation"`
	Disclaimer     string                   `json:"disclaimer,omitempty"`
}

// imageDecoder 將使用者上傳的圖片轉為 JPEG
type imageDecoder interface {
	Decode(ctx context.Context, input string) ([]byte, error)
}

// ScanService 照片 → 文字 → 菜色 → 推薦
type ScanService struct {
	images imageDecoder
	ocr    provider.TextExtractor
	dishes provider.DishGenerator
	engine *recommend.Engine
}

// NewScanService 創建掃描服務；ocr 或 dishes 為 nil 時對應的步驟回傳服務未啟用
func NewScanService(images imageDecoder, ocr provider.TextExtractor, dishes provider.DishGenerator, engine *recommend.Engine) *ScanService {
	if engine == nil {
		engine = recommend.NewEngine(recommend.DefaultOptions())
	}
	return &ScanService{
		images: images,
		ocr:    ocr,
		dishes: dishes,
		engine: engine,
	}
}

// Scan 處理一張菜單照片
func (s *ScanService) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	if err := req.Context.Validate(); err != nil {
		return nil, err
	}
	if s.ocr == nil || s.images == nil {
		return nil, common.ErrOCRServiceDisabled
	}

	img, err := s.images.Decode(ctx, req.Image)
	if err != nil {
		return nil, fmt.Errorf("decode menu image: %w", err)
	}

	start := time.Now()
	text, err := s.ocr.ExtractText(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("extract menu text: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.ErrNoMenuText
	}
	common.LogInfo("菜單文字辨識完成",
		zap.Int("image_bytes", len(img)),
		zap.Int("text_length", len(text)),
		zap.Duration("耗時", time.Since(start)),
	)

	return s.RecommendText(ctx, TextRequest{Text: text, Preferences: req.Preferences})
}

// RecommendText 略過文字辨識，直接從菜單文字產生推薦
func (s *ScanService) RecommendText(ctx context.Context, req TextRequest) (*ScanResult, error) {
	if err := req.Context.Validate(); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, common.ErrNoMenuText
	}
	if s.dishes == nil {
		return nil, common.ErrAIServiceDisabled
	}

	raws, err := s.dishes.GenerateDishes(ctx, text)
	if err != nil {
		return nil, err
	}
	dishes := recommend.NormalizeDishes(raws)
	if len(dishes) == 0 {
		return nil, common.ErrNoDishesFound
	}

	rec, err := s.Recommend(dishes, req.Preferences)
	if err != nil {
		return nil, err
	}

	return &ScanResult{
		ScanID:         common.GenerateUUID(),
		MenuText:       text,
		Dishes:         dishes,
		Recommendation: rec,
		Disclaimer:     rec.Disclaimer,
	}, nil
}

// Recommend 對已正規化的菜色執行推薦
func (s *ScanService) Recommend(dishes []recommend.Dish, prefs Preferences) (recommend.Recommendation, error) {
	if err := prefs.Context.Validate(); err != nil {
		return recommend.Recommendation{}, err
	}
	r, err := recommend.NewRecommender(prefs.Mode, s.engine)
	if err != nil {
		return recommend.Recommendation{}, err
	}

	rec := r.Recommend(dishes, prefs.Profile, prefs.Context.WithDefaults())
	common.LogInfo("推薦完成",
		zap.String("mode", string(rec.Mode)),
		zap.Int("dishes", len(dishes)),
		zap.Int("rejected", len(rec.Rejected)),
		zap.Bool("fallback", rec.Fallback),
		zap.Bool("no_safe_dishes", rec.NoSafeDishes),
	)
	return rec, nil
}
