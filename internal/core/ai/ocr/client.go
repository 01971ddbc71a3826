package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"menu-recommender/internal/infrastructure/config"
	"menu-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client OCR.space 相容的文字辨識客戶端
type Client struct {
	client *resty.Client
	config *config.OCRConfig
}

// parseResponse /parse/image 的回應；ErrorMessage 可能是字串或字串陣列
type parseResponse struct {
	ParsedResults []struct {
		ParsedText    string `json:"ParsedText"`
		FileParseExit int    `json:"FileParseExitCode"`
	} `json:"ParsedResults"`
	OCRExitCode           int             `json:"OCRExitCode"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// NewClient 創建 OCR 客戶端
func NewClient(cfg *config.OCRConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("apikey", cfg.APIKey)

	return &Client{
		client: client,
		config: cfg,
	}
}

// ExtractText 傳入 JPEG 圖片，回傳辨識出的全部文字
func (c *Client) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", common.ErrInvalidImageFormat
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"base64Image":       "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
			"language":          c.config.Language,
			"OCREngine":         strconv.Itoa(c.config.Engine),
			"isOverlayRequired": "false",
			"scale":             "true",
			"detectOrientation": "true",
		}).
		Post("/parse/image")
	common.LogUpstreamCall("ocr", time.Since(start), err)
	if err != nil {
		return "", common.ErrOCRServiceError.Wrap(fmt.Errorf("failed to send request: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return "", common.ErrOCRServiceError.Wrap(fmt.Errorf("status %d: %s", resp.StatusCode(), truncate(resp.String(), 300)))
	}

	var parsed parseResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", common.ErrOCRServiceError.Wrap(fmt.Errorf("failed to parse response: %w", err))
	}
	if parsed.IsErroredOnProcessing {
		return "", common.ErrOCRServiceError.Wrap(fmt.Errorf("processing failed: %s", errorMessage(parsed.ErrorMessage)))
	}

	parts := make([]string, 0, len(parsed.ParsedResults))
	for _, r := range parsed.ParsedResults {
		if text := strings.TrimSpace(r.ParsedText); text != "" {
			parts = append(parts, text)
		}
	}
	text := strings.Join(parts, "\n")

	common.LogDebug("OCR completed",
		zap.Int("exit_code", parsed.OCRExitCode),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
