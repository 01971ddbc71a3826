package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"menu-recommender/internal/core/ai/provider"
	"menu-recommender/internal/infrastructure/config"
	"menu-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client OpenRouter API 客戶端
type Client struct {
	client *resty.Client
	config *config.OpenRouterConfig
}

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示 API 請求
type Request struct {
	Messages    []Message       `json:"messages"`
	Model       string          `json:"model,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
	Provider    *ProviderConfig `json:"provider,omitempty"`
}

// ProviderConfig 表示供應商配置
type ProviderConfig struct {
	Only           []string `json:"only,omitempty"`
	Ignore         []string `json:"ignore,omitempty"`
	Order          []string `json:"order,omitempty"`
	DataCollection string   `json:"data_collection,omitempty"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message Message `json:"message"`
}

// UsageInfo 使用量信息
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Error 表示 API 錯誤
type Error struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

const defaultTemperature = 0.2

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg *config.OpenRouterConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://menu-recommender.app").
		SetHeader("X-Title", "Menu Recommender")

	return &Client{
		client: client,
		config: cfg,
	}
}

var base64Pattern = regexp.MustCompile(`[A-Za-z0-9+/=]{200,}`)

// sanitizeResponse 移除大段 base64 並截斷過長的內容，避免寫進日誌
func sanitizeResponse(body []byte) string {
	s := base64Pattern.ReplaceAllString(string(body), "[BASE64_DATA_REMOVED]")
	if len(s) > 500 {
		return s[:500] + "...(truncated)"
	}
	return s
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := &Request{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: defaultTemperature,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		body.Temperature = req.Temperature
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, Message{Role: m.Role, Content: m.Content})
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
	)

	var result Response
	var apiErr Error
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.IsError() {
		sanitized := sanitizeResponse(resp.Body())
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", body.Model),
			zap.String("response", sanitized),
		)
		if apiErr.Error.Message != "" {
			return nil, fmt.Errorf("OpenRouter error (status %d): %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return nil, fmt.Errorf("OpenRouter error (status %d): %s", resp.StatusCode(), sanitized)
	}

	// resty 只會在 Content-Type 為 JSON 時填入 result
	if len(result.Choices) == 0 && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
		}
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("empty content in OpenRouter response")
	}

	common.LogDebug("Successfully generated response from AI service",
		zap.String("model", body.Model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)

	return &provider.Response{
		Content: content,
		Usage: provider.Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
	}, nil
}

// GetModel 回傳目前使用的模型
func (c *Client) GetModel() string {
	return c.config.Model
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
