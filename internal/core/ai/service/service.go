package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"menu-recommender/internal/core/ai/cache"
	"menu-recommender/internal/core/ai/provider"
	"menu-recommender/internal/core/ai/queue"
	"menu-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Response AI 回應
type Response struct {
	Content  string `json:"content"`
	CacheHit bool   `json:"cache_hit"`
}

// Service AI 服務：快取 → 閘門 → 提供者
type Service struct {
	provider provider.Provider
	store    cache.Store
	gate     *queue.Manager
}

// NewService 創建 AI 服務；store 與 gate 可以為 nil
func NewService(p provider.Provider, store cache.Store, gate *queue.Manager) *Service {
	return &Service{
		provider: p,
		store:    store,
		gate:     gate,
	}
}

// normalizePrompt 合併連續空白，確保快取 key 一致
func normalizePrompt(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Complete 以 system 與 user prompt 取得回應；kind 用來區分快取命名空間
func (s *Service) Complete(ctx context.Context, kind, system, prompt string) (*Response, error) {
	if s.provider == nil {
		return nil, common.ErrAIServiceDisabled
	}

	key := cache.Key(kind, normalizePrompt(s.provider.GetModel()+"\n"+system+"\n"+prompt))

	// 檢查緩存
	if s.store != nil {
		val, err := s.store.Get(ctx, key)
		switch {
		case err == nil:
			common.LogDebug("AI 回應快取命中", zap.String("kind", kind))
			return &Response{Content: val, CacheHit: true}, nil
		case !errors.Is(err, common.ErrCacheMiss):
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
	}

	req := &provider.Request{
		Messages: []provider.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	var resp *provider.Response
	call := func(ctx context.Context) error {
		start := time.Now()
		var err error
		resp, err = s.provider.Generate(ctx, req)
		common.LogUpstreamCall("openrouter", time.Since(start), err)
		return err
	}

	var err error
	if s.gate != nil {
		err = s.gate.Do(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		var ce *common.CustomError
		if errors.As(err, &ce) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, common.ErrAIServiceError.Wrap(err)
	}

	if s.store != nil {
		if err := s.store.Set(ctx, key, resp.Content); err != nil {
			common.LogWarn("寫入快取失敗", zap.Error(err))
		}
	}

	return &Response{Content: resp.Content}, nil
}
