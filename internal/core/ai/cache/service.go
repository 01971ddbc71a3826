package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"menu-recommender/internal/infrastructure/config"
	"menu-recommender/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "menu:llm:"

// Service Redis 緩存服務，多個實例可共用同一份 LLM 回應
type Service struct {
	client *redis.Client
	config *config.CacheConfig
	hits   int64
	misses int64
}

// NewService 創建緩存服務並測試連線
func NewService(cfg *config.CacheConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線", zap.String("addr", cfg.RedisAddr))
	return &Service{
		client: client,
		config: cfg,
	}, nil
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&s.misses, 1)
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	atomic.AddInt64(&s.hits, 1)
	return val, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 獲取緩存統計信息
func (s *Service) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend": config.CacheBackendRedis,
		"addr":    s.config.RedisAddr,
		"hits":    atomic.LoadInt64(&s.hits),
		"misses":  atomic.LoadInt64(&s.misses),
	}
}

// Close 關閉連線
func (s *Service) Close() error {
	return s.client.Close()
}
