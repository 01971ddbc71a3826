package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"menu-recommender/internal/infrastructure/config"
	"menu-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Status 閘門狀態
type Status struct {
	Active         int   `json:"active"`
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	RejectedCount  int64 `json:"rejected_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 上游呼叫閘門：最多 workers 個同時執行，最多 maxSize 個排隊等待，超過則立即拒絕
type Manager struct {
	workers   int
	maxSize   int
	slots     chan struct{}
	done      chan struct{}
	once      sync.Once
	waiting   int64
	active    int64
	processed int64
	rejected  int64
}

// NewManager 創建新的隊列管理器
func NewManager(cfg *config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	maxSize := cfg.MaxSize
	if maxSize < 0 {
		maxSize = 0
	}
	return &Manager{
		workers: workers,
		maxSize: maxSize,
		slots:   make(chan struct{}, workers),
		done:    make(chan struct{}),
	}
}

// Do 取得執行名額後呼叫 fn；排隊已滿回傳 common.ErrQueueFull
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case <-m.done:
		return common.ErrServiceUnavailable
	default:
	}

	if err := m.acquire(ctx); err != nil {
		return err
	}
	atomic.AddInt64(&m.active, 1)
	defer func() {
		atomic.AddInt64(&m.active, -1)
		atomic.AddInt64(&m.processed, 1)
		<-m.slots
	}()

	return fn(ctx)
}

func (m *Manager) acquire(ctx context.Context) error {
	select {
	case m.slots <- struct{}{}:
		return nil
	default:
	}

	if atomic.AddInt64(&m.waiting, 1) > int64(m.maxSize) {
		atomic.AddInt64(&m.waiting, -1)
		atomic.AddInt64(&m.rejected, 1)
		common.LogWarn("Request rejected, queue is full",
			zap.Int("max_queue_size", m.maxSize),
			zap.Int("workers", m.workers),
		)
		return common.ErrQueueFull
	}
	defer atomic.AddInt64(&m.waiting, -1)

	select {
	case m.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return common.ErrServiceUnavailable
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		Active:         int(atomic.LoadInt64(&m.active)),
		QueueLength:    int(atomic.LoadInt64(&m.waiting)),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		RejectedCount:  atomic.LoadInt64(&m.rejected),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 關閉閘門，排隊中的請求會收到服務不可用
func (m *Manager) Close() {
	m.once.Do(func() { close(m.done) })
}
