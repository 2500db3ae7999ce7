package storage

import (
	"context"
	"sync"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/domain/port"
)

// DefaultHistoryLimit сколько анализов держим в памяти по умолчанию
const DefaultHistoryLimit = 500

// MemoryAnalysisRepository ограниченная по размеру история анализов в памяти.
// При переполнении вытесняются самые старые записи.
type MemoryAnalysisRepository struct {
	mu       sync.RWMutex
	limit    int
	order    []string // ID в порядке добавления
	analyses map[string]entity.Analysis
}

// NewMemoryAnalysisRepository создаёт хранилище на limit записей.
func NewMemoryAnalysisRepository(limit int) *MemoryAnalysisRepository {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryAnalysisRepository{
		limit:    limit,
		analyses: make(map[string]entity.Analysis),
	}
}

// Save сохраняет анализ
func (r *MemoryAnalysisRepository) Save(ctx context.Context, analysis *entity.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.analyses[analysis.ID]; !exists {
		r.order = append(r.order, analysis.ID)
	}
	r.analyses[analysis.ID] = *analysis

	for len(r.order) > r.limit {
		delete(r.analyses, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

// Get возвращает анализ по ID
func (r *MemoryAnalysisRepository) Get(ctx context.Context, id string) (*entity.Analysis, error) {
	r.mu.RLock()
	analysis, exists := r.analyses[id]
	r.mu.RUnlock()

	if !exists {
		return nil, entity.ErrAnalysisNotFound
	}
	return &analysis, nil
}

// List возвращает до limit последних анализов, новые первыми
func (r *MemoryAnalysisRepository) List(ctx context.Context, limit int) ([]*entity.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.order) {
		limit = len(r.order)
	}
	out := make([]*entity.Analysis, 0, limit)
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		analysis := r.analyses[r.order[i]]
		out = append(out, &analysis)
	}
	return out, nil
}

var _ port.AnalysisRepository = (*MemoryAnalysisRepository)(nil)
