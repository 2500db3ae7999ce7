package port

import (
	"context"

	"maize-vision/internal/domain/entity"
)

// AnalysisRepository интерфейс хранилища истории анализов
type AnalysisRepository interface {
	// Save сохраняет анализ
	Save(ctx context.Context, analysis *entity.Analysis) error

	// Get возвращает анализ по ID или entity.ErrAnalysisNotFound
	Get(ctx context.Context, id string) (*entity.Analysis, error)

	// List возвращает последние анализы, новые первыми
	List(ctx context.Context, limit int) ([]*entity.Analysis, error)
}

// ResultCache интерфейс кэша результатов по хэшу изображения
type ResultCache interface {
	// Get возвращает (nil, nil) при промахе
	Get(ctx context.Context, imageMD5 string) (*entity.PredictionResult, error)

	Set(ctx context.Context, imageMD5 string, result *entity.PredictionResult) error
}
