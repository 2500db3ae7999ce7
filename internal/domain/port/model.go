package port

import (
	"context"
	"image"

	"maize-vision/internal/domain/entity"
)

// Classifier интерфейс классификатора болезней
type Classifier interface {
	// Classify возвращает класс с максимальной вероятностью и саму вероятность
	Classify(ctx context.Context, input entity.Tensor) (entity.Classification, error)
}

// CoarseSegmenter интерфейс грубой попиксельной сегментации
type CoarseSegmenter interface {
	// Segment возвращает карту вероятностей поражения в разрешении модели
	Segment(ctx context.Context, input entity.Tensor) (*entity.ProbabilityMap, error)
}

// RefinedSegmenter интерфейс уточняющей сегментации по прямоугольникам
type RefinedSegmenter interface {
	// SegmentBoxes строит маску по каждому прямоугольнику и возвращает их объединение
	SegmentBoxes(ctx context.Context, img *image.NRGBA, boxes []entity.BoundingBox) (*entity.Mask, error)
}
