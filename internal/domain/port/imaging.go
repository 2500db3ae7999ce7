package port

import (
	"image"

	"maize-vision/internal/domain/entity"
)

// ImageDecoder интерфейс загрузчика изображений
type ImageDecoder interface {
	// Decode читает байты изображения и готовит тензор для моделей
	Decode(data []byte) (*entity.LoadedImage, error)
}

// LeafMasker интерфейс выделения листа по цвету
type LeafMasker interface {
	// LeafMask возвращает маску пикселей листа
	LeafMask(img *image.NRGBA) (*entity.Mask, error)
}

// BoxExtractor интерфейс поиска прямоугольников по маске
type BoxExtractor interface {
	// ExtractBoxes возвращает по прямоугольнику на каждый внешний контур
	ExtractBoxes(mask *entity.Mask) ([]entity.BoundingBox, error)
}

// OverlayRenderer интерфейс отрисовки подсветки
type OverlayRenderer interface {
	// Render накладывает маску на изображение и возвращает JPEG в base64
	Render(img *image.NRGBA, mask *entity.Mask) (string, error)
}
