package entity

import "image"

// Tensor входной тензор модели в раскладке NHWC
type Tensor struct {
	Shape []int64
	Data  []float32
}

// Len возвращает число элементов по форме тензора.
func (t Tensor) Len() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= int(d)
	}
	return n
}

// LoadedImage декодированное изображение и подготовленный для моделей тензор
type LoadedImage struct {
	RGB    *image.NRGBA
	Tensor Tensor
}

// Width ширина исходного изображения
func (l *LoadedImage) Width() int { return l.RGB.Bounds().Dx() }

// Height высота исходного изображения
func (l *LoadedImage) Height() int { return l.RGB.Bounds().Dy() }
