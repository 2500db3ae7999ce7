package entity

import "image"

// BoundingBox прямоугольник вокруг поражённой области, подсказка для уточняющей сегментации
type BoundingBox struct {
	XMin int // левая граница
	YMin int // верхняя граница
	XMax int // правая граница (исключительно)
	YMax int // нижняя граница (исключительно)
}

// BoxFromRect строит BoundingBox из image.Rectangle.
func BoxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{XMin: r.Min.X, YMin: r.Min.Y, XMax: r.Max.X, YMax: r.Max.Y}
}

// Rect возвращает прямоугольник в виде image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.XMin, b.YMin, b.XMax, b.YMax)
}

// Width ширина в пикселях
func (b BoundingBox) Width() int { return b.XMax - b.XMin }

// Height высота в пикселях
func (b BoundingBox) Height() int { return b.YMax - b.YMin }

// Empty сообщает, что прямоугольник вырожден.
func (b BoundingBox) Empty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Clamp обрезает прямоугольник границами изображения.
func (b BoundingBox) Clamp(width, height int) BoundingBox {
	r := b.Rect().Intersect(image.Rect(0, 0, width, height))
	return BoxFromRect(r)
}
