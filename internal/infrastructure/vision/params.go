package vision

import "image/color"

// Границы цвета листа в HSV (шкала OpenCV: H 0..179, S и V 0..255).
// Подобраны вручную, без согласования с продуктом не менять.
var (
	LeafHSVLower = [3]float64{25, 40, 40}
	LeafHSVUpper = [3]float64{90, 255, 255}
)

const (
	// MorphKernelSize сторона прямоугольного ядра для закрытия и открытия маски листа
	MorphKernelSize = 5

	// OverlayAlpha вес цветной маски при наложении
	OverlayAlpha = 0.5

	// OverlayJPEGQuality качество JPEG для изображения с подсветкой
	OverlayJPEGQuality = 90
)

// OverlayColor цвет подсветки поражённых участков
var OverlayColor = color.RGBA{R: 255, A: 255}
