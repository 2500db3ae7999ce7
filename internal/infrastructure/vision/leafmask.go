//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/domain/port"
)

// LeafMasker выделяет пиксели листа порогом в HSV и чистит маску морфологией.
type LeafMasker struct {
	Lower      gocv.Scalar
	Upper      gocv.Scalar
	KernelSize int
}

// NewLeafMasker создаёт маскировщик с фиксированными границами цвета листа.
func NewLeafMasker() *LeafMasker {
	return &LeafMasker{
		Lower:      gocv.NewScalar(LeafHSVLower[0], LeafHSVLower[1], LeafHSVLower[2], 0),
		Upper:      gocv.NewScalar(LeafHSVUpper[0], LeafHSVUpper[1], LeafHSVUpper[2], 0),
		KernelSize: MorphKernelSize,
	}
}

// LeafMask возвращает маску листа того же размера, что и изображение.
func (m *LeafMasker) LeafMask(img *image.NRGBA) (*entity.Mask, error) {
	bgr, err := nrgbaToBGR(img)
	if err != nil {
		return nil, fmt.Errorf("leaf mask: %w", err)
	}
	defer bgr.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	inRange := gocv.NewMat()
	defer inRange.Close()
	gocv.InRangeWithScalar(hsv, m.Lower, m.Upper, &inRange)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(m.KernelSize, m.KernelSize))
	defer kernel.Close()

	// Сначала закрываем мелкие разрывы, затем убираем одиночные точки.
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(inRange, &closed, gocv.MorphClose, kernel)

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(closed, &opened, gocv.MorphOpen, kernel)

	return matToMask(opened), nil
}

var _ port.LeafMasker = (*LeafMasker)(nil)
