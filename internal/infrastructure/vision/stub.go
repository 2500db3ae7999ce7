//go:build !gocv
// +build !gocv

package vision

import (
	"errors"
	"image"

	"maize-vision/internal/domain/entity"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// LeafMasker заглушка без OpenCV.
type LeafMasker struct{}

// NewLeafMasker создаёт заглушку (без OpenCV).
func NewLeafMasker() *LeafMasker { return &LeafMasker{} }

// LeafMask возвращает ошибку, если сборка без тега gocv.
func (m *LeafMasker) LeafMask(img *image.NRGBA) (*entity.Mask, error) {
	_ = img
	return nil, errNoGoCV
}

// BoxExtractor заглушка без OpenCV.
type BoxExtractor struct{}

// NewBoxExtractor создаёт заглушку (без OpenCV).
func NewBoxExtractor() *BoxExtractor { return &BoxExtractor{} }

// ExtractBoxes возвращает ошибку, если сборка без тега gocv.
func (e *BoxExtractor) ExtractBoxes(mask *entity.Mask) ([]entity.BoundingBox, error) {
	_ = mask
	return nil, errNoGoCV
}

// OverlayRenderer заглушка без OpenCV.
type OverlayRenderer struct{}

// NewOverlayRenderer создаёт заглушку (без OpenCV).
func NewOverlayRenderer() *OverlayRenderer { return &OverlayRenderer{} }

// Render возвращает ошибку, если сборка без тега gocv.
func (r *OverlayRenderer) Render(img *image.NRGBA, mask *entity.Mask) (string, error) {
	_ = img
	_ = mask
	return "", errNoGoCV
}
