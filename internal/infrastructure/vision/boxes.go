//go:build gocv
// +build gocv

package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/domain/port"
)

// BoxExtractor строит прямоугольники по внешним контурам маски.
type BoxExtractor struct{}

// NewBoxExtractor создаёт экстрактор прямоугольников.
func NewBoxExtractor() *BoxExtractor {
	return &BoxExtractor{}
}

// ExtractBoxes возвращает по прямоугольнику на каждый внешний контур.
func (e *BoxExtractor) ExtractBoxes(mask *entity.Mask) ([]entity.BoundingBox, error) {
	if mask == nil || mask.Empty() {
		return nil, nil
	}

	mat, err := maskToMat(mask)
	if err != nil {
		return nil, fmt.Errorf("extract boxes: %w", err)
	}
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	boxes := make([]entity.BoundingBox, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		if rect.Empty() {
			continue
		}
		boxes = append(boxes, entity.BoxFromRect(rect))
	}
	return boxes, nil
}

var _ port.BoxExtractor = (*BoxExtractor)(nil)
