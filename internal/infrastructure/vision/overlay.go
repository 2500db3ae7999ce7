//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"gocv.io/x/gocv"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/domain/port"
)

// OverlayRenderer подсвечивает поражённые участки поверх исходного изображения.
type OverlayRenderer struct {
	Color   gocv.Scalar // BGR
	Alpha   float64
	Quality int
}

// NewOverlayRenderer создаёт рендерер с фиксированным цветом и прозрачностью.
func NewOverlayRenderer() *OverlayRenderer {
	return &OverlayRenderer{
		Color:   gocv.NewScalar(float64(OverlayColor.B), float64(OverlayColor.G), float64(OverlayColor.R), 0),
		Alpha:   OverlayAlpha,
		Quality: OverlayJPEGQuality,
	}
}

// Render накладывает маску и возвращает JPEG в base64.
func (r *OverlayRenderer) Render(img *image.NRGBA, mask *entity.Mask) (string, error) {
	bgr, err := nrgbaToBGR(img)
	if err != nil {
		return "", fmt.Errorf("overlay: %w", err)
	}
	defer bgr.Close()

	blended, err := r.blend(bgr, mask)
	if err != nil {
		return "", err
	}
	defer blended.Close()

	out, err := blended.ToImage()
	if err != nil {
		return "", fmt.Errorf("overlay: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: r.Quality}); err != nil {
		return "", fmt.Errorf("overlay: encode jpeg: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// blend считает result = original×1 + colored×alpha с насыщением, это не альфа-смешивание.
func (r *OverlayRenderer) blend(bgr gocv.Mat, mask *entity.Mask) (gocv.Mat, error) {
	if mask.Width != bgr.Cols() || mask.Height != bgr.Rows() {
		return gocv.NewMat(), fmt.Errorf("overlay: mask %dx%d for image %dx%d: %w",
			mask.Width, mask.Height, bgr.Cols(), bgr.Rows(), entity.ErrMaskSizeMismatch)
	}

	maskMat, err := maskToMat(mask)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("overlay: %w", err)
	}
	defer maskMat.Close()

	fill := gocv.NewMatWithSizeFromScalar(r.Color, bgr.Rows(), bgr.Cols(), gocv.MatTypeCV8UC3)
	defer fill.Close()

	colored := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), bgr.Rows(), bgr.Cols(), gocv.MatTypeCV8UC3)
	defer colored.Close()
	fill.CopyToWithMask(&colored, maskMat)

	result := gocv.NewMat()
	gocv.AddWeighted(bgr, 1, colored, r.Alpha, 0, &result)
	if result.Empty() {
		result.Close()
		return gocv.NewMat(), errors.New("overlay: blend produced empty image")
	}
	return result, nil
}

var _ port.OverlayRenderer = (*OverlayRenderer)(nil)
