//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"maize-vision/internal/domain/entity"
)

// nrgbaToBGR копирует RGB-пиксели в трёхканальную матрицу с порядком BGR, как принято в OpenCV.
func nrgbaToBGR(img *image.NRGBA) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), errors.New("nil image")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat(), errors.New("empty image")
	}

	buf := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := buf[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			dst[x*3] = src[x*4+2]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4]
		}
	}

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, buf)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("bgr mat: %w", err)
	}
	return mat, nil
}

// maskToMat превращает маску в одноканальную матрицу 0/255.
func maskToMat(mask *entity.Mask) (gocv.Mat, error) {
	if mask.Width == 0 || mask.Height == 0 {
		return gocv.NewMat(), errors.New("empty mask")
	}
	buf := make([]byte, len(mask.Pix))
	for i, v := range mask.Pix {
		if v {
			buf[i] = 255
		}
	}
	mat, err := gocv.NewMatFromBytes(mask.Height, mask.Width, gocv.MatTypeCV8U, buf)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("mask mat: %w", err)
	}
	return mat, nil
}

// matToMask читает одноканальную матрицу: ненулевые пиксели попадают в маску.
func matToMask(mat gocv.Mat) *entity.Mask {
	mask := entity.NewMask(mat.Cols(), mat.Rows())
	if !mat.IsContinuous() {
		mat = mat.Clone()
		defer mat.Close()
	}
	data := mat.ToBytes()
	for i := range mask.Pix {
		mask.Pix[i] = data[i] != 0
	}
	return mask
}
