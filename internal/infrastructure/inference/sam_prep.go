package inference

import (
	"image"

	"github.com/disintegration/imaging"

	"maize-vision/internal/domain/entity"
)

// SAMInputSize сторона входа энкодера SAM
const SAMInputSize = 1024

// Нормализация пикселей энкодера SAM (RGB, шкала 0..255).
var (
	samPixelMean = [3]float32{123.675, 116.28, 103.53}
	samPixelStd  = [3]float32{58.395, 57.12, 57.375}
)

// Метки точек в подсказке декодера.
const (
	labelPadding     float32 = -1
	labelBoxTopLeft  float32 = 2
	labelBoxBotRight float32 = 3
)

// samInput подготовленный вход энкодера и геометрия исходного изображения
type samInput struct {
	pixels       []float32 // CHW, 3×1024×1024
	origW, origH int
	resizedW     int
	resizedH     int
}

// prepareSAMInput масштабирует длинную сторону до 1024, нормализует и дополняет нулями справа и снизу.
func prepareSAMInput(img *image.NRGBA) samInput {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	newW, newH := samResizedSize(w, h)

	resized := imaging.Resize(img, newW, newH, imaging.Linear)

	plane := SAMInputSize * SAMInputSize
	pixels := make([]float32, 3*plane)
	for y := 0; y < newH; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < newW; x++ {
			off := y*SAMInputSize + x
			for c := 0; c < 3; c++ {
				pixels[c*plane+off] = (float32(row[x*4+c]) - samPixelMean[c]) / samPixelStd[c]
			}
		}
	}

	return samInput{pixels: pixels, origW: w, origH: h, resizedW: newW, resizedH: newH}
}

// samResizedSize размер после масштабирования длинной стороны до SAMInputSize.
func samResizedSize(w, h int) (int, int) {
	longest := w
	if h > longest {
		longest = h
	}
	if longest == 0 {
		return 0, 0
	}
	scale := float64(SAMInputSize) / float64(longest)
	newW := int(float64(w)*scale + 0.5)
	newH := int(float64(h)*scale + 0.5)
	return newW, newH
}

// boxPrompt переводит прямоугольник в координаты входа SAM: два угла и точка-заполнитель.
func boxPrompt(box entity.BoundingBox, in samInput) ([]float32, []float32) {
	sx := float32(in.resizedW) / float32(in.origW)
	sy := float32(in.resizedH) / float32(in.origH)
	coords := []float32{
		float32(box.XMin) * sx, float32(box.YMin) * sy,
		float32(box.XMax) * sx, float32(box.YMax) * sy,
		0, 0,
	}
	labels := []float32{labelBoxTopLeft, labelBoxBotRight, labelPadding}
	return coords, labels
}

// logitsToMask маска декодера: пиксель выбран, если логит больше нуля.
func logitsToMask(logits []float32, w, h int) *entity.Mask {
	mask := entity.NewMask(w, h)
	for i := range mask.Pix {
		if i >= len(logits) {
			break
		}
		mask.Pix[i] = logits[i] > 0
	}
	return mask
}
