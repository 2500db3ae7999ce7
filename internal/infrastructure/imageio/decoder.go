package imageio

import (
	"bytes"
	"fmt"
	"image"

	// Дополнительные форматы, которые присылают с телефонов и сканеров.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/domain/port"
)

const (
	// DefaultInputSize сторона квадратного входа классификатора и U-Net
	DefaultInputSize = 224
	// DefaultMaxPixels предел площади изображения, около 40 Мп
	DefaultMaxPixels = 40 << 20
)

// Decoder декодирует загрузку и готовит NHWC-тензор для моделей.
type Decoder struct {
	InputSize int
	MaxPixels int // заявленная в заголовке площадь проверяется до декодирования
}

// NewDecoder создаёт декодер с заданной стороной входа модели.
func NewDecoder(inputSize int) *Decoder {
	if inputSize <= 0 {
		inputSize = DefaultInputSize
	}
	return &Decoder{InputSize: inputSize, MaxPixels: DefaultMaxPixels}
}

// Decode читает изображение, учитывает EXIF-ориентацию и приводит его к RGB.
func (d *Decoder) Decode(data []byte) (*entity.LoadedImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode: empty upload: %w", entity.ErrInvalidImage)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %v: %w", err, entity.ErrInvalidImage)
	}
	if d.MaxPixels > 0 && cfg.Width*cfg.Height > d.MaxPixels {
		return nil, fmt.Errorf("decode: %dx%d exceeds %d pixels: %w", cfg.Width, cfg.Height, d.MaxPixels, entity.ErrInvalidImage)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %v: %w", err, entity.ErrInvalidImage)
	}

	rgb := ToRGB(img)
	if rgb.Bounds().Empty() {
		return nil, fmt.Errorf("decode: zero-sized image: %w", entity.ErrInvalidImage)
	}

	return &entity.LoadedImage{
		RGB:    rgb,
		Tensor: d.Tensor(rgb),
	}, nil
}

// Tensor масштабирует изображение до InputSize×InputSize и переводит значения в [0, 1].
func (d *Decoder) Tensor(img *image.NRGBA) entity.Tensor {
	size := d.InputSize
	resized := imaging.Resize(img, size, size, imaging.CatmullRom)

	data := make([]float32, size*size*3)
	idx := 0
	for y := 0; y < size; y++ {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+size*4]
		for x := 0; x < size; x++ {
			data[idx] = float32(row[x*4]) / 255.0
			data[idx+1] = float32(row[x*4+1]) / 255.0
			data[idx+2] = float32(row[x*4+2]) / 255.0
			idx += 3
		}
	}

	return entity.Tensor{
		Shape: []int64{1, int64(size), int64(size), 3},
		Data:  data,
	}
}

// ToRGB приводит любое изображение к *image.NRGBA с началом координат в (0, 0).
// Альфа-канал отбрасывается: непрозрачность выставляется в 255, цвета не смешиваются с фоном.
func ToRGB(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

var _ port.ImageDecoder = (*Decoder)(nil)
