package app

import (
	"context"
	"errors"
	"image"
	"sync"

	"maize-vision/internal/domain/entity"
)

const fakeSize = 10

// fakeDecoder отдаёт изображение fakeSize×fakeSize; "bad" — нечитаемая загрузка.
type fakeDecoder struct{}

func (fakeDecoder) Decode(data []byte) (*entity.LoadedImage, error) {
	if string(data) == "bad" {
		return nil, entity.ErrInvalidImage
	}
	return &entity.LoadedImage{
		RGB:    image.NewNRGBA(image.Rect(0, 0, fakeSize, fakeSize)),
		Tensor: entity.Tensor{Shape: []int64{1, 2, 2, 3}, Data: make([]float32, 12)},
	}, nil
}

type fakeClassifier struct {
	result entity.Classification
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, input entity.Tensor) (entity.Classification, error) {
	return f.result, f.err
}

// fakeCoarse возвращает карту 5×5 с поражением в левом верхнем углу.
type fakeCoarse struct {
	calls int
	probs []float32
}

func (f *fakeCoarse) Segment(ctx context.Context, input entity.Tensor) (*entity.ProbabilityMap, error) {
	f.calls++
	return &entity.ProbabilityMap{Width: 5, Height: 5, Values: f.probs}, nil
}

// fakeBoxes возвращает описывающий прямоугольник всей маски.
type fakeBoxes struct{}

func (fakeBoxes) ExtractBoxes(mask *entity.Mask) ([]entity.BoundingBox, error) {
	if mask.Empty() {
		return nil, nil
	}
	box := entity.BoundingBox{XMin: mask.Width, YMin: mask.Height}
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if !mask.At(x, y) {
				continue
			}
			box.XMin = min(box.XMin, x)
			box.YMin = min(box.YMin, y)
			box.XMax = max(box.XMax, x+1)
			box.YMax = max(box.YMax, y+1)
		}
	}
	return []entity.BoundingBox{box}, nil
}

// fakeRefined заполняет каждый прямоугольник целиком.
type fakeRefined struct {
	mu    sync.Mutex
	boxes []entity.BoundingBox
	err   error
}

func (f *fakeRefined) SegmentBoxes(ctx context.Context, img *image.NRGBA, boxes []entity.BoundingBox) (*entity.Mask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.boxes = append(f.boxes, boxes...)
	b := img.Bounds()
	out := entity.NewMask(b.Dx(), b.Dy())
	for _, box := range boxes {
		out.Fill(box)
	}
	return out, nil
}

// fakeLeaf считает листом прямоугольник leaf.
type fakeLeaf struct {
	leaf entity.BoundingBox
}

func (f fakeLeaf) LeafMask(img *image.NRGBA) (*entity.Mask, error) {
	b := img.Bounds()
	m := entity.NewMask(b.Dx(), b.Dy())
	m.Fill(f.leaf)
	return m, nil
}

type fakeOverlay struct {
	calls int
}

func (f *fakeOverlay) Render(img *image.NRGBA, mask *entity.Mask) (string, error) {
	f.calls++
	return "b3ZlcmxheQ==", nil
}

type fakeCache struct {
	store  map[string]*entity.PredictionResult
	getErr error
}

func (f *fakeCache) Get(ctx context.Context, key string) (*entity.PredictionResult, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.store[key], nil
}

func (f *fakeCache) Set(ctx context.Context, key string, r *entity.PredictionResult) error {
	if f.store == nil {
		f.store = make(map[string]*entity.PredictionResult)
	}
	f.store[key] = r
	return nil
}

var errModel = errors.New("onnx: shape mismatch")
