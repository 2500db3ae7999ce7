package inference

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/domain/port"
)

// Segmenter U-Net для грубой карты поражения.
type Segmenter struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	size    int
}

// NewSegmenter загружает модель сегментации. Выход — [1, S, S, 1].
func NewSegmenter(cfg SessionConfig) (*Segmenter, error) {
	size := int64(cfg.InputSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, size, size, 3))
	if err != nil {
		return nil, fmt.Errorf("segmenter input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, size, size, 1))
	if err != nil {
		destroyAll(input)
		return nil, fmt.Errorf("segmenter output tensor: %w", err)
	}

	options, err := newSessionOptions(cfg.Threads)
	if err != nil {
		destroyAll(input, output)
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.Value{input}, []ort.Value{output}, options)
	if err != nil {
		destroyAll(input, output)
		return nil, fmt.Errorf("load segmenter %s: %w", cfg.ModelPath, err)
	}

	return &Segmenter{
		session: session,
		input:   input,
		output:  output,
		size:    cfg.InputSize,
	}, nil
}

// Segment возвращает вероятности поражения в разрешении модели.
func (s *Segmenter) Segment(ctx context.Context, input entity.Tensor) (*entity.ProbabilityMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dst := s.input.GetData()
	if err := checkInput("segmenter", input, len(dst)); err != nil {
		return nil, err
	}
	copy(dst, input.Data)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("segmenter: run: %w", err)
	}

	values := make([]float32, s.size*s.size)
	copy(values, s.output.GetData())
	return &entity.ProbabilityMap{Width: s.size, Height: s.size, Values: values}, nil
}

// Close освобождает сессию и тензоры.
func (s *Segmenter) Close() {
	destroyAll(s.session, s.input, s.output)
}

var _ port.CoarseSegmenter = (*Segmenter)(nil)
