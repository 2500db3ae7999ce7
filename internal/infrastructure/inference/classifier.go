package inference

import (
	"context"
	"fmt"
	"math"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/domain/port"
)

// Classifier классификатор болезней на onnxruntime.
// Тензоры привязаны к сессии, поэтому запуски сериализуются.
type Classifier struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	labels  []entity.Label
}

// NewClassifier загружает модель классификации.
func NewClassifier(cfg SessionConfig, labels []entity.Label) (*Classifier, error) {
	size := int64(cfg.InputSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, size, size, 3))
	if err != nil {
		return nil, fmt.Errorf("classifier input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(labels))))
	if err != nil {
		destroyAll(input)
		return nil, fmt.Errorf("classifier output tensor: %w", err)
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
		return nil, fmt.Errorf("load classifier %s: %w", cfg.ModelPath, err)
	}

	return &Classifier{
		session: session,
		input:   input,
		output:  output,
		labels:  labels,
	}, nil
}

// Classify запускает модель и выбирает класс с максимальной вероятностью.
func (c *Classifier) Classify(ctx context.Context, input entity.Tensor) (entity.Classification, error) {
	if err := ctx.Err(); err != nil {
		return entity.Classification{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dst := c.input.GetData()
	if err := checkInput("classifier", input, len(dst)); err != nil {
		return entity.Classification{}, err
	}
	copy(dst, input.Data)

	if err := c.session.Run(); err != nil {
		return entity.Classification{}, fmt.Errorf("classifier: run: %w", err)
	}
	return pickLabel(c.output.GetData(), c.labels)
}

// Close освобождает сессию и тензоры.
func (c *Classifier) Close() {
	destroyAll(c.session, c.input, c.output)
}

// pickLabel argmax по выходу модели против фиксированного списка меток.
func pickLabel(scores []float32, labels []entity.Label) (entity.Classification, error) {
	if len(scores) != len(labels) || len(labels) == 0 {
		return entity.Classification{}, fmt.Errorf("classifier: %d scores for %d labels", len(scores), len(labels))
	}

	best := 0
	for i, s := range scores {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return entity.Classification{}, fmt.Errorf("classifier: non-finite score %v for %s", s, labels[i])
		}
		if s > scores[best] {
			best = i
		}
	}

	confidence := float64(scores[best])
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return entity.Classification{Label: labels[best], Confidence: confidence}, nil
}

var _ port.Classifier = (*Classifier)(nil)
