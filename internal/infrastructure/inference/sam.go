package inference

import (
	"context"
	"fmt"
	"image"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/domain/port"
)

// Формы тензоров экспортированного SAM (encoder + prompt decoder).
const (
	samEmbedChannels = 256
	samEmbedSize     = 64
	samLowResMask    = 256
)

// SAMConfig пути и имена тензоров модели Segment Anything
type SAMConfig struct {
	EncoderPath   string
	DecoderPath   string
	EncoderInput  string
	EncoderOutput string
	Threads       int
}

// SAMSegmenter уточняет поражённые области по прямоугольникам-подсказкам.
// Предиктор хранит контекст текущего изображения (эмбеддинги энкодера),
// поэтому установка изображения и все предсказания по нему идут под одной блокировкой.
type SAMSegmenter struct {
	mu sync.Mutex

	encoder    *ort.AdvancedSession
	pixels     *ort.Tensor[float32]
	embeddings *ort.Tensor[float32]

	decoder      *ort.DynamicAdvancedSession
	maskInput    *ort.Tensor[float32]
	hasMaskInput *ort.Tensor[float32]

	// контекст текущего изображения
	current samInput
}

// NewSAMSegmenter загружает энкодер и декодер.
func NewSAMSegmenter(cfg SAMConfig) (*SAMSegmenter, error) {
	pixels, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, SAMInputSize, SAMInputSize))
	if err != nil {
		return nil, fmt.Errorf("sam pixel tensor: %w", err)
	}
	embeddings, err := ort.NewEmptyTensor[float32](ort.NewShape(1, samEmbedChannels, samEmbedSize, samEmbedSize))
	if err != nil {
		destroyAll(pixels)
		return nil, fmt.Errorf("sam embedding tensor: %w", err)
	}
	maskInput, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, samLowResMask, samLowResMask))
	if err != nil {
		destroyAll(pixels, embeddings)
		return nil, fmt.Errorf("sam mask input tensor: %w", err)
	}
	hasMaskInput, err := ort.NewTensor(ort.NewShape(1), []float32{0})
	if err != nil {
		destroyAll(pixels, embeddings, maskInput)
		return nil, fmt.Errorf("sam has_mask_input tensor: %w", err)
	}

	options, err := newSessionOptions(cfg.Threads)
	if err != nil {
		destroyAll(pixels, embeddings, maskInput, hasMaskInput)
		return nil, err
	}
	defer options.Destroy()

	encoder, err := ort.NewAdvancedSession(cfg.EncoderPath,
		[]string{cfg.EncoderInput}, []string{cfg.EncoderOutput},
		[]ort.Value{pixels}, []ort.Value{embeddings}, options)
	if err != nil {
		destroyAll(pixels, embeddings, maskInput, hasMaskInput)
		return nil, fmt.Errorf("load sam encoder %s: %w", cfg.EncoderPath, err)
	}

	decoder, err := ort.NewDynamicAdvancedSession(cfg.DecoderPath,
		[]string{"image_embeddings", "point_coords", "point_labels", "mask_input", "has_mask_input", "orig_im_size"},
		[]string{"masks", "iou_predictions"}, options)
	if err != nil {
		destroyAll(encoder, pixels, embeddings, maskInput, hasMaskInput)
		return nil, fmt.Errorf("load sam decoder %s: %w", cfg.DecoderPath, err)
	}

	return &SAMSegmenter{
		encoder:      encoder,
		pixels:       pixels,
		embeddings:   embeddings,
		decoder:      decoder,
		maskInput:    maskInput,
		hasMaskInput: hasMaskInput,
	}, nil
}

// SegmentBoxes задаёт изображение один раз и предсказывает одну лучшую маску на каждый прямоугольник.
// Результат — попиксельное ИЛИ всех масок; без прямоугольников — пустая маска.
func (s *SAMSegmenter) SegmentBoxes(ctx context.Context, img *image.NRGBA, boxes []entity.BoundingBox) (*entity.Mask, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(boxes) == 0 {
		return entity.NewMask(w, h), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setImage(ctx, img); err != nil {
		return nil, err
	}

	union := entity.NewMask(w, h)
	for _, box := range boxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		box = box.Clamp(w, h)
		if box.Empty() {
			continue
		}
		mask, err := s.predict(box)
		if err != nil {
			return nil, err
		}
		if err := union.Union(mask); err != nil {
			return nil, fmt.Errorf("sam: %w", err)
		}
	}
	return union, nil
}

// setImage прогоняет энкодер и запоминает контекст изображения. Вызывается под s.mu.
func (s *SAMSegmenter) setImage(ctx context.Context, img *image.NRGBA) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in := prepareSAMInput(img)
	copy(s.pixels.GetData(), in.pixels)
	in.pixels = nil
	if err := s.encoder.Run(); err != nil {
		return fmt.Errorf("sam encoder: run: %w", err)
	}
	s.current = in
	return nil
}

// predict запускает декодер по одному прямоугольнику без точечных подсказок. Вызывается под s.mu.
func (s *SAMSegmenter) predict(box entity.BoundingBox) (*entity.Mask, error) {
	coords, labels := boxPrompt(box, s.current)

	pointCoords, err := ort.NewTensor(ort.NewShape(1, int64(len(labels)), 2), coords)
	if err != nil {
		return nil, fmt.Errorf("sam point coords: %w", err)
	}
	defer pointCoords.Destroy()

	pointLabels, err := ort.NewTensor(ort.NewShape(1, int64(len(labels))), labels)
	if err != nil {
		return nil, fmt.Errorf("sam point labels: %w", err)
	}
	defer pointLabels.Destroy()

	origSize, err := ort.NewTensor(ort.NewShape(2), []float32{float32(s.current.origH), float32(s.current.origW)})
	if err != nil {
		return nil, fmt.Errorf("sam orig size: %w", err)
	}
	defer origSize.Destroy()

	masks, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, int64(s.current.origH), int64(s.current.origW)))
	if err != nil {
		return nil, fmt.Errorf("sam masks: %w", err)
	}
	defer masks.Destroy()

	scores, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		return nil, fmt.Errorf("sam scores: %w", err)
	}
	defer scores.Destroy()

	err = s.decoder.Run(
		[]ort.Value{s.embeddings, pointCoords, pointLabels, s.maskInput, s.hasMaskInput, origSize},
		[]ort.Value{masks, scores},
	)
	if err != nil {
		return nil, fmt.Errorf("sam decoder: run: %w", err)
	}

	return logitsToMask(masks.GetData(), s.current.origW, s.current.origH), nil
}

// Close освобождает сессии и тензоры.
func (s *SAMSegmenter) Close() {
	destroyAll(s.encoder, s.decoder, s.pixels, s.embeddings, s.maskInput, s.hasMaskInput)
}

var _ port.RefinedSegmenter = (*SAMSegmenter)(nil)
