package inference

import (
	"maize-vision/internal/domain/entity"
)

// ModelsConfig пути ко всем моделям конвейера
type ModelsConfig struct {
	LibraryPath string
	Classifier  SessionConfig
	Segmenter   SessionConfig
	SAM         SAMConfig
}

// Models загруженные один раз на процесс модели, только для чтения.
type Models struct {
	Classifier *Classifier
	Segmenter  *Segmenter
	SAM        *SAMSegmenter
}

// LoadModels инициализирует onnxruntime и загружает все три модели.
// При ошибке уже загруженные модели освобождаются.
func LoadModels(cfg ModelsConfig) (*Models, error) {
	if err := InitRuntime(cfg.LibraryPath); err != nil {
		return nil, err
	}

	classifier, err := NewClassifier(cfg.Classifier, entity.Labels())
	if err != nil {
		return nil, err
	}

	segmenter, err := NewSegmenter(cfg.Segmenter)
	if err != nil {
		classifier.Close()
		return nil, err
	}

	sam, err := NewSAMSegmenter(cfg.SAM)
	if err != nil {
		classifier.Close()
		segmenter.Close()
		return nil, err
	}

	return &Models{Classifier: classifier, Segmenter: segmenter, SAM: sam}, nil
}

// Close освобождает модели и выгружает onnxruntime.
func (m *Models) Close() error {
	m.Classifier.Close()
	m.Segmenter.Close()
	m.SAM.Close()
	return DestroyRuntime()
}
