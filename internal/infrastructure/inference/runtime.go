package inference

import (
	"fmt"
	"runtime"

	ort "github.com/yalue/onnxruntime_go"

	"maize-vision/internal/domain/entity"
)

// DefaultLibraryPath путь к общей библиотеке onnxruntime для текущей платформы.
func DefaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.dylib"
		}
		return "./third_party/onnxruntime.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
}

// InitRuntime загружает onnxruntime один раз на процесс.
func InitRuntime(libPath string) error {
	if ort.IsInitialized() {
		return nil
	}
	if libPath == "" {
		libPath = DefaultLibraryPath()
	}
	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime (%s): %w", libPath, err)
	}
	return nil
}

// DestroyRuntime выгружает onnxruntime; вызывать после закрытия всех сессий.
func DestroyRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// SessionConfig параметры одной модели
type SessionConfig struct {
	ModelPath  string
	InputName  string
	OutputName string
	InputSize  int // сторона квадратного входа
	Threads    int // 0 — на усмотрение onnxruntime
}

func newSessionOptions(threads int) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	if threads > 0 {
		if err := options.SetIntraOpNumThreads(threads); err != nil {
			options.Destroy()
			return nil, fmt.Errorf("session options: %w", err)
		}
	}
	return options, nil
}

// destroyAll освобождает ресурсы onnxruntime, пропуская nil.
func destroyAll(items ...interface{ Destroy() error }) {
	for _, item := range items {
		if item != nil {
			_ = item.Destroy()
		}
	}
}

// checkInput сверяет форму и данные тензора с размером входа модели.
func checkInput(model string, input entity.Tensor, want int) error {
	if input.Len() != len(input.Data) {
		return fmt.Errorf("%s: tensor shape %v does not match %d values", model, input.Shape, len(input.Data))
	}
	if input.Len() != want {
		return fmt.Errorf("%s: input has %d values, model expects %d", model, input.Len(), want)
	}
	return nil
}
