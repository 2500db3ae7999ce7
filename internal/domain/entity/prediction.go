package entity

import (
	"fmt"
	"time"
)

// PredictionResult итог обработки одного изображения.
type PredictionResult struct {
	Prediction         Label          // метка класса
	Confidence         float64        // уверенность классификатора [0, 1]
	SeverityPercentage float64        // доля поражённой площади [0, 100]
	SeverityLabel      *SeverityLabel // nil для здорового листа
	OverlayImage       string         // JPEG в base64, пусто для здорового листа
}

// NewHealthyResult результат для здорового листа: без сегментации и наложения.
func NewHealthyResult(c Classification) *PredictionResult {
	return &PredictionResult{
		Prediction: c.Label,
		Confidence: c.Confidence,
	}
}

// NewDiseasedResult результат для поражённого листа.
func NewDiseasedResult(c Classification, severity float64, overlay string) *PredictionResult {
	label := ClassifySeverity(severity)
	return &PredictionResult{
		Prediction:         c.Label,
		Confidence:         c.Confidence,
		SeverityPercentage: severity,
		SeverityLabel:      &label,
		OverlayImage:       overlay,
	}
}

// ConfidencePercent форматирует уверенность как "93.17%".
func (r *PredictionResult) ConfidencePercent() string {
	return fmt.Sprintf("%.2f%%", r.Confidence*100)
}

// HasOverlay сообщает, что изображение с подсветкой построено.
func (r *PredictionResult) HasOverlay() bool {
	return r.OverlayImage != ""
}

// Source канал, через который пришло изображение
type Source string

const (
	SourceHTTP     Source = "http"
	SourceTelegram Source = "telegram"
)

// Analysis запись истории анализов
type Analysis struct {
	ID        string
	Source    Source
	ImageMD5  string
	CreatedAt time.Time
	Result    PredictionResult
}
