package httpapi

import (
	"time"

	"maize-vision/internal/domain/entity"
)

// PredictResponse ответ POST /predict
type PredictResponse struct {
	AnalysisID         string  `json:"analysis_id"`
	Prediction         string  `json:"prediction"`
	Confidence         string  `json:"confidence"`
	SeverityPercentage float64 `json:"severity_percentage"`
	SeverityLabel      *string `json:"severity_label,omitempty"`
	OverlayImage       string  `json:"overlay_image,omitempty"`
}

// AnalysisResponse запись истории
type AnalysisResponse struct {
	PredictResponse
	Source    string    `json:"source"`
	ImageMD5  string    `json:"image_md5"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse ответ с ошибкой; подробности сбоя наружу не попадают
type ErrorResponse struct {
	Error string `json:"error"`
}

func newPredictResponse(a *entity.Analysis) PredictResponse {
	r := a.Result
	resp := PredictResponse{
		AnalysisID:         a.ID,
		Prediction:         string(r.Prediction),
		Confidence:         r.ConfidencePercent(),
		SeverityPercentage: r.SeverityPercentage,
		OverlayImage:       r.OverlayImage,
	}
	if r.SeverityLabel != nil {
		label := string(*r.SeverityLabel)
		resp.SeverityLabel = &label
	}
	return resp
}

func newAnalysisResponse(a *entity.Analysis, withOverlay bool) AnalysisResponse {
	resp := AnalysisResponse{
		PredictResponse: newPredictResponse(a),
		Source:          string(a.Source),
		ImageMD5:        a.ImageMD5,
		CreatedAt:       a.CreatedAt,
	}
	if !withOverlay {
		resp.OverlayImage = ""
	}
	return resp
}
