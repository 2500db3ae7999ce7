package app

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/domain/port"
)

// DiseaseThreshold порог вероятности U-Net для бинарной маски
const DiseaseThreshold = 0.5

// Pipeline набор адаптеров конвейера; собирается один раз при старте и дальше не меняется.
type Pipeline struct {
	Decoder    port.ImageDecoder
	Classifier port.Classifier
	Coarse     port.CoarseSegmenter
	Boxes      port.BoxExtractor
	Refined    port.RefinedSegmenter
	Leaf       port.LeafMasker
	Overlay    port.OverlayRenderer
}

func (p Pipeline) validate() error {
	if p.Decoder == nil || p.Classifier == nil || p.Coarse == nil || p.Boxes == nil ||
		p.Refined == nil || p.Leaf == nil || p.Overlay == nil {
		return errors.New("pipeline is not fully configured")
	}
	return nil
}

// DiagnosisService определяет болезнь листа и степень поражения.
type DiagnosisService struct {
	pipeline Pipeline
	analyses port.AnalysisRepository
	cache    port.ResultCache
	logger   *zap.Logger
	now      func() time.Time
}

// NewDiagnosisService создаёт сервис диагностики.
func NewDiagnosisService(pipeline Pipeline, analyses port.AnalysisRepository, cache port.ResultCache, logger *zap.Logger) *DiagnosisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiagnosisService{
		pipeline: pipeline,
		analyses: analyses,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Diagnose прогоняет изображение через конвейер (или берёт результат из кэша) и сохраняет анализ в историю.
func (s *DiagnosisService) Diagnose(ctx context.Context, data []byte, source entity.Source) (*entity.Analysis, error) {
	digest := imageMD5(data)
	log := s.logger.With(zap.String("md5", digest), zap.String("source", string(source)))

	result := s.cached(ctx, log, digest)
	if result == nil {
		var err error
		result, err = s.Predict(ctx, data)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, digest, result); err != nil {
				log.Warn("failed to set cache", zap.Error(err))
			}
		}
	}

	analysis := &entity.Analysis{
		ID:        uuid.NewString(),
		Source:    source,
		ImageMD5:  digest,
		CreatedAt: s.now().UTC(),
		Result:    *result,
	}
	if s.analyses != nil {
		if err := s.analyses.Save(ctx, analysis); err != nil {
			return nil, fmt.Errorf("save analysis: %w", err)
		}
	}

	log.Info("leaf diagnosed",
		zap.String("analysis_id", analysis.ID),
		zap.String("prediction", string(result.Prediction)),
		zap.Float64("confidence", result.Confidence),
		zap.Float64("severity_percentage", result.SeverityPercentage))
	return analysis, nil
}

func (s *DiagnosisService) cached(ctx context.Context, log *zap.Logger, digest string) *entity.PredictionResult {
	if s.cache == nil {
		return nil
	}
	result, err := s.cache.Get(ctx, digest)
	if err != nil {
		log.Warn("failed to get cache", zap.Error(err))
		return nil
	}
	if result != nil {
		log.Debug("cache hit")
	}
	return result
}

// Predict выполняет конвейер:
// Loaded → Classified → Healthy | CoarseSegmented → BoxesExtracted → Refined → SeverityComputed → OverlayRendered.
func (s *DiagnosisService) Predict(ctx context.Context, data []byte) (*entity.PredictionResult, error) {
	if err := s.pipeline.validate(); err != nil {
		return nil, stageError("configure", err)
	}
	p := s.pipeline

	loaded, err := p.Decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	w, h := loaded.Width(), loaded.Height()
	log := s.logger.With(zap.Int("width", w), zap.Int("height", h))
	log.Debug("image loaded")

	cls, err := p.Classifier.Classify(ctx, loaded.Tensor)
	if err != nil {
		return nil, stageError("classify", err)
	}
	if !cls.Label.Valid() || !(cls.Confidence >= 0 && cls.Confidence <= 1) {
		return nil, stageError("classify", fmt.Errorf("unexpected output %q (%v)", cls.Label, cls.Confidence))
	}
	log.Debug("image classified", zap.String("label", string(cls.Label)), zap.Float64("confidence", cls.Confidence))

	if cls.Label.IsHealthy() {
		return entity.NewHealthyResult(cls), nil
	}

	prob, err := p.Coarse.Segment(ctx, loaded.Tensor)
	if err != nil {
		return nil, stageError("coarse segment", err)
	}
	coarse := prob.Binarize(DiseaseThreshold).ResizeNearest(w, h)
	log.Debug("coarse segmentation done", zap.Int("pixels", coarse.Count()))

	boxes, err := p.Boxes.ExtractBoxes(coarse)
	if err != nil {
		return nil, stageError("extract boxes", err)
	}
	log.Debug("boxes extracted", zap.Int("boxes", len(boxes)))

	diseased, err := p.Refined.SegmentBoxes(ctx, loaded.RGB, boxes)
	if err != nil {
		return nil, stageError("refine", err)
	}
	log.Debug("refined segmentation done", zap.Int("pixels", diseased.Count()))

	leaf, err := p.Leaf.LeafMask(loaded.RGB)
	if err != nil {
		return nil, stageError("leaf mask", err)
	}

	severity, err := entity.ComputeSeverity(diseased, leaf)
	if err != nil {
		return nil, stageError("severity", err)
	}
	log.Debug("severity computed", zap.Int("leaf_pixels", leaf.Count()), zap.Float64("severity", severity))

	overlay, err := p.Overlay.Render(loaded.RGB, diseased)
	if err != nil {
		return nil, stageError("overlay", err)
	}

	return entity.NewDiseasedResult(cls, severity, overlay), nil
}

// Get возвращает анализ из истории
func (s *DiagnosisService) Get(ctx context.Context, id string) (*entity.Analysis, error) {
	return s.analyses.Get(ctx, id)
}

// History возвращает последние анализы
func (s *DiagnosisService) History(ctx context.Context, limit int) ([]*entity.Analysis, error) {
	return s.analyses.List(ctx, limit)
}

// stageError помечает ошибку этапа как сбой инференса, сохраняя исходную причину.
func stageError(stage string, err error) error {
	return fmt.Errorf("%s: %w: %w", stage, entity.ErrInference, err)
}

func imageMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
