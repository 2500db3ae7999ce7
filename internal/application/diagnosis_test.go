package app

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"maize-vision/internal/domain/entity"
	"maize-vision/internal/infrastructure/storage"
)

type harness struct {
	classifier *fakeClassifier
	coarse     *fakeCoarse
	refined    *fakeRefined
	overlay    *fakeOverlay
	cache      *fakeCache
	analyses   *storage.MemoryAnalysisRepository
	svc        *DiagnosisService
}

// newHarness: лист занимает всё изображение 10×10, U-Net отмечает левый верхний квадрат 2×2 из 5×5 (4×4 в исходном разрешении).
func newHarness(label entity.Label, leaf entity.BoundingBox) *harness {
	probs := make([]float32, 25)
	probs[0], probs[1], probs[5], probs[6] = 0.9, 0.8, 0.7, 0.95

	h := &harness{
		classifier: &fakeClassifier{result: entity.Classification{Label: label, Confidence: 0.9}},
		coarse:     &fakeCoarse{probs: probs},
		refined:    &fakeRefined{},
		overlay:    &fakeOverlay{},
		cache:      &fakeCache{},
		analyses:   storage.NewMemoryAnalysisRepository(10),
	}
	h.svc = NewDiagnosisService(Pipeline{
		Decoder:    fakeDecoder{},
		Classifier: h.classifier,
		Coarse:     h.coarse,
		Boxes:      fakeBoxes{},
		Refined:    h.refined,
		Leaf:       fakeLeaf{leaf: leaf},
		Overlay:    h.overlay,
	}, h.analyses, h.cache, nil)
	return h
}

var fullLeaf = entity.BoundingBox{XMin: 0, YMin: 0, XMax: fakeSize, YMax: fakeSize}

func TestPredict_HealthySkipsSegmentation(t *testing.T) {
	h := newHarness(entity.LabelHealthy, fullLeaf)

	result, err := h.svc.Predict(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.Equal(t, entity.LabelHealthy, result.Prediction)
	require.Zero(t, result.SeverityPercentage)
	require.Nil(t, result.SeverityLabel)
	require.Empty(t, result.OverlayImage)
	require.Zero(t, h.coarse.calls)
	require.Zero(t, h.overlay.calls)
}

func TestPredict_DiseasedComputesSeverityAndOverlay(t *testing.T) {
	h := newHarness(entity.LabelCommonRust, fullLeaf)

	result, err := h.svc.Predict(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.Equal(t, entity.LabelCommonRust, result.Prediction)

	// маска 2×2 из 5×5 ближайшим соседом становится 4×4 из 10×10
	require.Equal(t, []entity.BoundingBox{{XMin: 0, YMin: 0, XMax: 4, YMax: 4}}, h.refined.boxes)
	require.Equal(t, 16.0, result.SeverityPercentage)
	require.NotNil(t, result.SeverityLabel)
	require.Equal(t, entity.SeveritySevere, *result.SeverityLabel)
	require.NotEmpty(t, result.OverlayImage)
	require.Equal(t, 1, h.overlay.calls)
}

func TestPredict_SeverityOnlyCountsLeafPixels(t *testing.T) {
	// лист — нижняя половина, поражение в верхнем левом углу лишь частично на листе
	h := newHarness(entity.LabelBlight, entity.BoundingBox{XMin: 0, YMin: 2, XMax: fakeSize, YMax: fakeSize})

	result, err := h.svc.Predict(context.Background(), []byte("img"))
	require.NoError(t, err)
	// 8 поражённых пикселей на листе из 80
	require.Equal(t, 10.0, result.SeverityPercentage)
	require.Equal(t, entity.SeverityModerate, *result.SeverityLabel)
}

func TestPredict_NoLeafPixelsGivesZeroSeverity(t *testing.T) {
	h := newHarness(entity.LabelGrayLeafSpot, entity.BoundingBox{})

	result, err := h.svc.Predict(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.Zero(t, result.SeverityPercentage)
	require.Equal(t, entity.SeverityMild, *result.SeverityLabel)
}

func TestPredict_EmptyCoarseMaskSkipsRefinement(t *testing.T) {
	h := newHarness(entity.LabelBlight, fullLeaf)
	h.coarse.probs = make([]float32, 25)

	result, err := h.svc.Predict(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.Empty(t, h.refined.boxes)
	require.Zero(t, result.SeverityPercentage)
	require.NotNil(t, result.SeverityLabel)
}

func TestPredict_InvalidImageIsValidationError(t *testing.T) {
	h := newHarness(entity.LabelBlight, fullLeaf)

	_, err := h.svc.Predict(context.Background(), []byte("bad"))
	require.ErrorIs(t, err, entity.ErrInvalidImage)
	require.False(t, errors.Is(err, entity.ErrInference))
}

func TestPredict_ModelFailureIsInferenceError(t *testing.T) {
	h := newHarness(entity.LabelBlight, fullLeaf)
	h.refined.err = errModel

	_, err := h.svc.Predict(context.Background(), []byte("img"))
	require.ErrorIs(t, err, entity.ErrInference)
	require.ErrorIs(t, err, errModel)
	require.False(t, errors.Is(err, entity.ErrInvalidImage))
}

func TestPredict_RejectsUnknownLabel(t *testing.T) {
	h := newHarness(entity.Label("Mosaic"), fullLeaf)

	_, err := h.svc.Predict(context.Background(), []byte("img"))
	require.ErrorIs(t, err, entity.ErrInference)
}

func TestPredict_RejectsNonFiniteConfidence(t *testing.T) {
	h := newHarness(entity.LabelBlight, fullLeaf)
	h.classifier.result.Confidence = math.NaN()

	_, err := h.svc.Diagnose(context.Background(), []byte("img"), entity.SourceHTTP)
	require.ErrorIs(t, err, entity.ErrInference)
	require.Zero(t, h.coarse.calls)
	require.Empty(t, h.cache.store)

	history, err := h.svc.History(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestPredict_NotConfigured(t *testing.T) {
	svc := NewDiagnosisService(Pipeline{}, nil, nil, nil)
	_, err := svc.Predict(context.Background(), []byte("img"))
	require.ErrorIs(t, err, entity.ErrInference)
}

func TestDiagnose_SavesAnalysisAndUsesCache(t *testing.T) {
	h := newHarness(entity.LabelCommonRust, fullLeaf)
	ctx := context.Background()

	first, err := h.svc.Diagnose(ctx, []byte("img"), entity.SourceHTTP)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.Equal(t, entity.SourceHTTP, first.Source)
	require.Len(t, first.ImageMD5, 32)
	require.Equal(t, 1, h.coarse.calls)

	second, err := h.svc.Diagnose(ctx, []byte("img"), entity.SourceTelegram)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, 1, h.coarse.calls, "second call must be served from cache")
	require.Equal(t, first.Result.SeverityPercentage, second.Result.SeverityPercentage)

	history, err := h.svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, second.ID, history[0].ID)

	got, err := h.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
}

func TestDiagnose_CacheFailureDoesNotFailRequest(t *testing.T) {
	h := newHarness(entity.LabelHealthy, fullLeaf)
	h.cache.getErr = errors.New("redis down")

	analysis, err := h.svc.Diagnose(context.Background(), []byte("img"), entity.SourceHTTP)
	require.NoError(t, err)
	require.Equal(t, entity.LabelHealthy, analysis.Result.Prediction)
}

func TestDiagnose_InvalidImageNotStored(t *testing.T) {
	h := newHarness(entity.LabelBlight, fullLeaf)

	_, err := h.svc.Diagnose(context.Background(), []byte("bad"), entity.SourceHTTP)
	require.ErrorIs(t, err, entity.ErrInvalidImage)

	history, err := h.svc.History(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, history)
}
