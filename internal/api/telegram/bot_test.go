package telegram

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"maize-vision/internal/domain/entity"
)

func TestFormatResult_Healthy(t *testing.T) {
	r := entity.NewHealthyResult(entity.Classification{Label: entity.LabelHealthy, Confidence: 0.9317})

	text := formatResult(r)

	require.Contains(t, text, "Здоровый лист")
	require.Contains(t, text, "93.17%")
	require.NotContains(t, text, "Поражено")
}

func TestFormatResult_Diseased(t *testing.T) {
	r := entity.NewDiseasedResult(entity.Classification{Label: entity.LabelGrayLeafSpot, Confidence: 0.5}, 17.25, "aW1n")

	text := formatResult(r)

	require.Contains(t, text, "Gray Leaf Spot")
	require.Contains(t, text, "50.00%")
	require.Contains(t, text, "17.25%")
	require.Contains(t, text, "тяжёлая")
}

func TestFormatResult_EveryLabelHasName(t *testing.T) {
	for _, l := range entity.Labels() {
		require.Contains(t, labelNames, l)
	}
	for _, s := range []entity.SeverityLabel{entity.SeverityMild, entity.SeverityModerate, entity.SeveritySevere} {
		require.Contains(t, severityNames, s)
	}
}

func TestAcquire_OnePhotoPerUser(t *testing.T) {
	var b Bot

	require.True(t, b.acquire(1))
	require.False(t, b.acquire(1))
	require.True(t, b.acquire(2))

	b.release(1)
	require.True(t, b.acquire(1))
}

func TestAcquire_ConcurrentPhotos(t *testing.T) {
	var (
		b       Bot
		granted atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.acquire(42) {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), granted.Load())
}

func TestReadLimited(t *testing.T) {
	data, err := readLimited(strings.NewReader("leaf"), 4)
	require.NoError(t, err)
	require.Equal(t, "leaf", string(data))

	_, err = readLimited(bytes.NewReader(make([]byte, 5)), 4)
	require.ErrorIs(t, err, errTooLarge)

	data, err = readLimited(strings.NewReader("leaf"), 0)
	require.NoError(t, err)
	require.Len(t, data, 4)
}
