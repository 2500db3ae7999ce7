package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoundingBoxSize(t *testing.T) {
	b := BoundingBox{XMin: 10, YMin: 20, XMax: 18, YMax: 26}
	require.Equal(t, 8, b.Width())
	require.Equal(t, 6, b.Height())
	require.False(t, b.Empty())
}

func TestBoundingBoxClamp(t *testing.T) {
	b := BoundingBox{XMin: -5, YMin: 2, XMax: 50, YMax: 8}
	require.Equal(t, BoundingBox{XMin: 0, YMin: 2, XMax: 20, YMax: 8}, b.Clamp(20, 10))

	outside := BoundingBox{XMin: 30, YMin: 30, XMax: 40, YMax: 40}.Clamp(20, 10)
	require.True(t, outside.Empty())
}

func TestBoxFromRect(t *testing.T) {
	b := BoxFromRect(image.Rect(1, 2, 3, 4))
	require.Equal(t, image.Rect(1, 2, 3, 4), b.Rect())
}
