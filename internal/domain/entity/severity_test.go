package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifySeverity_Boundaries(t *testing.T) {
	cases := []struct {
		percentage float64
		want       SeverityLabel
	}{
		{0, SeverityMild},
		{4.99, SeverityMild},
		{5.0, SeverityModerate},
		{14.99, SeverityModerate},
		{15.0, SeveritySevere},
		{100, SeveritySevere},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ClassifySeverity(tc.percentage), "percentage=%v", tc.percentage)
	}
}

func TestSeverityPercentage(t *testing.T) {
	require.Equal(t, 0.0, SeverityPercentage(10, 0))
	require.Equal(t, 0.0, SeverityPercentage(0, 100))
	require.Equal(t, 25.0, SeverityPercentage(1, 4))
	require.Equal(t, 33.33, SeverityPercentage(1, 3))
	require.Equal(t, 100.0, SeverityPercentage(4, 4))
}

func TestComputeSeverity_IntersectsWithLeaf(t *testing.T) {
	leaf := NewMask(10, 10)
	leaf.Fill(BoundingBox{XMin: 0, YMin: 0, XMax: 10, YMax: 5}) // 50 пикселей листа

	diseased := NewMask(10, 10)
	diseased.Fill(BoundingBox{XMin: 0, YMin: 3, XMax: 10, YMax: 10}) // 20 из них на листе

	p, err := ComputeSeverity(diseased, leaf)
	require.NoError(t, err)
	require.Equal(t, 40.0, p)
	require.LessOrEqual(t, p, 100.0)
}

func TestComputeSeverity_NoLeafPixels(t *testing.T) {
	leaf := NewMask(8, 8)
	diseased := NewMask(8, 8)
	diseased.Fill(BoundingBox{XMin: 0, YMin: 0, XMax: 8, YMax: 8})

	p, err := ComputeSeverity(diseased, leaf)
	require.NoError(t, err)
	require.Zero(t, p)
}

func TestComputeSeverity_SizeMismatch(t *testing.T) {
	_, err := ComputeSeverity(NewMask(2, 2), NewMask(3, 3))
	require.ErrorIs(t, err, ErrMaskSizeMismatch)
}
