package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMask_SetAtCount(t *testing.T) {
	m := NewMask(4, 3)
	require.True(t, m.Empty())

	m.Set(1, 1, true)
	m.Set(3, 2, true)
	m.Set(10, 10, true) // вне маски

	require.True(t, m.At(1, 1))
	require.False(t, m.At(-1, 0))
	require.Equal(t, 2, m.Count())
	require.False(t, m.Empty())
}

func TestMask_UnionIsMonotonicAndIdempotent(t *testing.T) {
	boxes := []BoundingBox{
		{XMin: 0, YMin: 0, XMax: 3, YMax: 3},
		{XMin: 2, YMin: 2, XMax: 6, YMax: 5},
		{XMin: 0, YMin: 0, XMax: 3, YMax: 3}, // дубликат
		{XMin: 7, YMin: 7, XMax: 10, YMax: 10},
	}

	acc := NewMask(10, 10)
	prev := 0
	for _, b := range boxes {
		part := NewMask(10, 10)
		part.Fill(b)
		require.NoError(t, acc.Union(part))
		require.GreaterOrEqual(t, acc.Count(), prev)
		prev = acc.Count()
	}
	require.Equal(t, 9+12-1+9, acc.Count())

	dup := NewMask(10, 10)
	dup.Fill(boxes[0])
	before := acc.Count()
	require.NoError(t, acc.Union(dup))
	require.Equal(t, before, acc.Count())
}

func TestMask_UnionSizeMismatch(t *testing.T) {
	err := NewMask(2, 2).Union(NewMask(3, 2))
	require.ErrorIs(t, err, ErrMaskSizeMismatch)

	_, err = NewMask(2, 2).Intersect(NewMask(2, 3))
	require.ErrorIs(t, err, ErrMaskSizeMismatch)
}

func TestUnionMasks_NoMasksIsEmpty(t *testing.T) {
	m, err := UnionMasks(5, 4)
	require.NoError(t, err)
	require.Equal(t, 5, m.Width)
	require.Equal(t, 4, m.Height)
	require.Zero(t, m.Count())
}

func TestMask_Intersect(t *testing.T) {
	a := NewMask(4, 4)
	a.Fill(BoundingBox{XMin: 0, YMin: 0, XMax: 2, YMax: 4})
	b := NewMask(4, 4)
	b.Fill(BoundingBox{XMin: 1, YMin: 0, XMax: 4, YMax: 1})

	out, err := a.Intersect(b)
	require.NoError(t, err)
	require.Equal(t, 1, out.Count())
	require.True(t, out.At(1, 0))
}

func TestMask_ResizeNearest(t *testing.T) {
	m := NewMask(2, 2)
	m.Set(1, 0, true)

	up := m.ResizeNearest(4, 4)
	require.Equal(t, 4, up.Count())
	require.True(t, up.At(2, 0))
	require.True(t, up.At(3, 1))
	require.False(t, up.At(1, 1))

	down := up.ResizeNearest(2, 2)
	require.Equal(t, m.Pix, down.Pix)
}

func TestProbabilityMap_Binarize(t *testing.T) {
	p := &ProbabilityMap{Width: 2, Height: 2, Values: []float32{0.1, 0.5, 0.51, 0.9}}
	m := p.Binarize(0.5)
	require.Equal(t, []bool{false, false, true, true}, m.Pix)
}
