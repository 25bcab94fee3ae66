package fds

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(values ...float64) *Field {
	f := NewField(len(values))
	copy(f.Interior(), values)
	return f
}

func TestNewFieldLayout(t *testing.T) {
	f := NewField(4)
	assert.Equal(t, 4, f.Len())
	assert.Len(t, f.Data(), 8)
	assert.Len(t, f.Interior(), 4)

	// Lengths below two are raised to two.
	assert.Equal(t, 2, NewField(0).Len())
}

func TestFieldRefRange(t *testing.T) {
	f := NewField(4)
	for l := -2; l <= 5; l++ {
		assert.True(t, f.InRange(l), "index %d", l)
	}
	assert.False(t, f.InRange(-3))
	assert.False(t, f.InRange(6))

	*f.Ref(-2) = 7
	assert.Equal(t, 7.0, f.Data()[0])

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		var ie *IndexError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, 6, ie.Index)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}()
	f.Ref(6)
}

func TestFieldSet(t *testing.T) {
	f := NewField(4)
	require.NoError(t, f.Set(3, 1.5))
	assert.Equal(t, 1.5, f.At(3))

	err := f.Set(-3, 1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestClampedLeftSecondDifference(t *testing.T) {
	f := seeded(0, 1, 2, 3)
	f.PrepareClampedBoundaryLeft()

	assert.Equal(t, 0.0, f.At(-2))
	assert.Equal(t, 0.0, f.At(-1))
	assert.Equal(t, 16.0, f.Dxx(0))
	assert.Equal(t, 0.0, f.Dxx(1))
}

func TestClampedHalosMirrorInterior(t *testing.T) {
	f := seeded(0.5, 1, 2, -0.25)
	f.PrepareBoundaries(Clamped, Clamped)

	assert.Equal(t, 0.5, f.At(-2))
	assert.Equal(t, 0.0, f.At(-1))
	assert.Equal(t, 0.0, f.At(4))
	assert.Equal(t, -0.25, f.At(5))
}

func TestFreeBoundaryKeepsFlatFieldFlat(t *testing.T) {
	f := seeded(2, 2, 2, 2, 2)
	f.PrepareBoundaries(Free, Free)

	for l := -2; l <= 6; l++ {
		assert.Equal(t, 2.0, f.At(l), "index %d", l)
	}
	for l := 0; l < f.Len(); l++ {
		assert.Equal(t, 0.0, f.Dxx(l))
		assert.Equal(t, 0.0, f.Dxxxx(l))
	}
}

func TestFreeBoundaryLinearExtrapolation(t *testing.T) {
	f := seeded(0, 1, 2, 3)
	f.PrepareBoundaries(Free, Free)

	assert.Equal(t, -2.0, f.At(-2))
	assert.Equal(t, -1.0, f.At(-1))
	assert.Equal(t, 4.0, f.At(4))
	assert.Equal(t, 5.0, f.At(5))
	assert.Equal(t, 0.0, f.Dxx(0))
	assert.Equal(t, 0.0, f.Dxx(3))
}

func TestInterpolate(t *testing.T) {
	f := seeded(1, 3, -2, 4)

	for l := 0; l < f.Len(); l++ {
		assert.Equal(t, f.At(l), f.Interpolate(float64(l)))
	}
	assert.InDelta(t, 2.0, f.Interpolate(0.5), 1e-12)
	assert.InDelta(t, 0.5, f.Interpolate(1.5), 1e-12)
	assert.InDelta(t, -0.5, f.Interpolate(2.25), 1e-12)
}

func TestDxxiMatchesDxxOnGrid(t *testing.T) {
	f := seeded(1, 3, -2, 4, 0)
	f.PrepareBoundaries(Clamped, Clamped)

	for l := 0; l < f.Len(); l++ {
		assert.InDelta(t, f.Dxx(l), f.Dxxi(float64(l)), 1e-9)
	}
}

func TestDxfScale(t *testing.T) {
	f := seeded(0, 1, 3, 6)
	assert.Equal(t, 4.0, f.Dxf(0))
	assert.Equal(t, 8.0, f.Dxf(1))
}

// The second difference of sin(2*pi*x) converges to -(2*pi)^2*sin at second
// order in the grid spacing.
func TestDxxConvergesOnSine(t *testing.T) {
	maxErr := func(n int) float64 {
		f := NewField(n)
		data := f.Data()
		for j := range data {
			x := float64(j-2) / float64(n)
			data[j] = math.Sin(2 * math.Pi * x)
		}
		var worst float64
		for l := 0; l < n; l++ {
			x := float64(l) / float64(n)
			exact := -4 * math.Pi * math.Pi * math.Sin(2*math.Pi*x)
			worst = math.Max(worst, math.Abs(f.Dxx(l)-exact))
		}
		return worst
	}

	e1 := maxErr(32)
	e2 := maxErr(64)
	assert.Less(t, e1, 0.5)
	assert.Greater(t, e1/e2, 3.5)
}

func TestFieldClearAndCopy(t *testing.T) {
	a := seeded(1, 2, 3)
	b := NewField(3)
	b.CopyFrom(a)
	assert.Equal(t, a.Data(), b.Data())

	a.Clear(0.5)
	for _, v := range a.Data() {
		assert.Equal(t, 0.5, v)
	}
	assert.Equal(t, 2.0, b.At(1))
}

func TestBoundaryString(t *testing.T) {
	assert.Equal(t, "clamped", Clamped.String())
	assert.Equal(t, "free", Free.String())
	assert.Equal(t, "unknown", Boundary(7).String())
}
