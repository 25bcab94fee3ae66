package fds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerStateString(t *testing.T) {
	assert.Equal(t, "released", FingerReleased.String())
	assert.Equal(t, "moving", FingerMoving.String())
	assert.Equal(t, "down", FingerDown.String())
}

func TestFingerReleasedLeavesStringAlone(t *testing.T) {
	s := NewFieldModel(50, 44100)
	f := NewFinger(44100)
	f.U = -0.5

	require.NoError(t, f.CollideWithString(s))
	for _, v := range s.Forces().Interior() {
		assert.Equal(t, 0.0, v)
	}
}

func TestFingerPressesString(t *testing.T) {
	s := NewFieldModel(50, 44100)
	f := NewFinger(44100)
	f.Position = 0.5
	f.Trigger()
	assert.Equal(t, FingerMoving, f.State)

	for n := 0; n < 4410; n++ {
		s.U().PrepareBoundaries(Clamped, Clamped)
		s.AddTensionFreq(200)
		s.AddDamping(5)
		require.NoError(t, f.CollideWithString(s))
		f.Compute()
		s.Compute()
	}
	assert.Equal(t, FingerDown, f.State)

	y := s.U().Interpolate(0.5 * 49)
	assert.Less(t, y, 0.0)
	assert.False(t, math.IsNaN(y))
	assert.Less(t, f.U, 0.0)
}

func TestFingerReleaseLifts(t *testing.T) {
	f := NewFinger(44100)
	f.U, f.Up = -0.001, -0.001
	f.Release()

	for n := 0; n < 100; n++ {
		f.Compute()
	}
	assert.Greater(t, f.U, -0.001)
}

func TestFingerOutsideString(t *testing.T) {
	for _, pos := range []float64{1.5, -0.2, math.NaN()} {
		s := NewFieldModel(50, 44100)
		f := NewFinger(44100)
		f.Position = pos
		f.Trigger()

		assert.NotPanics(t, func() {
			assert.ErrorIs(t, f.CollideWithString(s), ErrInvalidPosition, "position %v", pos)
		})
		assert.Equal(t, FingerMoving, f.State, "position %v", pos)
		assert.Zero(t, f.Force(), "position %v", pos)
		for _, v := range s.Forces().Interior() {
			assert.Zero(t, v)
		}
	}
}
