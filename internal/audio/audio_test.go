package audio

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stereo(n int) [][]float32 {
	return [][]float32{make([]float32, n), make([]float32, n)}
}

func TestQueueFillsAcrossBlocks(t *testing.T) {
	q := NewQueue(4)
	ctx := context.Background()
	require.NoError(t, q.Push(ctx, []float64{1, 2, 3}))
	require.NoError(t, q.Push(ctx, []float64{4, 5}))

	out := stereo(4)
	q.Fill(out)
	assert.Equal(t, []float32{1, 2, 3, 4}, out[0])
	assert.Equal(t, out[0], out[1])
	assert.Zero(t, q.Underruns())

	q.Fill(out)
	assert.Equal(t, []float32{5, 0, 0, 0}, out[0])
	assert.Equal(t, int64(3), q.Underruns())
}

func TestQueueDrain(t *testing.T) {
	q := NewQueue(2)
	require.NoError(t, q.Push(context.Background(), []float64{0.5}))
	q.Close()

	select {
	case <-q.Done():
		t.Fatal("done before drained")
	default:
	}

	out := stereo(3)
	q.Fill(out)
	assert.Equal(t, []float32{0.5, 0, 0}, out[0])
	assert.Zero(t, q.Underruns())

	select {
	case <-q.Done():
	default:
		t.Fatal("not done after drain")
	}

	q.Close()
	q.Fill(out)
	assert.Equal(t, []float32{0, 0, 0}, out[0])
}

func TestQueuePushCancelled(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Push(ctx, []float64{1}))
	cancel()
	assert.ErrorIs(t, q.Push(ctx, []float64{2}), context.Canceled)
}

func TestQueueCopiesBlocks(t *testing.T) {
	q := NewQueue(1)
	block := []float64{1, 2}
	require.NoError(t, q.Push(context.Background(), block))
	block[0] = 9

	out := stereo(2)
	q.Fill(out)
	assert.Equal(t, []float32{1, 2}, out[0])
}

func tone(freq, sampleRate float64, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

func TestMeterBands(t *testing.T) {
	cases := []struct {
		name string
		freq float64
		band int
	}{
		{"low", 100, 0},
		{"mid", 1000, 1},
		{"high", 5000, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMeter(44100)
			block := tone(tc.freq, 44100, 1024)
			for i := 0; i < 50; i++ {
				m.Observe(block)
			}
			low, mid, high, peak := m.Levels()
			levels := []float64{low, mid, high}
			assert.Greater(t, levels[tc.band], 0.9)
			assert.InDelta(t, 1, low+mid+high, 0.02)
			assert.InDelta(t, 0.5, peak, 0.01)
		})
	}
}

func TestMeterSilence(t *testing.T) {
	m := NewMeter(44100)
	m.Observe(make([]float32, 512))
	m.Observe(nil)
	low, mid, high, peak := m.Levels()
	assert.Zero(t, low+mid+high+peak)
}
