package audio

import (
	"context"
	"sync"
	"sync/atomic"
)

// Queue hands rendered blocks from a producer goroutine to the audio
// callback. Push blocks while the queue is full, which paces an offline
// renderer to the device clock.
type Queue struct {
	blocks    chan []float32
	cur       []float32
	pos       int
	closeOnce sync.Once
	doneOnce  sync.Once
	done      chan struct{}
	underruns atomic.Int64
}

// NewQueue returns a queue holding up to depth blocks.
func NewQueue(depth int) *Queue {
	if depth < 1 {
		depth = 1
	}
	return &Queue{
		blocks: make(chan []float32, depth),
		done:   make(chan struct{}),
	}
}

// Push copies block into the queue. It must not be called after Close.
func (q *Queue) Push(ctx context.Context, block []float64) error {
	b := make([]float32, len(block))
	for i, v := range block {
		b[i] = float32(v)
	}
	select {
	case q.blocks <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the end of the stream. Done is closed once the callback has
// consumed every queued sample.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.blocks) })
}

// Done is closed after Close once the queue has drained.
func (q *Queue) Done() <-chan struct{} { return q.done }

// Underruns returns how many output samples were filled with silence
// because the producer fell behind.
func (q *Queue) Underruns() int64 { return q.underruns.Load() }

// Fill writes the next len(out[0]) samples to every channel of out. It
// never blocks.
func (q *Queue) Fill(out [][]float32) {
	if len(out) == 0 {
		return
	}
	for i := range out[0] {
		v, ok := q.next()
		for ch := range out {
			out[ch][i] = v
		}
		if !ok {
			if !q.drained() {
				q.underruns.Add(int64(len(out[0]) - i))
			}
			for j := i + 1; j < len(out[0]); j++ {
				for ch := range out {
					out[ch][j] = 0
				}
			}
			return
		}
	}
}

func (q *Queue) next() (float32, bool) {
	for q.pos >= len(q.cur) {
		select {
		case b, open := <-q.blocks:
			if !open {
				q.doneOnce.Do(func() { close(q.done) })
				return 0, false
			}
			q.cur, q.pos = b, 0
		default:
			return 0, false
		}
	}
	v := q.cur[q.pos]
	q.pos++
	return v, true
}

func (q *Queue) drained() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}
