package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/san-kum/fdsynth/internal/sim"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBufferSize = 1024
	DefaultQueueDepth = 8
)

// Player streams a renderer to the default output device.
type Player struct {
	SampleRate float64
	BufferSize int
	Channels   int

	queue  *Queue
	meter  *Meter
	stream *portaudio.Stream
	log    *logrus.Entry

	mu     sync.Mutex
	active bool
}

func NewPlayer(sampleRate float64) *Player {
	return &Player{
		SampleRate: sampleRate,
		BufferSize: DefaultBufferSize,
		Channels:   2,
		meter:      NewMeter(sampleRate),
		log:        logrus.WithField("component", "audio"),
	}
}

// Meter returns the output meter, updated from the audio callback.
func (p *Player) Meter() *Meter { return p.meter }

// Start opens an output-only stream on the default device and begins
// pulling from a fresh queue.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: initialize: %w", err)
	}
	p.queue = NewQueue(DefaultQueueDepth)

	stream, err := portaudio.OpenDefaultStream(0, p.Channels, p.SampleRate, p.BufferSize, p.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio: start stream: %w", err)
	}

	p.stream = stream
	p.active = true
	p.log.WithFields(logrus.Fields{
		"sample_rate": p.SampleRate,
		"buffer":      p.BufferSize,
		"channels":    p.Channels,
	}).Debug("output stream started")
	return nil
}

// Stop closes the stream and releases the device.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return nil
	}
	p.active = false

	var errs []error
	if err := p.stream.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := p.stream.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, err)
	}
	p.stream = nil
	if n := p.queue.Underruns(); n > 0 {
		p.log.WithField("samples", n).Warn("output underruns")
	}
	return errors.Join(errs...)
}

func (p *Player) process(out [][]float32) {
	p.queue.Fill(out)
	if len(out) > 0 {
		p.meter.Observe(out[0])
	}
}

// Play renders cfg through r in real time and returns once the device has
// played the last block or ctx is cancelled.
func (p *Player) Play(ctx context.Context, r *sim.Renderer, cfg sim.Config) (*sim.Result, error) {
	if err := p.Start(); err != nil {
		return nil, err
	}
	defer p.Stop()

	q := p.queue
	result, err := r.Stream(ctx, cfg, p.BufferSize, func(block []float64) error {
		return q.Push(ctx, block)
	})
	q.Close()
	if err != nil {
		return result, err
	}

	select {
	case <-q.Done():
	case <-ctx.Done():
		return result, ctx.Err()
	}
	return result, nil
}
