// Package device plays audio clips on the system speaker.
package device

import (
	"context"
	"sync"
	"time"

	"github.com/ByLCY/tracepad/audio"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Sink implements audio.Sink on top of beep's speaker.
type Sink struct {
	rate beep.SampleRate

	once    sync.Once
	initErr error
}

// New returns a sink that opens the speaker at rate on first use.
func New(rate beep.SampleRate) *Sink {
	return &Sink{rate: rate}
}

var _ audio.Sink = (*Sink)(nil)

func (s *Sink) Play(ctx context.Context, _ string, clip *audio.Clip) error {
	s.once.Do(func() {
		s.initErr = speaker.Init(s.rate, s.rate.N(time.Second/10))
	})
	if s.initErr != nil {
		return s.initErr
	}

	var st beep.Streamer = clip.Streamer()
	if src := clip.Format().SampleRate; src != s.rate {
		st = beep.Resample(4, src, s.rate, st)
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(st, beep.Callback(func() { close(done) })))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}
