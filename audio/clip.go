// Package audio turns synthesized speech into playable clips and serialises
// playback so that only one utterance sounds at a time.
package audio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// SpeechRate is the sample rate of the speech model output.
const SpeechRate beep.SampleRate = 24000

// Clip is mono audio held in memory as samples in [-1, 1).
type Clip struct {
	rate    beep.SampleRate
	samples []float64
}

// Decode interprets pcm as signed 16-bit little-endian mono samples.
func Decode(pcm []byte, rate beep.SampleRate) (*Clip, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", rate)
	}
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("audio: odd PCM length %d", len(pcm))
	}
	samples := make([]float64, len(pcm)/2)
	for i := range samples {
		v := int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8)
		samples[i] = float64(v) / 32768
	}
	return &Clip{rate: rate, samples: samples}, nil
}

// Format describes the clip for beep encoders.
func (c *Clip) Format() beep.Format {
	return beep.Format{SampleRate: c.rate, NumChannels: 1, Precision: 2}
}

func (c *Clip) Len() int { return len(c.samples) }

func (c *Clip) Duration() time.Duration { return c.rate.D(len(c.samples)) }

// Sample returns the i-th sample.
func (c *Clip) Sample(i int) float64 { return c.samples[i] }

// Streamer returns an independent seekable stream over the clip.
func (c *Clip) Streamer() beep.StreamSeeker {
	return &clipStream{clip: c}
}

// WriteWAV encodes the clip as a 16-bit mono WAV file.
func (c *Clip) WriteWAV(w io.WriteSeeker) error {
	if len(c.samples) == 0 {
		return errors.New("audio: empty clip")
	}
	return wav.Encode(w, c.Streamer(), c.Format())
}

type clipStream struct {
	clip *Clip
	pos  int
}

func (s *clipStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.clip.samples) {
		return 0, false
	}
	for i := range samples {
		if s.pos >= len(s.clip.samples) {
			break
		}
		v := s.clip.samples[s.pos]
		samples[i][0], samples[i][1] = v, v
		s.pos++
		n++
	}
	return n, true
}

func (s *clipStream) Err() error { return nil }

func (s *clipStream) Len() int { return len(s.clip.samples) }

func (s *clipStream) Position() int { return s.pos }

func (s *clipStream) Seek(p int) error {
	if p < 0 || p > len(s.clip.samples) {
		return fmt.Errorf("audio: seek position %d out of range [0, %d]", p, len(s.clip.samples))
	}
	s.pos = p
	return nil
}
