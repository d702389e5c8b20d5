package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrBusy is returned when an utterance is requested while another plays.
var ErrBusy = errors.New("audio: speaker is busy")

// Synthesizer produces raw PCM16LE mono speech for text.
type Synthesizer interface {
	Speech(ctx context.Context, text string) ([]byte, error)
}

// Sink plays a clip and returns once it has finished or ctx is done.
type Sink interface {
	Play(ctx context.Context, name string, clip *Clip) error
}

// Speaker fetches and plays speech, one utterance at a time.
type Speaker struct {
	synth  Synthesizer
	sink   Sink
	logger *slog.Logger

	mu      sync.Mutex
	playing string
	busy    bool
}

// NewSpeaker creates a speaker. A nil logger discards output.
func NewSpeaker(synth Synthesizer, sink Sink, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Speaker{synth: synth, sink: sink, logger: logger}
}

// Playing reports the text currently being spoken.
func (s *Speaker) Playing() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing, s.busy
}

// Say synthesizes text and plays it. The speaker counts as busy from the
// start of synthesis until playback ends, whatever the outcome.
func (s *Speaker) Say(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy, s.playing = true, text
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy, s.playing = false, ""
		s.mu.Unlock()
	}()

	pcm, err := s.synth.Speech(ctx, text)
	if err != nil {
		return fmt.Errorf("audio: synthesize %q: %w", text, err)
	}
	clip, err := Decode(pcm, SpeechRate)
	if err != nil {
		return err
	}
	s.logger.Debug("playing speech", slog.String("text", text), slog.Duration("duration", clip.Duration()))
	return s.sink.Play(ctx, text, clip)
}
