// Package lesson holds the state of one letter lesson: the example words,
// their illustrations and spoken prompts.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ByLCY/tracepad/audio"
	"github.com/ByLCY/tracepad/gemini"
	"github.com/ByLCY/tracepad/layout"
	"golang.org/x/sync/errgroup"
)

// ErrWordsUnavailable carries the message shown to the child when the word
// list could not be loaded. Calling Load again retries.
var ErrWordsUnavailable = errors.New("عذراً، حدث خطأ أثناء تحميل الكلمات. حاول مرة أخرى.")

// ErrNoSpeaker is returned by Say when the lesson has no speaker.
var ErrNoSpeaker = errors.New("lesson: no speaker configured")

const defaultConcurrency = 3

// Generator produces example words and illustrations.
type Generator interface {
	Words(ctx context.Context, letter string) ([]gemini.Word, error)
	Image(ctx context.Context, word string) (gemini.Image, error)
}

// Entry is one example word with its illustration, if any.
type Entry struct {
	gemini.Word
	Image    *gemini.Image
	ImageErr error
}

// Lesson is safe for concurrent use.
type Lesson struct {
	letter  layout.LetterGlyph
	gen     Generator
	speaker *audio.Speaker
	limit   int
	logger  *slog.Logger

	mu         sync.Mutex
	generation int
	entries    []Entry
	tracked    map[string]bool
}

// Option configures a Lesson.
type Option func(*Lesson)

func WithSpeaker(s *audio.Speaker) Option { return func(l *Lesson) { l.speaker = s } }

// WithConcurrency bounds the number of simultaneous image requests.
func WithConcurrency(n int) Option {
	return func(l *Lesson) {
		if n > 0 {
			l.limit = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Lesson) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a lesson for an English letter.
func New(letter string, gen Generator, opts ...Option) (*Lesson, error) {
	lg, err := layout.NewLetterGlyph(letter)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, fmt.Errorf("lesson: nil generator")
	}
	l := &Lesson{
		letter:  lg,
		gen:     gen,
		limit:   defaultConcurrency,
		logger:  slog.New(slog.DiscardHandler),
		tracked: map[string]bool{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Lesson) Letter() layout.LetterGlyph { return l.letter }

// LetterPrompt is the text spoken for the letter button, e.g. "Letter B".
func (l *Lesson) LetterPrompt() string { return "Letter " + l.letter.String() }

// Load discards the current words and image tracker and fetches a new word
// list. Image fetches still in flight from an earlier load are ignored, and a
// load superseded by a newer one returns nil whatever its outcome.
func (l *Lesson) Load(ctx context.Context) error {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.entries = nil
	l.tracked = map[string]bool{}
	l.mu.Unlock()

	words, err := l.gen.Words(ctx, l.letter.String())

	l.mu.Lock()
	defer l.mu.Unlock()
	// a newer Load owns the state; its outcome is the one reported
	if gen != l.generation {
		return nil
	}
	if err != nil {
		l.logger.Warn("loading words failed", slog.String("letter", l.letter.String()), slog.Any("error", err))
		return fmt.Errorf("%w (%w)", ErrWordsUnavailable, err)
	}
	l.entries = make([]Entry, len(words))
	for i, w := range words {
		l.entries[i] = Entry{Word: w}
	}
	l.logger.Debug("words loaded", slog.String("letter", l.letter.String()), slog.Int("count", len(words)))
	return nil
}

// Entries returns a copy of the current words.
func (l *Lesson) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// FetchImages requests an illustration for every word that has none and was
// not requested before in this load. Failed words keep their placeholder and
// are not retried until the next Load.
func (l *Lesson) FetchImages(ctx context.Context) error {
	l.mu.Lock()
	gen := l.generation
	var pending []string
	for _, e := range l.entries {
		if e.Image != nil || l.tracked[e.Word.Word] {
			continue
		}
		l.tracked[e.Word.Word] = true
		pending = append(pending, e.Word.Word)
	}
	l.mu.Unlock()

	g := new(errgroup.Group)
	g.SetLimit(l.limit)
	for _, word := range pending {
		g.Go(func() error {
			img, err := l.gen.Image(ctx, word)
			if err != nil {
				l.logger.Warn("image generation failed", slog.String("word", word), slog.Any("error", err))
			}
			l.storeImage(gen, word, img, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (l *Lesson) storeImage(gen int, word string, img gemini.Image, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		return
	}
	for i := range l.entries {
		if l.entries[i].Word.Word != word {
			continue
		}
		if err != nil {
			l.entries[i].ImageErr = err
			continue
		}
		im := img
		l.entries[i].Image = &im
		l.entries[i].ImageErr = nil
	}
}

// Say speaks text through the lesson speaker.
func (l *Lesson) Say(ctx context.Context, text string) error {
	if l.speaker == nil {
		return ErrNoSpeaker
	}
	return l.speaker.Say(ctx, text)
}

// SayLetter speaks LetterPrompt.
func (l *Lesson) SayLetter(ctx context.Context) error {
	return l.Say(ctx, l.LetterPrompt())
}

// Highlight splits word into spans marking the lesson letter.
func (l *Lesson) Highlight(word string) []layout.Span {
	return layout.SplitHighlight(word, string(l.letter.Lower))
}
