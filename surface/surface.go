// Package surface implements the tracing canvas: it sizes the render target
// for the device pixel ratio, paints the guide layer and turns pointer
// contacts into ink strokes.
package surface

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/ByLCY/tracepad/layout"
	"github.com/ByLCY/tracepad/pointer"
)

// ErrNotReady reports that the surface has no render context, no host or
// has not been mounted yet. Public operations treat it as a no-op.
var ErrNotReady = errors.New("surface: render context not ready")

// State is the ink state machine state.
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// Surface owns a render context and the drawing state for one letter.
// All methods are safe to call before mounting; they do nothing until then.
type Surface struct {
	mu     sync.Mutex
	ctx    Context
	host   Host
	opts   options
	logger *slog.Logger

	mounted bool
	letter  layout.LetterGlyph
	dims    layout.SurfaceDimensions
	guides  *layout.GuideLayout

	state State
	last  layout.Point
}

// New creates a surface drawing into ctx and measuring itself through host.
func New(ctx Context, host Host, opts ...Option) *Surface {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Surface{ctx: ctx, host: host, opts: o, logger: o.logger}
}

// Mount binds the surface to letter, measures the host and paints the guides.
// Calling it again with another letter repaints from scratch and discards ink.
//
// Readiness and degenerate-size conditions are not errors: the surface stays
// mounted and paints once it has a drawable size. Other failures, such as a
// glyph source error, are returned.
func (s *Surface) Mount(letter layout.LetterGlyph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = true
	s.letter = letter
	return s.swallow("mount", s.repaint())
}

// SetLetter is Mount under the name hosts use when re-parameterizing.
func (s *Surface) SetLetter(letter layout.LetterGlyph) error {
	return s.Mount(letter)
}

// Resize re-measures the host and, when the logical size or pixel ratio
// changed, re-runs the resolution adapter and repaints the guides. Ink is
// discarded as on a remount. It does nothing when resize observation is off.
func (s *Surface) Resize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted || !s.opts.observeResize || s.host == nil {
		return nil
	}
	dims := Resolve(s.host.BoundingBox(), s.host.DevicePixelRatio())
	if dims == s.dims && s.guides != nil {
		return nil
	}
	s.logger.Debug("surface resized",
		slog.Float64("width", dims.Width),
		slog.Float64("height", dims.Height),
		slog.Float64("ratio", dims.Ratio))
	return s.swallow("resize", s.repaint())
}

// Down opens a new path at p. Nothing is drawn until the path is extended.
func (s *Surface) Down(p layout.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		s.swallow("down", err)
		return
	}
	s.state = Drawing
	s.last = p
	s.ctx.BeginPath()
	s.ctx.MoveTo(p.X, p.Y)
}

// Move extends the open path to p and strokes the new segment immediately.
// Moves while Idle are ignored.
func (s *Surface) Move(p layout.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Drawing {
		return
	}
	if err := s.ready(); err != nil {
		s.swallow("move", err)
		return
	}
	s.ctx.BeginPath()
	s.ctx.MoveTo(s.last.X, s.last.Y)
	s.ctx.LineTo(p.X, p.Y)
	if err := s.ctx.Stroke(); err != nil {
		s.logger.Warn("stroke segment failed", slog.Any("error", err))
	}
	s.last = p
}

// Up seals the current stroke.
func (s *Surface) Up() { s.end() }

// Leave is treated exactly like Up.
func (s *Surface) Leave() { s.end() }

func (s *Surface) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
}

// Clear discards all ink and repaints the guide layer. It always returns the
// surface to Idle, even mid-stroke.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
	if err := s.ready(); err != nil {
		s.swallow("clear", err)
		return
	}
	if err := paintGuides(s.ctx, s.guides); err != nil {
		s.logger.Warn("repaint guides failed", slog.Any("error", err))
	}
}

// Handle normalizes a raw pointer event against the current bounding box and
// dispatches it. Down and Move events without a contact point are dropped.
func (s *Surface) Handle(phase pointer.Phase, ev pointer.Event) {
	switch phase {
	case pointer.Down, pointer.Move:
		if s.host == nil {
			s.swallow(phase.String(), ErrNotReady)
			return
		}
		p, ok := pointer.Normalize(ev, s.host.BoundingBox())
		if !ok {
			return
		}
		if phase == pointer.Down {
			s.Down(p)
		} else {
			s.Move(p)
		}
	case pointer.Up:
		s.Up()
	case pointer.Leave:
		s.Leave()
	}
}

// State returns the current ink state.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dimensions returns the dimensions resolved at the last mount or resize.
func (s *Surface) Dimensions() layout.SurfaceDimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dims
}

// Guides returns the guide layout currently painted, or nil.
func (s *Surface) Guides() *layout.GuideLayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guides
}

// Letter returns the mounted letter.
func (s *Surface) Letter() layout.LetterGlyph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.letter
}

// Ready reports whether the surface has painted guides and accepts ink.
func (s *Surface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready() == nil
}

func (s *Surface) ready() error {
	if s.ctx == nil || !s.mounted || s.guides == nil {
		return ErrNotReady
	}
	return nil
}

// repaint runs the resolution adapter and the geometry engine for the
// current letter and host measurements.
func (s *Surface) repaint() error {
	s.state = Idle
	if s.ctx == nil || s.host == nil {
		return ErrNotReady
	}
	dims := Resolve(s.host.BoundingBox(), s.host.DevicePixelRatio())
	s.dims = dims
	s.guides = nil
	g, err := layout.Build(s.letter, dims.Width, dims.Height, s.opts.build)
	if err != nil {
		return err
	}
	if err := applyResolution(s.ctx, dims); err != nil {
		return err
	}
	if err := paintGuides(s.ctx, g); err != nil {
		return err
	}
	s.guides = g
	return nil
}

// swallow logs readiness and degenerate-geometry errors at debug level and
// drops them; anything else is returned.
func (s *Surface) swallow(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotReady) || errors.Is(err, layout.ErrDegenerateGeometry) {
		s.logger.Debug("surface operation skipped", slog.String("op", op), slog.Any("reason", err))
		return nil
	}
	return err
}
