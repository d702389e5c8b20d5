package surface

import (
	"log/slog"

	"github.com/ByLCY/tracepad/layout"
)

// Option configures a Surface.
type Option func(*options)

type options struct {
	build         layout.BuildOptions
	logger        *slog.Logger
	observeResize bool
}

func defaultOptions() options {
	return options{
		build:         layout.DefaultOptions(),
		logger:        newNopLogger(),
		observeResize: true,
	}
}

// WithGlyphs sets the glyph source used for the ghost letters. Without one
// the guide lines are drawn but the letters are not.
func WithGlyphs(src layout.GlyphSource) Option {
	return func(o *options) { o.build.Glyphs = src }
}

// WithBuildOptions replaces the geometry options. A nil Glyphs field keeps
// the glyph source set by an earlier WithGlyphs.
func WithBuildOptions(b layout.BuildOptions) Option {
	return func(o *options) {
		if b.Glyphs == nil {
			b.Glyphs = o.build.Glyphs
		}
		o.build = b
	}
}

// WithLogger sets the logger. Pass nil to discard output (the default).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = newNopLogger()
		}
		o.logger = l
	}
}

// WithObserveResize controls whether Resize re-runs the resolution adapter.
// It is on by default; turning it off keeps the mount-time size.
func WithObserveResize(on bool) Option {
	return func(o *options) { o.observeResize = on }
}

func newNopLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }
