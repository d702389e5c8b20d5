// Package replay drives a tracing surface from a trace script, rendering
// into the gg raster backend.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/tracepad/dsl"
	"github.com/ByLCY/tracepad/layout"
	"github.com/ByLCY/tracepad/pointer"
	"github.com/ByLCY/tracepad/renderer/raster"
	"github.com/ByLCY/tracepad/surface"
)

// SnapshotFunc receives the backing store when a script reaches a snapshot
// statement. name is the path written in the script.
type SnapshotFunc func(name string, canvas *raster.Context) error

// Player replays scripts. A Player is safe to reuse; each Run gets its own
// surface and backing store.
type Player struct {
	logger   *slog.Logger
	build    layout.BuildOptions
	snapshot SnapshotFunc
	observe  bool
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger. Pass nil to discard output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		p.logger = l
	}
}

// WithBuildOptions sets the guide geometry options, including the glyph source.
func WithBuildOptions(b layout.BuildOptions) Option {
	return func(p *Player) { p.build = b }
}

// WithSnapshot sets the snapshot sink.
func WithSnapshot(fn SnapshotFunc) Option {
	return func(p *Player) { p.snapshot = fn }
}

// WithOutputDir writes snapshots as PNG files under dir.
func WithOutputDir(dir string) Option {
	return WithSnapshot(func(name string, canvas *raster.Context) error {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return canvas.SavePNG(path)
	})
}

// WithObserveResize controls whether resize statements repaint the surface.
func WithObserveResize(on bool) Option {
	return func(p *Player) { p.observe = on }
}

// NewPlayer creates a player. Without a snapshot sink, snapshot statements
// are logged and skipped.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		logger:  slog.New(slog.DiscardHandler),
		build:   layout.DefaultOptions(),
		observe: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the state after a script ran to completion.
type Result struct {
	Surface   *surface.Surface
	Canvas    *raster.Context
	Host      *surface.StaticHost
	Snapshots []string
	Events    int
}

// PlayFile parses and runs the script at path.
func (p *Player) PlayFile(ctx context.Context, path string) (*Result, error) {
	script, err := dsl.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("解析脚本 %s 失败: %w", path, err)
	}
	return p.Run(ctx, script)
}

// Run executes every statement of script in order.
func (p *Player) Run(ctx context.Context, script *dsl.Script) (*Result, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}
	decl := script.Statements[0].Surface
	host := &surface.StaticHost{Box: pointer.Rect{Width: decl.Width, Height: decl.Height}, Ratio: 1}
	if decl.Ratio != nil {
		host.Ratio = *decl.Ratio
	}
	if decl.At != nil {
		host.Box.Left, host.Box.Top = decl.At.X, decl.At.Y
	}
	canvas := raster.New(1, 1)
	res := &Result{
		Canvas: canvas,
		Host:   host,
		Surface: surface.New(canvas, host,
			surface.WithBuildOptions(p.build),
			surface.WithLogger(p.logger),
			surface.WithObserveResize(p.observe)),
	}

	for _, st := range script.Statements[1:] {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := p.exec(res, st); err != nil {
			return res, fmt.Errorf("%s: %w", st.Pos, err)
		}
	}
	p.logger.Debug("script finished",
		slog.Int("events", res.Events),
		slog.Int("snapshots", len(res.Snapshots)))
	return res, nil
}

func (p *Player) exec(res *Result, st *dsl.Statement) error {
	s := res.Surface
	switch {
	case st.Letter != nil:
		letter, err := layout.NewLetterGlyph(string(st.Letter.Value))
		if err != nil {
			return err
		}
		return s.Mount(letter)
	case st.Pointer != nil:
		phase, ok := pointer.ParsePhase(st.Pointer.Phase)
		if !ok {
			return fmt.Errorf("未知的指针阶段 %q", st.Pointer.Phase)
		}
		s.Handle(phase, pointerEvent(st.Pointer))
		res.Events++
	case st.Release != nil:
		phase, _ := pointer.ParsePhase(st.Release.Phase)
		s.Handle(phase, nil)
		res.Events++
	case st.Clear != nil:
		s.Clear()
	case st.Scroll != nil:
		res.Host.Box.Left -= st.Scroll.DX
		res.Host.Box.Top -= st.Scroll.DY
	case st.Resize != nil:
		res.Host.Box.Width, res.Host.Box.Height = st.Resize.Width, st.Resize.Height
		if st.Resize.Ratio != nil {
			res.Host.Ratio = *st.Resize.Ratio
		}
		return s.Resize()
	case st.Snapshot != nil:
		name := string(st.Snapshot.Path)
		if p.snapshot == nil {
			p.logger.Info("snapshot skipped, no sink configured", slog.String("name", name))
			return nil
		}
		if err := p.snapshot(name, res.Canvas); err != nil {
			return fmt.Errorf("保存快照 %s 失败: %w", name, err)
		}
		res.Snapshots = append(res.Snapshots, name)
	}
	return nil
}

func pointerEvent(ps *dsl.PointerStmt) pointer.Event {
	if ps.Device == "touch" {
		t := pointer.Touch{}
		for _, pt := range ps.Points {
			t.Touches = append(t.Touches, pointer.TouchPoint{ClientX: pt.X, ClientY: pt.Y})
		}
		return t
	}
	if len(ps.Points) == 0 {
		return pointer.Mouse{}
	}
	return pointer.Mouse{ClientX: ps.Points[0].X, ClientY: ps.Points[0].Y}
}
