package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ByLCY/tracepad/audio"
	"github.com/ByLCY/tracepad/audio/device"
	"github.com/ByLCY/tracepad/binding"
	"github.com/ByLCY/tracepad/config"
	"github.com/ByLCY/tracepad/fonts"
	"github.com/ByLCY/tracepad/gemini"
	"github.com/ByLCY/tracepad/layout"
	"github.com/ByLCY/tracepad/lesson"
	"github.com/ByLCY/tracepad/pointer"
	"github.com/ByLCY/tracepad/renderer"
	canvasrenderer "github.com/ByLCY/tracepad/renderer/canvas"
	"github.com/ByLCY/tracepad/renderer/raster"
	"github.com/ByLCY/tracepad/replay"
	"github.com/ByLCY/tracepad/surface"
)

const usage = `用法: tracepad [-config tracepad.toml] [-v] <命令> [参数]

命令:
  surface  渲染一个字母的描红绘制面为 PNG
  replay   回放输入脚本，可用 -watch 监听文件变化
  lesson   生成字母练习单 PDF（示例单词、插图与语音）
  config   输出默认配置
`

func main() {
	configPath := flag.String("config", "tracepad.toml", "TOML 配置文件路径")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath, !isFlagSet("config"))
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "surface":
		err = runSurface(cfg, logger, args)
	case "replay":
		err = runReplay(ctx, cfg, logger, args)
	case "lesson":
		err = runLesson(ctx, cfg, filepath.Dir(*configPath), logger, args)
	case "config":
		err = runConfig()
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s 执行失败: %v", cmd, err)
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func glyphSource(cfg config.Config) (*fonts.Face, error) {
	face, err := fonts.LoadFace(cfg.Surface.Font)
	if err != nil {
		return nil, fmt.Errorf("加载字形字体失败: %w", err)
	}
	return face, nil
}

// runSurface 挂载绘制面并把引导层写为 PNG。
func runSurface(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("surface", flag.ExitOnError)
	letter := fs.String("letter", "A", "英文字母")
	width := fs.Float64("width", cfg.Surface.Width, "逻辑宽度")
	height := fs.Float64("height", cfg.Surface.Height, "逻辑高度")
	ratio := fs.Float64("ratio", cfg.Surface.Ratio, "设备像素比")
	output := fs.String("out", "output/${letter}.png", "PNG 输出路径，可包含 ${letter}")
	debug := fs.String("debug", "", "引导布局调试 JSON 输出路径")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lg, err := layout.NewLetterGlyph(*letter)
	if err != nil {
		return err
	}
	*output = outputPath(*output, lg)
	face, err := glyphSource(cfg)
	if err != nil {
		return err
	}

	rc := raster.New(1, 1)
	defer rc.Close()
	host := &surface.StaticHost{Box: pointer.Rect{Width: *width, Height: *height}, Ratio: *ratio}
	s := surface.New(rc, host,
		surface.WithBuildOptions(cfg.BuildOptions(face)),
		surface.WithLogger(logger),
		surface.WithObserveResize(false))
	if err := s.Mount(lg); err != nil {
		return err
	}
	if !s.Ready() {
		return fmt.Errorf("绘制面尺寸 %gx%g 无效", *width, *height)
	}

	if *debug != "" {
		if err := writeDebug(s.Guides(), *debug); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := rc.SavePNG(*output); err != nil {
		return fmt.Errorf("写入 PNG 失败: %w", err)
	}
	w, h := rc.Size()
	fmt.Printf("已生成绘制面：%s（%dx%d）\n", *output, w, h)
	return nil
}

// runReplay 回放脚本，snapshot 语句写入 outdir。
func runReplay(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	input := fs.String("in", "examples/demo.trace", "输入脚本路径")
	outdir := fs.String("outdir", "output", "快照输出目录")
	watch := fs.Bool("watch", false, "脚本变化时重新回放")
	if err := fs.Parse(args); err != nil {
		return err
	}

	face, err := glyphSource(cfg)
	if err != nil {
		return err
	}
	player := replay.NewPlayer(
		replay.WithLogger(logger),
		replay.WithBuildOptions(cfg.BuildOptions(face)),
		replay.WithOutputDir(*outdir))

	report := func(res *replay.Result, err error) {
		if err != nil {
			logger.Error("回放失败", slog.String("script", *input), slog.Any("error", err))
			return
		}
		logger.Info("回放完成",
			slog.String("script", *input),
			slog.Int("events", res.Events),
			slog.Int("snapshots", len(res.Snapshots)))
	}

	if *watch {
		err := player.Watch(ctx, *input, report)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	res, err := player.PlayFile(ctx, *input)
	if err != nil {
		return err
	}
	report(res, nil)
	return nil
}

// runLesson 获取示例单词，按需生成插图与语音，并渲染练习单 PDF。
func runLesson(ctx context.Context, cfg config.Config, baseDir string, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("lesson", flag.ExitOnError)
	letter := fs.String("letter", "A", "英文字母")
	output := fs.String("out", "output/${letter}.pdf", "PDF 输出路径，可包含 ${letter}")
	images := fs.Bool("images", false, "为示例单词生成插图")
	speech := fs.Bool("speech", false, "朗读字母与示例单词")
	play := fs.Bool("play", false, "通过扬声器播放语音（默认写入 WAV 文件）")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lg, err := layout.NewLetterGlyph(*letter)
	if err != nil {
		return err
	}
	*output = outputPath(*output, lg)

	key := cfg.APIKey()
	if key == "" {
		return fmt.Errorf("环境变量 %s 未设置", cfg.Gemini.APIKeyEnv)
	}
	client := gemini.New(key, cfg.GeminiOptions(logger)...)

	var sink audio.Sink
	if *play {
		sink = device.New(audio.SpeechRate)
	} else {
		dir := cfg.Lesson.SpeechDir
		if dir == "" {
			dir = filepath.Join(filepath.Dir(*output), "speech")
		}
		sink = audio.WAVSink{Dir: dir}
	}

	l, err := lesson.New(*letter, client,
		lesson.WithSpeaker(audio.NewSpeaker(client, sink, logger)),
		lesson.WithConcurrency(cfg.Lesson.Concurrency),
		lesson.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := loadWords(ctx, l); err != nil {
		return err
	}
	if *images {
		if err := l.FetchImages(ctx); err != nil {
			return err
		}
	}
	if *speech {
		if err := l.SayLetter(ctx); err != nil {
			return err
		}
		for _, e := range l.Entries() {
			if err := l.Say(ctx, e.Word.Word); err != nil {
				return err
			}
		}
	}

	face, err := glyphSource(cfg)
	if err != nil {
		return err
	}
	var r renderer.Renderer = canvasrenderer.NewRendererWithOptions(cfg.RendererOptions(baseDir))
	ts, ok := r.(layout.Typesetter)
	if !ok {
		return fmt.Errorf("renderer 未实现排版接口")
	}
	sheet, err := l.Sheet(cfg.SheetOptions(ts, face))
	if err != nil {
		return fmt.Errorf("练习单排版失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(sheet)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(*output, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	fmt.Printf("已生成练习单：%s（%d 个单词）\n", *output, len(l.Entries()))
	return nil
}

// loadWords 加载示例单词；失败时的错误已包含给孩子看的重试提示，由调用方统一输出一次。
func loadWords(ctx context.Context, l *lesson.Lesson) error {
	if err := l.Load(ctx); err != nil {
		return fmt.Errorf("加载示例单词失败: %w", err)
	}
	return nil
}

func runConfig() error {
	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// outputPath 展开路径中的 ${letter}（大写字母），无法解析的占位符保持原样。
func outputPath(path string, lg layout.LetterGlyph) string {
	return binding.Interpolate(path, map[string]any{"letter": lg.String()})
}

func writeDebug(v any, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(v, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
