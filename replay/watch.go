package replay

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces the burst of events editors emit for a single save.
const debounce = 100 * time.Millisecond

// Watch runs the script at path once, then again every time the file changes,
// until ctx is cancelled. Each run's outcome is passed to done; parse and run
// errors do not stop watching.
func (p *Player) Watch(ctx context.Context, path string, done func(*Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// 监听所在目录：编辑器常以重命名方式保存文件
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("监听 %s 失败: %w", filepath.Dir(abs), err)
	}

	run := func() {
		res, err := p.PlayFile(ctx, abs)
		if err != nil {
			p.logger.Warn("replay failed", slog.String("path", abs), slog.Any("error", err))
		}
		done(res, err)
	}
	run()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				p.logger.Debug("script changed", slog.String("path", abs), slog.String("op", ev.Op.String()))
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watch error", slog.Any("error", err))
		case <-timer.C:
			run()
		}
	}
}
