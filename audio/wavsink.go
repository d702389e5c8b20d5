package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// WAVSink "plays" clips by writing them as WAV files into Dir.
type WAVSink struct {
	Dir string
}

func (w WAVSink) Play(ctx context.Context, name string, clip *Clip) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(w.Dir, FileName(name))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := clip.WriteWAV(f); err != nil {
		f.Close()
		return fmt.Errorf("audio: write %s: %w", path, err)
	}
	return f.Close()
}

// FileName derives a WAV file name from spoken text.
func FileName(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimRight(b.String(), "-")
	if name == "" {
		name = "speech"
	}
	return name + ".wav"
}
