package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcm16(values ...int16) []byte {
	out := make([]byte, 0, 2*len(values))
	for _, v := range values {
		out = append(out, byte(uint16(v)), byte(uint16(v)>>8))
	}
	return out
}

func TestDecode(t *testing.T) {
	clip, err := Decode(pcm16(0, 16384, -32768, 32767), SpeechRate)
	require.NoError(t, err)
	require.Equal(t, 4, clip.Len())
	assert.Equal(t, 0.0, clip.Sample(0))
	assert.Equal(t, 0.5, clip.Sample(1))
	assert.Equal(t, -1.0, clip.Sample(2))
	assert.InDelta(t, 1.0, clip.Sample(3), 1e-4)
	assert.Equal(t, beep.Format{SampleRate: 24000, NumChannels: 1, Precision: 2}, clip.Format())

	_, err = Decode([]byte{1, 2, 3}, SpeechRate)
	assert.Error(t, err)
	_, err = Decode(pcm16(1), 0)
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	clip, err := Decode(make([]byte, 2*24000), SpeechRate)
	require.NoError(t, err)
	assert.Equal(t, "1s", clip.Duration().String())
}

func TestStreamerSeek(t *testing.T) {
	clip, err := Decode(pcm16(100, 200, 300, 400, 500), SpeechRate)
	require.NoError(t, err)
	st := clip.Streamer()

	buf := make([][2]float64, 3)
	n, ok := st.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, buf[0][0], buf[0][1])
	assert.Equal(t, 3, st.Position())

	n, ok = st.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	_, ok = st.Stream(buf)
	assert.False(t, ok)

	require.NoError(t, st.Seek(1))
	n, _ = st.Stream(buf[:1])
	assert.Equal(t, 1, n)
	assert.Equal(t, clip.Sample(1), buf[0][0])
	assert.Error(t, st.Seek(6))
	assert.Error(t, st.Seek(-1))
	assert.NoError(t, st.Err())
	assert.Equal(t, 5, st.Len())
}

func TestWriteWAV(t *testing.T) {
	clip, err := Decode(pcm16(0, 1000, -1000, 8000), SpeechRate)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, clip.WriteWAV(f))
	require.NoError(t, f.Close())

	r, err := os.Open(path)
	require.NoError(t, err)
	defer r.Close()
	st, format, err := wav.Decode(r)
	require.NoError(t, err)
	assert.Equal(t, beep.SampleRate(24000), format.SampleRate)
	assert.Equal(t, 1, format.NumChannels)
	assert.Equal(t, 4, st.Len())


	// beep's mono decoder halves samples, so compare the PCM payload itself.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, 44+2*4)
	assert.Equal(t, "RIFF", string(raw[0:4]))
	assert.Equal(t, "data", string(raw[36:40]))
	want := []int16{0, 1000, -1000, 8000}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(raw[44+2*i:]))
		assert.InDelta(t, float64(w), float64(got), 1, "sample %d", i)
	}

	empty := &Clip{rate: SpeechRate}
	assert.Error(t, empty.WriteWAV(f))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "letter-b.wav", FileName("Letter B"))
	assert.Equal(t, "ball.wav", FileName("  Ball! "))
	assert.Equal(t, "speech.wav", FileName("كرة"))
}

type blockingSynth struct {
	started chan struct{}
	release chan struct{}
	pcm     []byte
	err     error
}

func (b *blockingSynth) Speech(ctx context.Context, text string) ([]byte, error) {
	if b.started != nil {
		close(b.started)
	}
	if b.release != nil {
		<-b.release
	}
	return b.pcm, b.err
}

type recordSink struct {
	names []string
}

func (r *recordSink) Play(ctx context.Context, name string, clip *Clip) error {
	r.names = append(r.names, name)
	return nil
}

func TestSpeakerBusy(t *testing.T) {
	synth := &blockingSynth{started: make(chan struct{}), release: make(chan struct{}), pcm: pcm16(1, 2)}
	sink := &recordSink{}
	sp := NewSpeaker(synth, sink, nil)

	done := make(chan error, 1)
	go func() { done <- sp.Say(context.Background(), "Ball") }()
	<-synth.started

	text, ok := sp.Playing()
	assert.True(t, ok)
	assert.Equal(t, "Ball", text)
	assert.ErrorIs(t, sp.Say(context.Background(), "Cat"), ErrBusy)

	close(synth.release)
	require.NoError(t, <-done)
	_, ok = sp.Playing()
	assert.False(t, ok)
	assert.Equal(t, []string{"Ball"}, sink.names)
}

func TestSpeakerReleasesOnError(t *testing.T) {
	synth := &blockingSynth{err: errors.New("boom")}
	sp := NewSpeaker(synth, &recordSink{}, nil)
	assert.Error(t, sp.Say(context.Background(), "Letter A"))
	_, ok := sp.Playing()
	assert.False(t, ok)

	synth.err = nil
	synth.pcm = []byte{1}
	assert.Error(t, sp.Say(context.Background(), "Letter A"))

	synth.pcm = pcm16(5)
	assert.NoError(t, sp.Say(context.Background(), "Letter A"))
}

func TestWAVSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "speech")
	clip, err := Decode(pcm16(1, 2, 3), SpeechRate)
	require.NoError(t, err)
	require.NoError(t, WAVSink{Dir: dir}.Play(context.Background(), "Letter C", clip))
	_, err = os.Stat(filepath.Join(dir, "letter-c.wav"))
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, WAVSink{Dir: dir}.Play(ctx, "x", clip), context.Canceled)
}
