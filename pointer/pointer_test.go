package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMouse(t *testing.T) {
	box := Rect{Left: 50, Top: 30, Width: 400, Height: 200}
	p, ok := Normalize(Mouse{ClientX: 150, ClientY: 100}, box)
	assert.True(t, ok)
	assert.Equal(t, 100.0, p.X)
	assert.Equal(t, 70.0, p.Y)
}

func TestNormalizeTouchUsesFirstContact(t *testing.T) {
	box := Rect{Left: 50, Top: 30, Width: 400, Height: 200}
	p, ok := Normalize(Touch{Touches: []TouchPoint{{ClientX: 150, ClientY: 100}, {ClientX: 0, ClientY: 0}}}, box)
	assert.True(t, ok)
	assert.Equal(t, 100.0, p.X)
	assert.Equal(t, 70.0, p.Y)
}

func TestTouchAndMouseAgree(t *testing.T) {
	box := Rect{Left: 12.5, Top: -8, Width: 320, Height: 160}
	for _, c := range [][2]float64{{0, 0}, {12.5, -8}, {400, 300}, {-20, 5}} {
		m, _ := Normalize(Mouse{ClientX: c[0], ClientY: c[1]}, box)
		tp, _ := Normalize(Touch{Touches: []TouchPoint{{ClientX: c[0], ClientY: c[1]}}}, box)
		assert.Equal(t, m, tp)
	}
}

func TestNormalizeEmptyTouch(t *testing.T) {
	_, ok := Normalize(Touch{}, Rect{})
	assert.False(t, ok)
	_, ok = Normalize(nil, Rect{})
	assert.False(t, ok)
}

func TestNormalizeOutsideSurface(t *testing.T) {
	p, ok := Normalize(Mouse{ClientX: 10, ClientY: 10}, Rect{Left: 50, Top: 30})
	assert.True(t, ok)
	assert.Equal(t, -40.0, p.X)
	assert.Equal(t, -20.0, p.Y)
}

func TestParsePhase(t *testing.T) {
	for _, ph := range []Phase{Down, Move, Up, Leave} {
		got, ok := ParsePhase(ph.String())
		assert.True(t, ok)
		assert.Equal(t, ph, got)
	}
	_, ok := ParsePhase("hover")
	assert.False(t, ok)
}
