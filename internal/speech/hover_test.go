package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 2, Y: 3, Width: 4, Height: 2}
	assert.True(t, r.Contains(2, 3))
	assert.True(t, r.Contains(5, 4))
	assert.False(t, r.Contains(6, 4))
	assert.False(t, r.Contains(2, 5))
	assert.False(t, r.Contains(1, 3))
	assert.True(t, Rect{}.Empty())
}

func TestHoverRegion_EnterSpeaksLeaveCancels(t *testing.T) {
	synth := newBlockingSynth()
	sp := NewSpeaker(synth, nil)
	text := "A cat."
	h := NewHoverRegion(sp, func() string { return text })
	h.SetBounds(Rect{X: 0, Y: 10, Width: 40, Height: 5})

	entered, left := h.Move(5, 2)
	assert.False(t, entered)
	assert.False(t, left)

	entered, _ = h.Move(5, 11)
	assert.True(t, entered)
	assert.Equal(t, "A cat.", <-synth.started)

	// Moving inside does not restart speech.
	entered, left = h.Move(6, 12)
	assert.False(t, entered)
	assert.False(t, left)
	spoken, _ := synth.snapshot()
	assert.Len(t, spoken, 1)

	_, left = h.Move(5, 20)
	assert.True(t, left)
	assert.False(t, sp.Speaking())
	_, cancelled := synth.snapshot()
	assert.Equal(t, 1, cancelled)
}

func TestHoverRegion_EmptyTextAndBounds(t *testing.T) {
	synth := newBlockingSynth()
	sp := NewSpeaker(synth, nil)
	h := NewHoverRegion(sp, func() string { return "" })

	entered, _ := h.Move(0, 0)
	assert.False(t, entered, "empty bounds cannot be entered")

	h.SetBounds(Rect{Width: 10, Height: 10})
	entered, _ = h.Move(1, 1)
	assert.True(t, entered)
	assert.False(t, sp.Speaking())
	assert.True(t, h.inside)

	h.Leave()
	assert.False(t, h.inside)
}
