package speech

// Rect is a cell rectangle on screen.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// HoverRegion speaks its text when the pointer enters and cancels when it
// leaves. It is owned by the UI loop and is not safe for concurrent use.
type HoverRegion struct {
	speaker *Speaker
	text    func() string
	bounds  Rect
	inside  bool
}

// NewHoverRegion binds a region to speaker. text is read on every enter.
func NewHoverRegion(speaker *Speaker, text func() string) *HoverRegion {
	return &HoverRegion{speaker: speaker, text: text}
}

// SetBounds moves the region. An empty rect can never be entered.
func (h *HoverRegion) SetBounds(r Rect) {
	h.bounds = r
}

// Bounds returns the current region.
func (h *HoverRegion) Bounds() Rect {
	return h.bounds
}

// Move records a pointer position. Crossing into the region starts speech,
// crossing out cancels it; moving within the region does nothing.
func (h *HoverRegion) Move(x, y int) (entered, left bool) {
	now := !h.bounds.Empty() && h.bounds.Contains(x, y)
	switch {
	case now && !h.inside:
		h.inside = true
		if text := h.text(); text != "" {
			h.speaker.Speak(text)
		}
		return true, false
	case !now && h.inside:
		h.Leave()
		return false, true
	}
	return false, false
}

// Leave forces the pointer out, cancelling speech.
func (h *HoverRegion) Leave() {
	if !h.inside {
		return
	}
	h.inside = false
	h.speaker.Cancel()
}
