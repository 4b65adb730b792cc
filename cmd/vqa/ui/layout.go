// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants for the form
const (
	HeaderHeight = 1
	FooterHeight = 1

	// Content padding from Styles.Content
	ContentPaddingH = 2
	ContentPaddingV = 1

	// Bordered fields take one line above and below, and a border plus
	// one cell of padding on each side.
	FieldBorderHeight = 2
	FieldChromeWidth  = 4

	// Answer pane left border + padding
	AnswerGutter = 2

	// Preview pane width when shown beside the form
	PreviewWidth = 36

	// Responsive breakpoints
	MinContentWidth  = 40
	CompactModeWidth = 100
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// ContentWidth returns the usable width inside the content padding.
// In wide terminals the preview pane is carved off the right.
func (l LayoutConfig) ContentWidth() int {
	w := l.TerminalWidth - ContentPaddingH*2
	if !l.IsCompact {
		w -= PreviewWidth + 1
	}
	if w < MinContentWidth {
		return MinContentWidth
	}
	return w
}

// ContentHeight returns the usable height between header and footer.
func (l LayoutConfig) ContentHeight() int {
	h := l.TerminalHeight - HeaderHeight - FooterHeight - ContentPaddingV*2
	if h < 1 {
		return 1
	}
	return h
}
