package form

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/dustin/go-humanize"

	"vqa/internal/submission"
)

// Preview describes the selected file.
type Preview struct {
	Name        string
	ContentType string
	Size        int64

	// Set only when the file decodes as an image.
	Format        string
	Width, Height int
}

// IsImage reports whether pixel dimensions are known.
func (p Preview) IsImage() bool {
	return p.Format != ""
}

// BuildPreview reads just enough of f to report its image dimensions.
// Files that are not decodable images still get name, type and size.
func BuildPreview(f *submission.File) Preview {
	if f == nil {
		return Preview{}
	}
	p := Preview{Name: f.Name, ContentType: f.ContentType, Size: f.Size}

	if !strings.HasPrefix(f.ContentType, "image/") {
		return p
	}
	rc, err := f.Open()
	if err != nil {
		return p
	}
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(rc)
	if err != nil {
		return p
	}
	p.Format = format
	p.Width, p.Height = cfg.Width, cfg.Height
	return p
}

// Lines returns the preview as display lines.
func (p Preview) Lines() []string {
	lines := []string{
		p.Name,
		p.ContentType,
		humanize.Bytes(uint64(p.Size)),
	}
	if p.IsImage() {
		lines = append(lines, fmt.Sprintf("%d×%d px (%s)", p.Width, p.Height, p.Format))
	}
	return lines
}
