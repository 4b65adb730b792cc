package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vqa/internal/submission"
)

func TestBuildPreview_Image(t *testing.T) {
	f, err := submission.FileFromPath(writePNG(t, 4, 3))
	require.NoError(t, err)

	p := BuildPreview(f)
	assert.True(t, p.IsImage())
	assert.Equal(t, "png", p.Format)
	assert.Equal(t, 4, p.Width)
	assert.Equal(t, 3, p.Height)
	assert.Equal(t, "img.png", p.Name)

	lines := p.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, "image/png", lines[1])
	assert.Contains(t, lines[3], "4×3 px")
}

func TestBuildPreview_NotAnImage(t *testing.T) {
	p := BuildPreview(submission.FileFromBytes("notes.txt", []byte("hello world")))
	assert.False(t, p.IsImage())
	assert.Len(t, p.Lines(), 3)
	assert.Equal(t, "11 B", p.Lines()[2])

	// Claims to be an image but does not decode.
	broken := BuildPreview(submission.FileFromBytes("x.png", []byte("not png")))
	assert.False(t, broken.IsImage())
}

func TestBuildPreview_Nil(t *testing.T) {
	assert.Equal(t, Preview{}, BuildPreview(nil))
}
