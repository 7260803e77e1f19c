package report

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func blackPixel() color.Color {
	return color.RGBA{A: 255}
}

func TestIsWhite(t *testing.T) {
	assert.True(t, isWhite(color.White))
	assert.True(t, isWhite(color.RGBA{R: 253, G: 253, B: 253, A: 255}))
	assert.False(t, isWhite(color.Black))
	assert.False(t, isWhite(color.RGBA{R: 200, G: 200, B: 200, A: 255}))
}
