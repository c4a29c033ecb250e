package metadata

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
)

/**
 * @brief Decoded pixel data handed to the renderer by the image decoder.
 * Pixels are tightly packed RGBA8, rows top to bottom.
 */
type Image struct {
	Width  uint32
	Height uint32
	Pixels []uint8
}

// NewImage checks that pixels holds exactly width*height RGBA8 texels.
func NewImage(width, height uint32, pixels []uint8) (*Image, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty image %dx%d: %w", width, height, core.ErrDecode)
	}
	if want := int(width) * int(height) * 4; len(pixels) != want {
		return nil, fmt.Errorf("image %dx%d has %d bytes, want %d: %w", width, height, len(pixels), want, core.ErrDecode)
	}
	return &Image{Width: width, Height: height, Pixels: pixels}, nil
}

// Stride is the byte length of one row.
func (i *Image) Stride() uint32 {
	return i.Width * 4
}
