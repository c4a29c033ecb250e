package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// ImageLoader decodes png, jpeg, bmp, tiff and webp files into tightly packed
// straight-alpha RGBA8 pixels.
type ImageLoader struct {
	// FlipY stores rows bottom to top.
	FlipY bool
}

func (il *ImageLoader) Load(path string) (*metadata.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w: %w", path, core.ErrDecode, err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w: %w", path, core.ErrDecode, err)
	}
	core.LogDebug("decoded %s image %s", format, path)

	return il.convert(src)
}

func (il *ImageLoader) convert(src image.Image) (*metadata.Image, error) {
	b := src.Bounds()
	// blending expects non-premultiplied texels
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)

	if il.FlipY {
		flipRows(nrgba.Pix, nrgba.Stride, b.Dy())
	}
	return metadata.NewImage(uint32(b.Dx()), uint32(b.Dy()), nrgba.Pix)
}

func flipRows(pix []uint8, stride, rows int) {
	tmp := make([]uint8, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, t)
		copy(t, b)
		copy(b, tmp)
	}
}
