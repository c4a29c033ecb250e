package loaders

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(y), G: 0x20, B: 0x30, A: 0xFF})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImageLoaderDecodesRGBA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.png")
	writePNG(t, path, 64, 64)

	img, err := (&ImageLoader{}).Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Width != 64 || img.Height != 64 {
		t.Errorf("size = %dx%d, want 64x64", img.Width, img.Height)
	}
	if len(img.Pixels) != 64*64*4 {
		t.Errorf("len(Pixels) = %d", len(img.Pixels))
	}
	// second row starts with R = 1
	if img.Pixels[img.Stride()] != 1 || img.Pixels[1] != 0x20 || img.Pixels[3] != 0xFF {
		t.Errorf("unexpected texel data %v", img.Pixels[:4])
	}
}

func TestImageLoaderKeepsStraightAlpha(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glyph.png")
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x80})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	decoded, err := (&ImageLoader{}).Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{0xFF, 0xFF, 0xFF, 0x80}
	for i, v := range want {
		if decoded.Pixels[i] != v {
			t.Fatalf("texel = %v, want %v", decoded.Pixels[:4], want)
		}
	}
}

func TestImageLoaderFlipY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.png")
	writePNG(t, path, 2, 4)

	img, err := (&ImageLoader{FlipY: true}).Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Pixels[0] != 3 {
		t.Errorf("first row R = %d, want 3", img.Pixels[0])
	}
}

func TestImageLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := (&ImageLoader{}).Load(filepath.Join(dir, "missing.png")); !errors.Is(err, core.ErrDecode) {
		t.Errorf("missing file error = %v, want ErrDecode", err)
	}
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (&ImageLoader{}).Load(garbage); !errors.Is(err, core.ErrDecode) {
		t.Errorf("garbage error = %v, want ErrDecode", err)
	}
}

func TestBinaryLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "color.vert")
	if err := os.WriteFile(path, []byte("#version 410 core"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := (&BinaryLoader{}).Load(path)
	if err != nil || string(data) != "#version 410 core" {
		t.Errorf("Load() = %q, %v", data, err)
	}
	if _, err := (&BinaryLoader{}).Load(path + ".missing"); !errors.Is(err, core.ErrIO) {
		t.Errorf("missing file error = %v, want ErrIO", err)
	}
}

func TestBitmapFontKerning(t *testing.T) {
	f := &BitmapFont{
		Glyphs:  map[rune]Glyph{'A': {XAdvance: 10}},
		Kerning: map[KerningPair]int{{'A', 'V'}: -2},
	}
	if f.KerningAmount('A', 'V') != -2 || f.KerningAmount('V', 'A') != 0 {
		t.Error("KerningAmount lookup")
	}
	if g, ok := f.Glyph('A'); !ok || g.XAdvance != 10 {
		t.Error("Glyph lookup")
	}
}
