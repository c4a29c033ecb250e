package loaders

import (
	"fmt"
	"path/filepath"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/prism/engine/core"
)

/** @brief Placement of one character inside the font atlas, in pixels. */
type Glyph struct {
	X, Y          int
	Width, Height int
	XOffset       int
	YOffset       int
	XAdvance      int
	Page          int
}

type KerningPair struct {
	First, Second rune
}

/**
 * @brief An AngelCode bitmap font. Page paths are resolved against the
 * directory of the .fnt file so they can be handed to the renderer as
 * texture names.
 */
type BitmapFont struct {
	Face        string
	Size        int
	LineHeight  int
	Base        int
	AtlasWidth  int
	AtlasHeight int
	Pages       map[int]string
	Glyphs      map[rune]Glyph
	Kerning     map[KerningPair]int
}

func (f *BitmapFont) Glyph(r rune) (Glyph, bool) {
	g, ok := f.Glyphs[r]
	return g, ok
}

func (f *BitmapFont) KerningAmount(first, second rune) int {
	return f.Kerning[KerningPair{First: first, Second: second}]
}

type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Load(path string) (*BitmapFont, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load bitmap font %s: %w: %w", path, core.ErrIO, err)
	}
	d := font.Descriptor

	out := &BitmapFont{
		Face:        d.Info.Face,
		Size:        int(d.Info.Size),
		LineHeight:  int(d.Common.LineHeight),
		Base:        int(d.Common.Base),
		AtlasWidth:  int(d.Common.ScaleW),
		AtlasHeight: int(d.Common.ScaleH),
		Pages:       make(map[int]string, len(d.Pages)),
		Glyphs:      make(map[rune]Glyph, len(d.Chars)),
		Kerning:     make(map[KerningPair]int, len(d.Kerning)),
	}
	if out.AtlasWidth == 0 || out.AtlasHeight == 0 {
		return nil, fmt.Errorf("bitmap font %s has an empty atlas", path)
	}

	dir := filepath.Dir(path)
	for _, p := range d.Pages {
		out.Pages[int(p.ID)] = filepath.Join(dir, p.File)
	}

	for _, g := range d.Chars {
		out.Glyphs[rune(g.ID)] = Glyph{
			X:        int(g.X),
			Y:        int(g.Y),
			Width:    int(g.Width),
			Height:   int(g.Height),
			XOffset:  int(g.XOffset),
			YOffset:  int(g.YOffset),
			XAdvance: int(g.XAdvance),
			Page:     int(g.Page),
		}
	}

	for pair, k := range d.Kerning {
		out.Kerning[KerningPair{First: rune(pair.First), Second: rune(pair.Second)}] = int(k.Amount)
	}

	core.LogDebug("loaded bitmap font %s (%s %d) with %d glyphs", path, out.Face, out.Size, len(out.Glyphs))
	return out, nil
}
