package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Text is a string laid out with a bitmap font. Only glyphs on the font's
// first page are drawn.
type Text struct {
	renderer *Renderer
	font     *loaders.BitmapFont
	page     string
	texture  metadata.Texture
	shader   metadata.Shader
	mesh     metadata.MeshBuffer
	text     string
	color    math.Color
	size     math.Size2

	Transform *math.Transform
}

func (r *Renderer) NewText(font *loaders.BitmapFont, text string, color math.Color) (*Text, error) {
	page, ok := font.Pages[0]
	if !ok {
		return nil, fmt.Errorf("bitmap font %s has no page 0", font.Face)
	}
	texture := r.GetTexture(page)
	if texture == nil {
		return nil, fmt.Errorf("font page %s could not be loaded", page)
	}
	shader := r.GetShader(metadata.ShaderTextureName)
	if shader == nil {
		return nil, fmt.Errorf("built-in shader %s is not registered", metadata.ShaderTextureName)
	}
	texture.Retain()
	shader.Retain()

	t := &Text{
		renderer:  r,
		font:      font,
		page:      page,
		texture:   texture,
		shader:    shader,
		color:     color,
		Transform: math.TransformCreate(),
	}
	t.SetText(text)
	return t, nil
}

func (t *Text) Text() string     { return t.text }
func (t *Text) Size() math.Size2 { return t.size }

// SetText rebuilds the mesh. An empty string leaves nothing to draw.
func (t *Text) SetText(text string) {
	if t.mesh != nil && text == t.text {
		return
	}
	t.text = text
	if t.mesh != nil {
		t.mesh.Release()
		t.mesh = nil
	}

	indices, vertices, size := layoutText(t.font, text, t.color)
	t.size = size
	if len(indices) == 0 {
		return
	}
	t.mesh = t.renderer.CreateMeshBuffer(indices, vertices)
	if t.mesh == nil {
		core.LogWarn("failed to build text mesh for %q", text)
	}
}

// layoutText places glyph quads with the pen starting at the origin and y
// pointing up, so the first line's top edge sits at y = 0.
func layoutText(font *loaders.BitmapFont, text string, color math.Color) ([]uint16, []metadata.Vertex, math.Size2) {
	var (
		indices  []uint16
		vertices []metadata.Vertex
		penX     int
		penY     int
		width    int
		prev     rune
		lines    = 1
	)
	aw, ah := float32(font.AtlasWidth), float32(font.AtlasHeight)

	for _, c := range text {
		if c == '\n' {
			penX = 0
			penY -= font.LineHeight
			lines++
			prev = 0
			continue
		}
		g, ok := font.Glyph(c)
		if !ok {
			prev = 0
			continue
		}
		if prev != 0 {
			penX += font.KerningAmount(prev, c)
		}
		prev = c

		if g.Page == 0 && g.Width > 0 && g.Height > 0 && len(vertices)+4 <= metadata.MaxMeshVertices {
			left := float32(penX + g.XOffset)
			top := float32(penY - g.YOffset)
			rect := math.NewRectangle(left, top-float32(g.Height), float32(g.Width), float32(g.Height))

			u0, u1 := float32(g.X)/aw, float32(g.X+g.Width)/aw
			v0, v1 := float32(g.Y)/ah, float32(g.Y+g.Height)/ah
			uvs := [4]mgl32.Vec2{{u0, v1}, {u1, v1}, {u0, v0}, {u1, v0}}

			base := uint16(len(vertices))
			for i, corner := range rect.Corners() {
				vertices = append(vertices, metadata.NewVertex(mgl32.Vec3{corner.X(), corner.Y(), primitiveDepth}, color, uvs[i]))
			}
			for _, i := range quadIndices {
				indices = append(indices, base+i)
			}
		}
		penX += g.XAdvance
		width = max(width, penX)
	}
	return indices, vertices, math.NewSize2(float32(width), float32(lines*font.LineHeight))
}

func (t *Text) Draw() bool {
	if t.mesh == nil {
		return false
	}
	r := t.renderer
	t.texture = r.refreshTexture(t.page, t.texture)
	if !r.ActivateTexture(t.texture, 0) || !r.ActivateShader(t.shader) {
		return false
	}
	return r.DrawMeshBuffer(t.mesh, t.Transform.GetWorld())
}

func (t *Text) Release() {
	if t.texture == nil {
		return
	}
	if t.mesh != nil {
		t.mesh.Release()
	}
	t.texture.Release()
	t.shader.Release()
	t.mesh, t.texture, t.shader = nil, nil, nil
}
