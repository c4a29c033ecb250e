package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Sprites sit behind debug primitives.
const spriteDepth float32 = -20

// Sprite is a textured quad centered on its transform. It holds counted
// references to its texture, shader and mesh until Release.
type Sprite struct {
	renderer    *Renderer
	textureName string
	texture     metadata.Texture
	shader      metadata.Shader
	mesh        metadata.MeshBuffer
	size        math.Size2

	Transform *math.Transform
}

// NewSprite loads (or reuses) the texture called textureName and builds a
// quad of the texture's size.
func (r *Renderer) NewSprite(textureName string) (*Sprite, error) {
	texture := r.GetTexture(textureName)
	if texture == nil {
		return nil, fmt.Errorf("sprite texture %s could not be loaded", textureName)
	}
	shader := r.GetShader(metadata.ShaderTextureName)
	if shader == nil {
		return nil, fmt.Errorf("built-in shader %s is not registered", metadata.ShaderTextureName)
	}

	size := texture.Size()
	mesh := r.CreateMeshBuffer(quadIndices, spriteVertices(size))
	if mesh == nil {
		return nil, fmt.Errorf("failed to create sprite mesh for %s", textureName)
	}

	texture.Retain()
	shader.Retain()
	return &Sprite{
		renderer:    r,
		textureName: textureName,
		texture:     texture,
		shader:      shader,
		mesh:        mesh,
		size:        size,
		Transform:   math.TransformCreate(),
	}, nil
}

func spriteVertices(size math.Size2) []metadata.Vertex {
	rect := math.NewRectangle(-size.Width/2, -size.Height/2, size.Width, size.Height)
	corners := rect.Corners()
	uvs := quadTexCoords()
	vertices := make([]metadata.Vertex, len(corners))
	for i, c := range corners {
		vertices[i] = metadata.NewVertex(mgl32.Vec3{c.X(), c.Y(), spriteDepth}, math.ColorWhite, uvs[i])
	}
	return vertices
}

func (s *Sprite) Size() math.Size2          { return s.size }
func (s *Sprite) Texture() metadata.Texture { return s.texture }
func (s *Sprite) Mesh() metadata.MeshBuffer { return s.mesh }

// refreshTexture picks up a texture replaced by a hot reload. The held
// reference moves from the old texture to the registered one.
func (r *Renderer) refreshTexture(name string, held metadata.Texture) metadata.Texture {
	current := r.textures[name]
	if current == nil || current == held {
		return held
	}
	current.Retain()
	held.Release()
	return current
}

// Visible reports whether any part of the quad falls inside clip space.
func (s *Sprite) Visible() bool {
	mvp := s.renderer.projection.Mul4(s.renderer.cameraTransform()).Mul4(s.Transform.GetWorld())
	minX, minY := float32(1e30), float32(1e30)
	maxX, maxY := float32(-1e30), float32(-1e30)
	for _, v := range spriteVertices(s.size) {
		p := mvp.Mul4x1(v.Position.Vec4(1))
		if p.W() != 0 {
			p = p.Mul(1 / p.W())
		}
		minX, maxX = min(minX, p.X()), max(maxX, p.X())
		minY, maxY = min(minY, p.Y()), max(maxY, p.Y())
	}
	return maxX >= -1 && minX <= 1 && maxY >= -1 && minY <= 1
}

// Draw skips sprites outside the viewport.
func (s *Sprite) Draw() bool {
	if s.mesh == nil {
		return false
	}
	s.texture = s.renderer.refreshTexture(s.textureName, s.texture)
	if !s.Visible() {
		return false
	}
	r := s.renderer
	if !r.ActivateTexture(s.texture, 0) || !r.ActivateShader(s.shader) {
		return false
	}
	return r.DrawMeshBuffer(s.mesh, s.Transform.GetWorld())
}

func (s *Sprite) Release() {
	if s.mesh == nil {
		return
	}
	s.mesh.Release()
	s.texture.Release()
	s.shader.Release()
	s.mesh, s.texture, s.shader = nil, nil, nil
}
