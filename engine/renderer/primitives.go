package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Depth of debug primitives, in front of sprites.
const primitiveDepth float32 = -10

var (
	lineIndices      = []uint16{0, 1}
	rectangleIndices = []uint16{0, 1, 3, 2, 0}
	quadIndices      = []uint16{0, 1, 2, 1, 3, 2}
)

// DrawLine draws a one pixel line with the built-in colour shader.
func (r *Renderer) DrawLine(start, finish mgl32.Vec2, color math.Color, transform mgl32.Mat4) bool {
	vertices := []metadata.Vertex{
		metadata.NewVertex(mgl32.Vec3{start.X(), start.Y(), primitiveDepth}, color, mgl32.Vec2{}),
		metadata.NewVertex(mgl32.Vec3{finish.X(), finish.Y(), primitiveDepth}, color, mgl32.Vec2{}),
	}
	return r.drawPrimitive(metadata.ShaderColorName, nil, metadata.TopologyLineStrip, lineIndices, vertices, transform)
}

// DrawRectangle draws the outline of rect with the built-in colour shader.
func (r *Renderer) DrawRectangle(rect math.Rectangle, color math.Color, transform mgl32.Mat4) bool {
	corners := rect.Corners()
	vertices := make([]metadata.Vertex, len(corners))
	for i, c := range corners {
		vertices[i] = metadata.NewVertex(mgl32.Vec3{c.X(), c.Y(), primitiveDepth}, color, mgl32.Vec2{})
	}
	return r.drawPrimitive(metadata.ShaderColorName, nil, metadata.TopologyLineStrip, rectangleIndices, vertices, transform)
}

// DrawQuad fills rect. With a texture the built-in texture shader samples it
// over the whole quad; without one the colour shader is used.
func (r *Renderer) DrawQuad(rect math.Rectangle, color math.Color, texture metadata.Texture, transform mgl32.Mat4) bool {
	corners := rect.Corners()
	uvs := quadTexCoords()
	vertices := make([]metadata.Vertex, len(corners))
	for i, c := range corners {
		vertices[i] = metadata.NewVertex(mgl32.Vec3{c.X(), c.Y(), primitiveDepth}, color, uvs[i])
	}
	shader := metadata.ShaderColorName
	if texture != nil {
		shader = metadata.ShaderTextureName
	}
	return r.drawPrimitive(shader, texture, metadata.TopologyTriangleList, quadIndices, vertices, transform)
}

// quadTexCoords follows the corner order of math.Rectangle.Corners. Image
// rows start at the top, so the bottom edge samples v = 1.
func quadTexCoords() [4]mgl32.Vec2 {
	return [4]mgl32.Vec2{{0, 1}, {1, 1}, {0, 0}, {1, 0}}
}

func (r *Renderer) drawPrimitive(shaderName string, texture metadata.Texture, topology metadata.Topology, indices []uint16, vertices []metadata.Vertex, transform mgl32.Mat4) bool {
	if !r.Ready() {
		return false
	}
	shader := r.shaders[shaderName]
	if shader == nil {
		core.LogWarn("built-in shader %s is not registered", shaderName)
		return false
	}

	mesh := r.CreateMeshBuffer(indices, vertices)
	if mesh == nil {
		return false
	}
	defer mesh.Release()

	if !r.ActivateShader(shader) {
		return false
	}
	if texture != nil && !r.ActivateTexture(texture, 0) {
		return false
	}
	return r.drawMesh(mesh, transform, topology)
}
