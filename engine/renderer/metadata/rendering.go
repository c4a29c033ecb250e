package metadata

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/math"
)

/**
 * @brief The only vertex format the renderer knows. Both backends describe
 * their input layout from the offsets below.
 */
type Vertex struct {
	/** @brief Offset 0, three 32-bit floats. */
	Position mgl32.Vec3
	/** @brief Offset 12, four normalized bytes. */
	Color math.Color
	/** @brief Offset 16, two 32-bit floats. */
	TexCoord mgl32.Vec2
}

const (
	VertexSize           = 24
	VertexPositionOffset = 0
	VertexColorOffset    = 12
	VertexTexCoordOffset = 16

	IndexSize = 2
)

func NewVertex(position mgl32.Vec3, color math.Color, texCoord mgl32.Vec2) Vertex {
	return Vertex{Position: position, Color: color, TexCoord: texCoord}
}

// VertexBytes views vertices as the raw byte stream uploaded to the GPU.
func VertexBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*VertexSize)
}

// IndexBytes views 16-bit indices as raw bytes.
func IndexBytes(indices []uint16) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*IndexSize)
}

/** @brief Primitive assembly mode of a draw call. */
type Topology uint8

const (
	TopologyTriangleList Topology = iota
	TopologyLineStrip
)

func (t Topology) String() string {
	if t == TopologyLineStrip {
		return "line_strip"
	}
	return "triangle_list"
}

/**
 * @brief Everything a backend needs to submit one indexed draw. The renderer
 * fills it from its active slots; backends never read renderer state directly.
 */
type DrawCall struct {
	Shader   Shader
	Mesh     MeshBuffer
	Textures [TextureLayers]Texture
	Topology Topology
}
