package metadata

import "github.com/go-gl/mathgl/mgl32"

/** @brief Programmable stage a constant is written to. */
type ShaderStage uint8

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStagePixel
)

func (s ShaderStage) String() string {
	if s == ShaderStagePixel {
		return "pixel"
	}
	return "vertex"
}

/**
 * @brief A vertex + fragment program pair and the input layout for Vertex.
 *
 * Constants are addressed by an index whose meaning depends on the backend:
 * a uniform location on OpenGL, a byte offset into the stage constant buffer
 * on Direct3D11. Use VertexConstantID/PixelConstantID to obtain one; -1 means
 * the shader has no such constant. Direct3D11 bytecode carries no names, so
 * constants beyond the built-in transform are registered with DeclareConstant;
 * OpenGL resolves names from the linked program and ignores declarations.
 */
type Shader interface {
	Resource
	VertexConstantID(name string) int
	PixelConstantID(name string) int
	DeclareConstant(stage ShaderStage, name string, offset int)
	SetConstantFloats(stage ShaderStage, index int, values ...float32)
	SetConstantVec3(stage ShaderStage, index int, values ...mgl32.Vec3)
	SetConstantVec4(stage ShaderStage, index int, values ...mgl32.Vec4)
	SetConstantMat4(stage ShaderStage, index int, values ...mgl32.Mat4)
}
