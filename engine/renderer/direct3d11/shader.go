package direct3d11

import (
	"encoding/binary"
	"fmt"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/d3d11"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Constant buffer sizes must be a multiple of 16 bytes.
const constantAlignment = 16

// Shader is a vertex + pixel shader pair created from fxc bytecode, with the
// input layout for metadata.Vertex. Constants are staged per stage in a byte
// buffer and uploaded when the shader is drawn with.
type Shader struct {
	metadata.RefCount
	backend      *Backend
	vertexShader d3d11.VertexShader
	pixelShader  d3d11.PixelShader
	layout       d3d11.InputLayout

	constants [2][]byte
	offsets   [2]map[string]int
}

func (b *Backend) CreateShader(fragment, vertex []byte) (metadata.Shader, error) {
	if !b.hasDevice() {
		return nil, core.ErrNotReady
	}
	if len(vertex) == 0 || len(fragment) == 0 {
		return nil, b.faults.Fail(fmt.Errorf("empty shader bytecode: %w", core.ErrCompile))
	}

	vs, err := b.device.CreateVertexShader(vertex)
	if err != nil {
		return nil, b.faults.Fail(fmt.Errorf("failed to create vertex shader: %w: %w", core.ErrCompile, err))
	}
	ps, err := b.device.CreatePixelShader(fragment)
	if err != nil {
		vs.Release()
		return nil, b.faults.Fail(fmt.Errorf("failed to create pixel shader: %w: %w", core.ErrCompile, err))
	}
	layout, err := b.device.CreateInputLayout(inputElements, vertex)
	if err != nil {
		ps.Release()
		vs.Release()
		return nil, b.faults.Fail(fmt.Errorf("failed to create input layout: %w: %w", core.ErrCompile, err))
	}

	s := &Shader{
		backend:      b,
		vertexShader: vs,
		pixelShader:  ps,
		layout:       layout,
	}
	s.offsets[metadata.ShaderStageVertex] = make(map[string]int, len(builtinVertexConstants))
	s.offsets[metadata.ShaderStagePixel] = make(map[string]int)
	for name, offset := range builtinVertexConstants {
		s.offsets[metadata.ShaderStageVertex][name] = offset
	}
	s.RefCount = metadata.NewRefCount(b.owner, s.destroy)
	b.track(s.ID(), released(s.destroy))
	core.LogDebug("created shader (%d byte vertex, %d byte pixel bytecode)", len(vertex), len(fragment))
	return s, nil
}

func (s *Shader) destroy() {
	if s.vertexShader == nil {
		return
	}
	s.backend.untrack(s.ID())
	s.layout.Release()
	s.pixelShader.Release()
	s.vertexShader.Release()
	s.layout, s.pixelShader, s.vertexShader = nil, nil, nil
}

// DeclareConstant names the byte offset of a constant in a stage's cbuffer so
// VertexConstantID/PixelConstantID can resolve it.
func (s *Shader) DeclareConstant(stage metadata.ShaderStage, name string, offset int) {
	if int(stage) >= len(s.offsets) || offset < 0 {
		return
	}
	s.offsets[stage][name] = offset
}

func (s *Shader) constantID(stage metadata.ShaderStage, name string) int {
	if offset, ok := s.offsets[stage][name]; ok {
		return offset
	}
	return -1
}

func (s *Shader) VertexConstantID(name string) int {
	return s.constantID(metadata.ShaderStageVertex, name)
}

func (s *Shader) PixelConstantID(name string) int {
	return s.constantID(metadata.ShaderStagePixel, name)
}

// write stores floats at byte offset index of the stage buffer, growing it in
// 16 byte steps.
func (s *Shader) write(stage metadata.ShaderStage, index int, floats []float32) {
	if index < 0 || len(floats) == 0 || int(stage) >= len(s.constants) {
		return
	}
	end := index + 4*len(floats)
	buf := s.constants[stage]
	if end > len(buf) {
		grown := make([]byte, math.AlignUp(uint32(end), constantAlignment))
		copy(grown, buf)
		buf = grown
		s.constants[stage] = buf
	}
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[index+4*i:], stdmath.Float32bits(f))
	}
}

func (s *Shader) SetConstantFloats(stage metadata.ShaderStage, index int, values ...float32) {
	s.write(stage, index, values)
}

func (s *Shader) SetConstantVec3(stage metadata.ShaderStage, index int, values ...mgl32.Vec3) {
	flat := make([]float32, 0, 3*len(values))
	for _, v := range values {
		flat = append(flat, v[:]...)
	}
	s.write(stage, index, flat)
}

func (s *Shader) SetConstantVec4(stage metadata.ShaderStage, index int, values ...mgl32.Vec4) {
	flat := make([]float32, 0, 4*len(values))
	for _, v := range values {
		flat = append(flat, v[:]...)
	}
	s.write(stage, index, flat)
}

// SetConstantMat4 writes column-major matrices, matching the default HLSL
// packing.
func (s *Shader) SetConstantMat4(stage metadata.ShaderStage, index int, values ...mgl32.Mat4) {
	flat := make([]float32, 0, 16*len(values))
	for _, m := range values {
		flat = append(flat, m[:]...)
	}
	s.write(stage, index, flat)
}
