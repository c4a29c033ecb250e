package opengl

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Shader is a linked GL program. Both stages share one uniform namespace, so
// vertex and pixel constant ids are the same uniform locations.
type Shader struct {
	metadata.RefCount
	backend  *Backend
	program  uint32
	uniforms map[string]int
}

// CreateShader compiles and links GLSL sources.
func (b *Backend) CreateShader(fragment, vertex []byte) (metadata.Shader, error) {
	if !b.hasContext() {
		return nil, core.ErrNotReady
	}

	vs, err := b.compileStage(glVertexShader, vertex)
	if err != nil {
		return nil, b.faults.Fail(err)
	}
	defer b.gl.DeleteShader(vs)

	fs, err := b.compileStage(glFragmentShader, fragment)
	if err != nil {
		return nil, b.faults.Fail(err)
	}
	defer b.gl.DeleteShader(fs)

	program := b.gl.CreateProgram()
	if program == 0 {
		return nil, b.faults.Fail(fmt.Errorf("failed to create program: %w", core.ErrDevice))
	}
	b.gl.AttachShader(program, vs)
	b.gl.AttachShader(program, fs)
	for index, name := range attribNames {
		b.gl.BindAttribLocation(program, uint32(index), name)
	}
	b.gl.LinkProgram(program)
	b.gl.DetachShader(program, vs)
	b.gl.DetachShader(program, fs)

	if b.gl.GetProgrami(program, glLinkStatus) == 0 {
		log := b.gl.GetProgramInfoLog(program)
		b.gl.DeleteProgram(program)
		return nil, b.faults.Fail(fmt.Errorf("failed to link program: %s: %w", log, core.ErrCompile))
	}

	s := &Shader{
		backend:  b,
		program:  program,
		uniforms: make(map[string]int),
	}
	s.RefCount = metadata.NewRefCount(b.owner, s.destroy)
	b.track(s.ID(), released(s.destroy))
	core.LogDebug("created shader program %d", program)
	return s, nil
}

func (b *Backend) compileStage(stage uint32, source []byte) (uint32, error) {
	kind := "vertex"
	if stage == glFragmentShader {
		kind = "fragment"
	}
	if len(source) == 0 {
		return 0, fmt.Errorf("empty %s shader source: %w", kind, core.ErrCompile)
	}
	shader := b.gl.CreateShader(stage)
	if shader == 0 {
		return 0, fmt.Errorf("failed to create %s shader: %w", kind, core.ErrDevice)
	}
	b.gl.ShaderSource(shader, string(source))
	b.gl.CompileShader(shader)
	if b.gl.GetShaderi(shader, glCompileStatus) == 0 {
		log := b.gl.GetShaderInfoLog(shader)
		b.gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile %s shader: %s: %w", kind, log, core.ErrCompile)
	}
	return shader, nil
}

func (s *Shader) destroy() {
	if s.program == 0 {
		return
	}
	b := s.backend
	b.untrack(s.ID())
	if b.hasContext() {
		if b.program == s.program {
			b.useProgram(0)
		}
		b.gl.DeleteProgram(s.program)
	}
	s.program = 0
}

func (s *Shader) location(name string) int {
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}
	loc := int(s.backend.gl.GetUniformLocation(s.program, name))
	s.uniforms[name] = loc
	return loc
}

func (s *Shader) VertexConstantID(name string) int { return s.location(name) }
func (s *Shader) PixelConstantID(name string) int  { return s.location(name) }

// DeclareConstant is a no-op: uniform locations come from the program.
func (s *Shader) DeclareConstant(stage metadata.ShaderStage, name string, offset int) {}

func (s *Shader) SetConstantFloats(stage metadata.ShaderStage, index int, values ...float32) {
	if index < 0 || len(values) == 0 {
		return
	}
	s.backend.gl.ProgramUniform1fv(s.program, int32(index), values)
}

func (s *Shader) SetConstantVec3(stage metadata.ShaderStage, index int, values ...mgl32.Vec3) {
	if index < 0 || len(values) == 0 {
		return
	}
	flat := make([]float32, 0, 3*len(values))
	for _, v := range values {
		flat = append(flat, v[:]...)
	}
	s.backend.gl.ProgramUniform3fv(s.program, int32(index), flat)
}

func (s *Shader) SetConstantVec4(stage metadata.ShaderStage, index int, values ...mgl32.Vec4) {
	if index < 0 || len(values) == 0 {
		return
	}
	flat := make([]float32, 0, 4*len(values))
	for _, v := range values {
		flat = append(flat, v[:]...)
	}
	s.backend.gl.ProgramUniform4fv(s.program, int32(index), flat)
}

func (s *Shader) SetConstantMat4(stage metadata.ShaderStage, index int, values ...mgl32.Mat4) {
	if index < 0 || len(values) == 0 {
		return
	}
	flat := make([]float32, 0, 16*len(values))
	for _, m := range values {
		flat = append(flat, m[:]...)
	}
	s.backend.gl.ProgramUniformMatrix4fv(s.program, int32(index), flat)
}
