package opengl

import (
	"errors"
	"fmt"
)

// fakeGL records every call as a short string and hands out increasing ids.
type fakeGL struct {
	calls   []string
	nextID  uint32
	errors  []uint32
	initErr error

	failCompile bool
	failLink    bool
	failBuffers bool

	uniforms  map[string]int32
	matrices  map[int32][]float32
	buffers   map[uint32][]byte
	deleted   map[string]int
	bound     map[uint32]uint32
	sources   []string
	attribLoc map[string]uint32
}

func newFakeGL() *fakeGL {
	return &fakeGL{
		uniforms:  map[string]int32{"modelViewProj": 4},
		matrices:  make(map[int32][]float32),
		buffers:   make(map[uint32][]byte),
		deleted:   make(map[string]int),
		bound:     make(map[uint32]uint32),
		attribLoc: make(map[string]uint32),
	}
}

func (f *fakeGL) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeGL) id() uint32 {
	f.nextID++
	return f.nextID
}

func (f *fakeGL) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeGL) Init() error     { return f.initErr }
func (f *fakeGL) Version() string { return "4.1 fake" }
func (f *fakeGL) GetError() uint32 {
	if len(f.errors) == 0 {
		return glNoError
	}
	e := f.errors[0]
	f.errors = f.errors[1:]
	return e
}

func (f *fakeGL) ClearColor(r, g, b, a float32)      { f.record("ClearColor %.2f %.2f %.2f %.2f", r, g, b, a) }
func (f *fakeGL) Clear(mask uint32)                  { f.record("Clear %#x", mask) }
func (f *fakeGL) Enable(capability uint32)           { f.record("Enable %#x", capability) }
func (f *fakeGL) BlendFunc(sfactor, dfactor uint32)  { f.record("BlendFunc %#x %#x", sfactor, dfactor) }
func (f *fakeGL) Viewport(x, y, width, height int32) { f.record("Viewport %d %d %d %d", x, y, width, height) }
func (f *fakeGL) Flush()                             { f.record("Flush") }

func (f *fakeGL) GenTexture() uint32 {
	id := f.id()
	f.record("GenTexture %d", id)
	return id
}

func (f *fakeGL) DeleteTexture(texture uint32) {
	f.deleted["texture"]++
	f.record("DeleteTexture %d", texture)
}

func (f *fakeGL) ActiveTexture(unit uint32) { f.record("ActiveTexture %d", unit-glTexture0) }

func (f *fakeGL) BindTexture(target, texture uint32) { f.record("BindTexture %d", texture) }

func (f *fakeGL) TexParameteri(target, pname uint32, param int32) {
	f.record("TexParameteri %#x %#x", pname, param)
}

func (f *fakeGL) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	f.record("TexImage2D %dx%d %d bytes", width, height, len(pixels))
}

func (f *fakeGL) CreateShader(xtype uint32) uint32 {
	id := f.id()
	f.record("CreateShader %#x", xtype)
	return id
}

func (f *fakeGL) ShaderSource(shader uint32, source string) {
	f.sources = append(f.sources, source)
}

func (f *fakeGL) CompileShader(shader uint32) { f.record("CompileShader %d", shader) }

func (f *fakeGL) GetShaderi(shader, pname uint32) int32 {
	if f.failCompile {
		return 0
	}
	return 1
}

func (f *fakeGL) GetShaderInfoLog(shader uint32) string { return "0:1: syntax error" }

func (f *fakeGL) DeleteShader(shader uint32) {
	f.deleted["shader"]++
	f.record("DeleteShader %d", shader)
}

func (f *fakeGL) CreateProgram() uint32 {
	id := f.id()
	f.record("CreateProgram %d", id)
	return id
}

func (f *fakeGL) AttachShader(program, shader uint32) { f.record("AttachShader %d %d", program, shader) }
func (f *fakeGL) DetachShader(program, shader uint32) { f.record("DetachShader %d %d", program, shader) }

func (f *fakeGL) BindAttribLocation(program, index uint32, name string) {
	f.attribLoc[name] = index
}

func (f *fakeGL) LinkProgram(program uint32) { f.record("LinkProgram %d", program) }

func (f *fakeGL) GetProgrami(program, pname uint32) int32 {
	if f.failLink {
		return 0
	}
	return 1
}

func (f *fakeGL) GetProgramInfoLog(program uint32) string { return "link error" }

func (f *fakeGL) DeleteProgram(program uint32) {
	f.deleted["program"]++
	f.record("DeleteProgram %d", program)
}

func (f *fakeGL) UseProgram(program uint32) { f.record("UseProgram %d", program) }

func (f *fakeGL) GetUniformLocation(program uint32, name string) int32 {
	f.record("GetUniformLocation %s", name)
	if loc, ok := f.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (f *fakeGL) ProgramUniform1fv(program uint32, location int32, values []float32) {
	f.record("ProgramUniform1fv %d %d", location, len(values))
}

func (f *fakeGL) ProgramUniform3fv(program uint32, location int32, values []float32) {
	f.record("ProgramUniform3fv %d %d", location, len(values))
}

func (f *fakeGL) ProgramUniform4fv(program uint32, location int32, values []float32) {
	f.record("ProgramUniform4fv %d %d", location, len(values))
}

func (f *fakeGL) ProgramUniformMatrix4fv(program uint32, location int32, values []float32) {
	f.record("ProgramUniformMatrix4fv %d %d", location, len(values))
	f.matrices[location] = append([]float32(nil), values...)
}

func (f *fakeGL) GenBuffer() uint32 {
	if f.failBuffers {
		return 0
	}
	id := f.id()
	f.record("GenBuffer %d", id)
	return id
}

func (f *fakeGL) DeleteBuffer(buffer uint32) {
	f.deleted["buffer"]++
	delete(f.buffers, buffer)
	f.record("DeleteBuffer %d", buffer)
}

func (f *fakeGL) BindBuffer(target, buffer uint32) {
	f.bound[target] = buffer
	f.record("BindBuffer %#x %d", target, buffer)
}

func (f *fakeGL) BufferData(target uint32, size int, data []byte, usage uint32) {
	f.record("BufferData %#x %d %v", target, size, data != nil)
	buf := make([]byte, size)
	copy(buf, data)
	f.buffers[f.bound[target]] = buf
}

func (f *fakeGL) BufferSubData(target uint32, offset, size int, data []byte) {
	f.record("BufferSubData %#x %d %d", target, offset, size)
	copy(f.buffers[f.bound[target]][offset:], data[:size])
}

func (f *fakeGL) GenVertexArray() uint32 {
	id := f.id()
	f.record("GenVertexArray %d", id)
	return id
}

func (f *fakeGL) DeleteVertexArray(array uint32) {
	f.deleted["vertex array"]++
	f.record("DeleteVertexArray %d", array)
}

func (f *fakeGL) BindVertexArray(array uint32) { f.record("BindVertexArray %d", array) }

func (f *fakeGL) EnableVertexAttribArray(index uint32) { f.record("EnableVertexAttribArray %d", index) }

func (f *fakeGL) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	f.record("VertexAttribPointer %d %d %#x %v %d %d", index, size, xtype, normalized, stride, offset)
}

func (f *fakeGL) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	f.record("DrawElements %d %d %#x", mode, count, xtype)
}

var errFakeInit = errors.New("no context")

type fakeSurface struct {
	swaps int
}

func (s *fakeSurface) SwapBuffers()                { s.swaps++ }
func (s *fakeSurface) NativeHandle() uintptr       { return 0 }
func (s *fakeSurface) FramebufferSize() (int, int) { return 800, 600 }
