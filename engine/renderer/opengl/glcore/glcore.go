// Package glcore implements opengl.API on top of the go-gl 4.1 core
// bindings.
package glcore

import (
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/prism/engine/renderer/opengl"
)

var _ opengl.API = (*Context)(nil)

type Context struct{}

func New() *Context {
	return &Context{}
}

// Init loads the function pointers of the context current on this thread.
func (c *Context) Init() error {
	return gl.Init()
}

func (c *Context) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (c *Context) GetError() uint32 { return gl.GetError() }

func (c *Context) ClearColor(r, g, b, a float32)      { gl.ClearColor(r, g, b, a) }
func (c *Context) Clear(mask uint32)                  { gl.Clear(mask) }
func (c *Context) Enable(capability uint32)           { gl.Enable(capability) }
func (c *Context) BlendFunc(sfactor, dfactor uint32)  { gl.BlendFunc(sfactor, dfactor) }
func (c *Context) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (c *Context) Flush()                             { gl.Flush() }

func (c *Context) GenTexture() uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	return texture
}

func (c *Context) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
}

func (c *Context) ActiveTexture(unit uint32)                       { gl.ActiveTexture(unit) }
func (c *Context) BindTexture(target, texture uint32)              { gl.BindTexture(target, texture) }
func (c *Context) TexParameteri(target, pname uint32, param int32) { gl.TexParameteri(target, pname, param) }

func (c *Context) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte) {
	gl.TexImage2D(target, level, internalFormat, width, height, 0, format, xtype, ptr(pixels))
}

func (c *Context) CreateShader(xtype uint32) uint32 { return gl.CreateShader(xtype) }

func (c *Context) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (c *Context) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (c *Context) GetShaderi(shader, pname uint32) int32 {
	var value int32
	gl.GetShaderiv(shader, pname, &value)
	return value
}

func (c *Context) GetShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) DeleteShader(shader uint32)          { gl.DeleteShader(shader) }
func (c *Context) CreateProgram() uint32               { return gl.CreateProgram() }
func (c *Context) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (c *Context) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }
func (c *Context) LinkProgram(program uint32)          { gl.LinkProgram(program) }
func (c *Context) DeleteProgram(program uint32)        { gl.DeleteProgram(program) }
func (c *Context) UseProgram(program uint32)           { gl.UseProgram(program) }

func (c *Context) BindAttribLocation(program, index uint32, name string) {
	gl.BindAttribLocation(program, index, gl.Str(name+"\x00"))
}

func (c *Context) GetProgrami(program, pname uint32) int32 {
	var value int32
	gl.GetProgramiv(program, pname, &value)
	return value
}

func (c *Context) GetProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (c *Context) ProgramUniform1fv(program uint32, location int32, values []float32) {
	if first, n := elements(values, 1); n > 0 {
		gl.ProgramUniform1fv(program, location, n, first)
	}
}

func (c *Context) ProgramUniform3fv(program uint32, location int32, values []float32) {
	if first, n := elements(values, 3); n > 0 {
		gl.ProgramUniform3fv(program, location, n, first)
	}
}

func (c *Context) ProgramUniform4fv(program uint32, location int32, values []float32) {
	if first, n := elements(values, 4); n > 0 {
		gl.ProgramUniform4fv(program, location, n, first)
	}
}

func (c *Context) ProgramUniformMatrix4fv(program uint32, location int32, values []float32) {
	if first, n := elements(values, 16); n > 0 {
		gl.ProgramUniformMatrix4fv(program, location, n, false, first)
	}
}

func (c *Context) GenBuffer() uint32 {
	var buffer uint32
	gl.GenBuffers(1, &buffer)
	return buffer
}

func (c *Context) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

func (c *Context) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (c *Context) BufferData(target uint32, size int, data []byte, usage uint32) {
	gl.BufferData(target, size, ptr(data), usage)
}

func (c *Context) BufferSubData(target uint32, offset, size int, data []byte) {
	gl.BufferSubData(target, offset, size, ptr(data))
}

func (c *Context) GenVertexArray() uint32 {
	var array uint32
	gl.GenVertexArrays(1, &array)
	return array
}

func (c *Context) DeleteVertexArray(array uint32) {
	gl.DeleteVertexArrays(1, &array)
}

func (c *Context) BindVertexArray(array uint32)         { gl.BindVertexArray(array) }
func (c *Context) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (c *Context) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, offset)
}

func (c *Context) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.DrawElementsWithOffset(mode, count, xtype, offset)
}

// elements returns the first value and the number of whole stride-sized
// elements in values.
func elements(values []float32, stride int) (*float32, int32) {
	n := len(values) / stride
	if n == 0 {
		return nil, 0
	}
	return &values[0], int32(n)
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}
