package opengl

// API is the subset of OpenGL 4.1 core the backend calls. glcore.Context
// implements it over go-gl; tests use a recording fake.
type API interface {
	Init() error
	Version() string
	GetError() uint32

	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Enable(capability uint32)
	BlendFunc(sfactor, dfactor uint32)
	Viewport(x, y, width, height int32)
	Flush()

	GenTexture() uint32
	DeleteTexture(texture uint32)
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexParameteri(target, pname uint32, param int32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels []byte)

	CreateShader(xtype uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderi(shader, pname uint32) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	BindAttribLocation(program, index uint32, name string)
	LinkProgram(program uint32)
	GetProgrami(program, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	GetUniformLocation(program uint32, name string) int32
	ProgramUniform1fv(program uint32, location int32, values []float32)
	ProgramUniform3fv(program uint32, location int32, values []float32)
	ProgramUniform4fv(program uint32, location int32, values []float32)
	ProgramUniformMatrix4fv(program uint32, location int32, values []float32)

	GenBuffer() uint32
	DeleteBuffer(buffer uint32)
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, size int, data []byte, usage uint32)
	BufferSubData(target uint32, offset, size int, data []byte)

	GenVertexArray() uint32
	DeleteVertexArray(array uint32)
	BindVertexArray(array uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)
	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)
}
