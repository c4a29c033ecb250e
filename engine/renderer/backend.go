package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// FileLoader returns the contents of a file or an error wrapping core.ErrIO.
type FileLoader func(path string) ([]byte, error)

// ImageDecoder returns RGBA8 pixels or an error wrapping core.ErrDecode.
type ImageDecoder func(path string) (*metadata.Image, error)

// CameraSource supplies the view transform applied to every draw.
type CameraSource interface {
	CameraTransform() mgl32.Mat4
}

// BuiltinShader is one of the shaders a backend ships with, in the format the
// backend consumes (GLSL source or compiled bytecode).
type BuiltinShader struct {
	Name     string
	Fragment []byte
	Vertex   []byte
}

type BackendConfig struct {
	// Owner is the id of the renderer every created resource belongs to.
	Owner      uuid.UUID
	Size       math.Size2
	ClearColor math.Color
	VSync      bool
	Debug      bool
	// ShaderDir is where backends that need files find their built-in shaders.
	ShaderDir string
	ReadFile  FileLoader
	Faults    core.FaultPolicy
	// RegisterBuiltins receives the backend's built-in shaders once the fixed
	// state exists. The backend only becomes ready if it returns nil.
	RegisterBuiltins func(shaders []BuiltinShader) error
}

// Backend is the capability set a graphics API provides to the renderer.
// Exactly two implementations exist: opengl.Backend and direct3d11.Backend.
type Backend interface {
	Driver() metadata.Driver
	State() metadata.DeviceState

	Initialize(config BackendConfig) error
	Shutdown() error

	SetClearColor(color math.Color)
	SetViewport(width, height uint32)
	Clear()
	Present() error

	CreateTexture(name string, image *metadata.Image) (metadata.Texture, error)
	CreateShader(fragment, vertex []byte) (metadata.Shader, error)
	CreateMeshBuffer(indices []uint16, vertices []metadata.Vertex) (metadata.MeshBuffer, error)

	// BindTexture and BindShader are immediate on OpenGL and no-ops on
	// Direct3D11, which binds everything at draw time.
	BindTexture(texture metadata.Texture, layer int)
	BindShader(shader metadata.Shader)
	Draw(call metadata.DrawCall) error

	// ClipSpaceCorrection maps OpenGL style clip space to the backend's.
	ClipSpaceCorrection() mgl32.Mat4
}

// Surface is the window side a backend presents to. engine/platform
// implements it.
type Surface interface {
	SwapBuffers()
	// NativeHandle is the Win32 HWND on Windows and 0 elsewhere.
	NativeHandle() uintptr
	FramebufferSize() (width, height int)
}
