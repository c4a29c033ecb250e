package opengl

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const maxErrorsPerCheck = 16

// Backend drives an OpenGL 4.1 core context. The context must be current on
// the calling thread for the whole lifetime of the backend.
type Backend struct {
	gl      API
	surface renderer.Surface

	state      metadata.DeviceState
	owner      uuid.UUID
	faults     core.FaultPolicy
	clearColor math.Color

	program  uint32
	textures [metadata.TextureLayers]uint32

	// GPU objects not yet released, deleted on Shutdown
	live map[uuid.UUID]func() error
}

func New(api API, surface renderer.Surface) *Backend {
	return &Backend{
		gl:      api,
		surface: surface,
		state:   metadata.DeviceStateUninitialized,
		live:    make(map[uuid.UUID]func() error),
	}
}

func (b *Backend) Driver() metadata.Driver     { return metadata.DriverOpenGL }
func (b *Backend) State() metadata.DeviceState { return b.state }

// ClipSpaceCorrection is the identity: the projection already targets GL
// clip space.
func (b *Backend) ClipSpaceCorrection() mgl32.Mat4 {
	return mgl32.Ident4()
}

func (b *Backend) hasContext() bool {
	return b.state == metadata.DeviceStateDeviceCreated || b.state == metadata.DeviceStateReady
}

func (b *Backend) Initialize(config renderer.BackendConfig) error {
	if b.state != metadata.DeviceStateUninitialized {
		return fmt.Errorf("opengl backend already initialized (%s)", b.state)
	}
	b.owner = config.Owner
	b.faults = config.Faults
	if b.faults.Title == "" {
		b.faults.Title = "OpenGL error"
	}

	if err := b.gl.Init(); err != nil {
		return b.faults.Fail(fmt.Errorf("failed to load OpenGL functions: %w: %w", core.ErrDevice, err))
	}
	b.state = metadata.DeviceStateDeviceCreated
	core.LogInfo("OpenGL %s", b.gl.Version())

	b.SetClearColor(config.ClearColor)
	b.gl.Enable(glBlend)
	b.gl.BlendFunc(glSrcAlpha, glOneMinusSrcAlpha)
	if err := b.checkErrors("initialize"); err != nil {
		return b.faults.Fail(err)
	}

	if config.RegisterBuiltins != nil {
		if err := config.RegisterBuiltins(builtinShaders()); err != nil {
			return err
		}
	}

	b.state = metadata.DeviceStateReady
	b.SetViewport(uint32(config.Size.Width), uint32(config.Size.Height))
	return nil
}

// Shutdown deletes whatever the renderer did not release.
func (b *Backend) Shutdown() error {
	if b.state == metadata.DeviceStateDestroyed {
		return nil
	}
	if b.hasContext() {
		b.gl.UseProgram(0)
		b.program = 0
	}
	var leaked error
	if n := len(b.live); n > 0 {
		core.LogWarn("opengl backend shutting down with %d live objects", n)
		for id, teardown := range b.live {
			leaked = errors.Join(leaked, teardown())
			delete(b.live, id)
		}
	}
	b.state = metadata.DeviceStateDestroyed
	return leaked
}

// track registers teardown to run on Shutdown if the object is never
// released.
func (b *Backend) track(id uuid.UUID, teardown func() error) {
	b.live[id] = teardown
}

func released(release func()) func() error {
	return func() error {
		release()
		return nil
	}
}

func (b *Backend) untrack(id uuid.UUID) {
	delete(b.live, id)
}

func (b *Backend) SetClearColor(color math.Color) {
	b.clearColor = color
	if !b.hasContext() {
		return
	}
	f := color.Floats()
	b.gl.ClearColor(f[0], f[1], f[2], f[3])
}

func (b *Backend) SetViewport(width, height uint32) {
	if !b.hasContext() {
		return
	}
	b.gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *Backend) Clear() {
	b.gl.Clear(glColorBufferBit)
}

func (b *Backend) Present() error {
	b.gl.Flush()
	if b.surface != nil {
		b.surface.SwapBuffers()
	}
	return b.checkErrors("present")
}

func (b *Backend) BindTexture(texture metadata.Texture, layer int) {
	if !b.hasContext() || layer < 0 || layer >= metadata.TextureLayers {
		return
	}
	var id uint32
	if t, ok := texture.(*Texture); ok && t != nil {
		id = t.id
	}
	b.gl.ActiveTexture(glTexture0 + uint32(layer))
	b.gl.BindTexture(glTexture2D, id)
	b.textures[layer] = id
}

func (b *Backend) BindShader(shader metadata.Shader) {
	if !b.hasContext() {
		return
	}
	var program uint32
	if s, ok := shader.(*Shader); ok && s != nil {
		program = s.program
	}
	b.useProgram(program)
}

func (b *Backend) useProgram(program uint32) {
	if b.program == program {
		return
	}
	b.gl.UseProgram(program)
	b.program = program
}

func (b *Backend) Draw(call metadata.DrawCall) error {
	if b.state != metadata.DeviceStateReady {
		return core.ErrNotReady
	}
	shader, ok := call.Shader.(*Shader)
	if !ok || shader == nil {
		return fmt.Errorf("shader %T: %w", call.Shader, core.ErrForeignResource)
	}
	mesh, ok := call.Mesh.(*MeshBuffer)
	if !ok || mesh == nil {
		return fmt.Errorf("mesh buffer %T: %w", call.Mesh, core.ErrForeignResource)
	}

	mode := glTriangles
	if call.Topology == metadata.TopologyLineStrip {
		mode = glLineStrip
	}

	b.useProgram(shader.program)
	b.gl.BindVertexArray(mesh.vao)
	b.gl.DrawElements(mode, int32(mesh.indexCount), glUnsignedShort, 0)
	b.gl.BindVertexArray(0)
	return b.checkErrors("draw")
}

// checkErrors drains the GL error queue, logging every entry, and returns the
// first one.
func (b *Backend) checkErrors(op string) error {
	var first error
	for i := 0; i < maxErrorsPerCheck; i++ {
		code := b.gl.GetError()
		if code == glNoError {
			break
		}
		core.LogError("OpenGL error during %s: %s (0x%04x)", op, errorName(code), code)
		if first == nil {
			first = fmt.Errorf("%s: %s: %w", op, errorName(code), core.ErrDevice)
		}
	}
	return first
}
