package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type fakeTexture struct {
	metadata.RefCount
	name      string
	size      math.Size2
	destroyed bool
}

func (t *fakeTexture) Name() string     { return t.name }
func (t *fakeTexture) Size() math.Size2 { return t.size }
func (t *fakeTexture) Handle() uintptr  { return 1 }

type fakeShader struct {
	metadata.RefCount
	destroyed bool
	mats      map[int]mgl32.Mat4
	backend   *fakeBackend
}

func (s *fakeShader) VertexConstantID(name string) int {
	if name == metadata.TransformConstantName {
		return 0
	}
	return -1
}

func (s *fakeShader) PixelConstantID(name string) int { return -1 }

func (s *fakeShader) DeclareConstant(stage metadata.ShaderStage, name string, offset int) {}

func (s *fakeShader) SetConstantFloats(stage metadata.ShaderStage, index int, values ...float32) {
	s.backend.gpuCalls++
}

func (s *fakeShader) SetConstantVec3(stage metadata.ShaderStage, index int, values ...mgl32.Vec3) {
	s.backend.gpuCalls++
}

func (s *fakeShader) SetConstantVec4(stage metadata.ShaderStage, index int, values ...mgl32.Vec4) {
	s.backend.gpuCalls++
}

func (s *fakeShader) SetConstantMat4(stage metadata.ShaderStage, index int, values ...mgl32.Mat4) {
	s.backend.gpuCalls++
	s.mats[index] = values[0]
}

type fakeMesh struct {
	metadata.RefCount
	indices   uint32
	vertices  uint32
	destroyed bool
}

func (m *fakeMesh) IndexCount() uint32  { return m.indices }
func (m *fakeMesh) VertexCount() uint32 { return m.vertices }

type textureBind struct {
	texture metadata.Texture
	layer   int
}

type fakeBackend struct {
	state      metadata.DeviceState
	owner      uuid.UUID
	config     BackendConfig
	correction mgl32.Mat4

	viewports    [][2]uint32
	clears       int
	presents     int
	textureBinds []textureBind
	shaderBinds  []metadata.Shader
	draws        []metadata.DrawCall
	meshes       []*fakeMesh
	shaders      []*fakeShader
	gpuCalls     int
	clearColor   math.Color
	shutdown     bool
	failBuiltins bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{correction: mgl32.Ident4()}
}

func (b *fakeBackend) Driver() metadata.Driver         { return metadata.DriverOpenGL }
func (b *fakeBackend) State() metadata.DeviceState     { return b.state }
func (b *fakeBackend) ClipSpaceCorrection() mgl32.Mat4 { return b.correction }

func (b *fakeBackend) Initialize(config BackendConfig) error {
	b.config = config
	b.owner = config.Owner
	b.state = metadata.DeviceStateDeviceCreated
	if b.failBuiltins {
		return core.ErrCompile
	}
	err := config.RegisterBuiltins([]BuiltinShader{
		{Name: metadata.ShaderTextureName, Fragment: []byte("tf"), Vertex: []byte("tv")},
		{Name: metadata.ShaderColorName, Fragment: []byte("cf"), Vertex: []byte("cv")},
	})
	if err != nil {
		return err
	}
	b.state = metadata.DeviceStateReady
	return nil
}

func (b *fakeBackend) Shutdown() error {
	b.shutdown = true
	b.state = metadata.DeviceStateDestroyed
	return nil
}

func (b *fakeBackend) SetClearColor(color math.Color) { b.clearColor = color }

func (b *fakeBackend) SetViewport(width, height uint32) {
	b.viewports = append(b.viewports, [2]uint32{width, height})
}

func (b *fakeBackend) Clear() { b.clears++ }

func (b *fakeBackend) Present() error {
	b.presents++
	return nil
}

func (b *fakeBackend) CreateTexture(name string, image *metadata.Image) (metadata.Texture, error) {
	t := &fakeTexture{name: name, size: math.NewSize2(float32(image.Width), float32(image.Height))}
	t.RefCount = metadata.NewRefCount(b.owner, func() { t.destroyed = true })
	return t, nil
}

func (b *fakeBackend) CreateShader(fragment, vertex []byte) (metadata.Shader, error) {
	s := &fakeShader{mats: make(map[int]mgl32.Mat4), backend: b}
	s.RefCount = metadata.NewRefCount(b.owner, func() { s.destroyed = true })
	b.shaders = append(b.shaders, s)
	return s, nil
}

func (b *fakeBackend) CreateMeshBuffer(indices []uint16, vertices []metadata.Vertex) (metadata.MeshBuffer, error) {
	m := &fakeMesh{indices: uint32(len(indices)), vertices: uint32(len(vertices))}
	m.RefCount = metadata.NewRefCount(b.owner, func() { m.destroyed = true })
	b.meshes = append(b.meshes, m)
	return m, nil
}

func (b *fakeBackend) BindTexture(texture metadata.Texture, layer int) {
	b.textureBinds = append(b.textureBinds, textureBind{texture, layer})
}

func (b *fakeBackend) BindShader(shader metadata.Shader) {
	b.shaderBinds = append(b.shaderBinds, shader)
}

func (b *fakeBackend) Draw(call metadata.DrawCall) error {
	b.gpuCalls++
	b.draws = append(b.draws, call)
	return nil
}

type fakeCamera struct {
	transform mgl32.Mat4
}

func (c fakeCamera) CameraTransform() mgl32.Mat4 { return c.transform }
