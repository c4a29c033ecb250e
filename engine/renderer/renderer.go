package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const (
	projectionNear float32 = -1000
	projectionFar  float32 = 1000
)

type RendererConfig struct {
	Title      string
	Size       math.Size2
	Fullscreen bool
	ClearColor math.Color
	VSync      bool
	Debug      bool
	ShaderDir  string

	ReadFile    FileLoader
	DecodeImage ImageDecoder
	Faults      core.FaultPolicy
}

// Renderer owns the texture and shader registries, the active slots and the
// projection, and drives one Backend through the frame cycle.
type Renderer struct {
	id      uuid.UUID
	driver  metadata.Driver
	backend Backend
	config  RendererConfig

	camera CameraSource

	textures map[string]metadata.Texture
	shaders  map[string]metadata.Shader

	activeTextures [metadata.TextureLayers]metadata.Texture
	activeShader   metadata.Shader

	clearColor math.Color
	size       math.Size2
	projection mgl32.Mat4
	title      string
	fullscreen bool

	begun          bool
	beginListeners []func()
}

func New(backend Backend, config RendererConfig) *Renderer {
	r := &Renderer{
		id:         uuid.New(),
		driver:     metadata.DriverNone,
		backend:    backend,
		config:     config,
		textures:   make(map[string]metadata.Texture),
		shaders:    make(map[string]metadata.Shader),
		clearColor: config.ClearColor,
		size:       config.Size,
		projection: mgl32.Ident4(),
		title:      config.Title,
		fullscreen: config.Fullscreen,
	}
	if backend != nil {
		r.driver = backend.Driver()
	}
	r.RecalculateProjection()
	return r
}

func (r *Renderer) ID() uuid.UUID            { return r.id }
func (r *Renderer) Driver() metadata.Driver  { return r.driver }
func (r *Renderer) Size() math.Size2         { return r.size }
func (r *Renderer) Projection() mgl32.Mat4   { return r.projection }
func (r *Renderer) ClearColor() math.Color   { return r.clearColor }
func (r *Renderer) Title() string            { return r.title }
func (r *Renderer) Fullscreen() bool         { return r.fullscreen }
func (r *Renderer) SetTitle(title string)    { r.title = title }
func (r *Renderer) SetFullscreen(value bool) { r.fullscreen = value }

// Ready reports whether draws reach the device.
func (r *Renderer) Ready() bool {
	return r.backend != nil && r.backend.State() == metadata.DeviceStateReady
}

// Initialize creates the device, the fixed pipeline state and the built-in
// shaders.
func (r *Renderer) Initialize() error {
	if r.backend == nil || r.driver == metadata.DriverNone {
		return core.ErrNoDriver
	}
	err := r.backend.Initialize(BackendConfig{
		Owner:            r.id,
		Size:             r.size,
		ClearColor:       r.clearColor,
		VSync:            r.config.VSync,
		Debug:            r.config.Debug,
		ShaderDir:        r.config.ShaderDir,
		ReadFile:         r.config.ReadFile,
		Faults:           r.config.Faults,
		RegisterBuiltins: r.registerBuiltins,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize %s renderer: %w", r.driver, err)
	}
	r.RecalculateProjection()
	core.LogInfo("%s renderer %s initialized (%.0fx%.0f)", r.driver, r.id, r.size.Width, r.size.Height)
	return nil
}

func (r *Renderer) registerBuiltins(shaders []BuiltinShader) error {
	for _, s := range shaders {
		shader, err := r.backend.CreateShader(s.Fragment, s.Vertex)
		if err != nil {
			return fmt.Errorf("built-in shader %s: %w", s.Name, err)
		}
		r.SetShader(s.Name, shader)
		shader.Release()
	}
	return nil
}

// OnBegin registers a callback fired by Begin.
func (r *Renderer) OnBegin(listener func()) {
	r.beginListeners = append(r.beginListeners, listener)
}

// Begin signals that the backend finished its one-time setup. Only the first
// call has an effect.
func (r *Renderer) Begin() {
	if r.begun {
		return
	}
	r.begun = true
	for _, l := range r.beginListeners {
		l()
	}
}

// Shutdown drops the active slots and the registries, then tears the device
// down.
func (r *Renderer) Shutdown() error {
	for i := range r.activeTextures {
		r.ActivateTexture(nil, i)
	}
	r.ActivateShader(nil)
	for name := range r.textures {
		r.removeTexture(name)
	}
	for name := range r.shaders {
		r.SetShader(name, nil)
	}
	if r.backend == nil {
		return nil
	}
	return r.backend.Shutdown()
}

func (r *Renderer) SetCamera(camera CameraSource) {
	r.camera = camera
}

func (r *Renderer) cameraTransform() mgl32.Mat4 {
	if r.camera == nil {
		return mgl32.Ident4()
	}
	return r.camera.CameraTransform()
}

// Resize stores the new framebuffer size and recalculates the projection.
func (r *Renderer) Resize(size math.Size2) {
	r.size = size
	r.RecalculateProjection()
}

// RecalculateProjection rebuilds the orthographic projection centered on the
// origin. The viewport is only written once the device is ready.
func (r *Renderer) RecalculateProjection() {
	if r.size.IsZero() {
		return
	}
	w, h := r.size.Width/2, r.size.Height/2
	correction := mgl32.Ident4()
	if r.backend != nil {
		correction = r.backend.ClipSpaceCorrection()
	}
	r.projection = correction.Mul4(mgl32.Ortho(-w, w, -h, h, projectionNear, projectionFar))

	if r.Ready() {
		r.backend.SetViewport(uint32(r.size.Width), uint32(r.size.Height))
	}
}

func (r *Renderer) SetClearColor(color math.Color) {
	r.clearColor = color
	if r.backend != nil {
		r.backend.SetClearColor(color)
	}
}

func (r *Renderer) Clear() {
	if !r.Ready() {
		return
	}
	r.backend.Clear()
}

// Flush presents the frame.
func (r *Renderer) Flush() error {
	if !r.Ready() {
		return nil
	}
	return r.backend.Present()
}

func (r *Renderer) owns(res metadata.Resource) bool {
	if res.Owner() == r.id {
		return true
	}
	core.LogError("resource %s: %s", res.ID(), core.ErrForeignResource)
	return false
}

// GetTexture returns the registered texture, loading it from the file name
// on a miss. It returns nil when loading fails.
func (r *Renderer) GetTexture(name string) metadata.Texture {
	if t, ok := r.textures[name]; ok {
		return t
	}
	t, err := r.loadTexture(name)
	if err != nil {
		r.logLoadError("texture", name, err)
		return nil
	}
	r.textures[name] = t
	return t
}

// PreloadTexture warms the texture cache.
func (r *Renderer) PreloadTexture(name string) bool {
	return r.GetTexture(name) != nil
}

// HasTexture reports whether name is registered.
func (r *Renderer) HasTexture(name string) bool {
	_, ok := r.textures[name]
	return ok
}

// ReloadTexture decodes name again and replaces the registered texture.
func (r *Renderer) ReloadTexture(name string) error {
	if !r.HasTexture(name) {
		return nil
	}
	if r.config.DecodeImage == nil {
		return fmt.Errorf("no image decoder: %w", core.ErrDecode)
	}
	img, err := r.config.DecodeImage(name)
	if err != nil {
		r.logLoadError("texture", name, err)
		return err
	}
	return r.ReplaceTexture(name, img)
}

// ReplaceTexture uploads an already decoded image under a registered name.
// Active slots that held the old texture switch to the new one.
func (r *Renderer) ReplaceTexture(name string, image *metadata.Image) error {
	old, ok := r.textures[name]
	if !ok {
		return nil
	}
	if r.backend == nil {
		return core.ErrNoDriver
	}
	t, err := r.backend.CreateTexture(name, image)
	if err != nil {
		r.logLoadError("texture", name, err)
		return err
	}
	r.textures[name] = t
	for layer, active := range r.activeTextures {
		if active == old {
			r.ActivateTexture(t, layer)
		}
	}
	old.Release()
	core.LogDebug("reloaded texture %s", name)
	return nil
}

func (r *Renderer) loadTexture(name string) (metadata.Texture, error) {
	if r.backend == nil {
		return nil, core.ErrNoDriver
	}
	if r.config.DecodeImage == nil {
		return nil, fmt.Errorf("no image decoder: %w", core.ErrDecode)
	}
	img, err := r.config.DecodeImage(name)
	if err != nil {
		return nil, err
	}
	return r.backend.CreateTexture(name, img)
}

func (r *Renderer) removeTexture(name string) {
	if t, ok := r.textures[name]; ok {
		delete(r.textures, name)
		t.Release()
	}
}

func (r *Renderer) GetShader(name string) metadata.Shader {
	return r.shaders[name]
}

// SetShader registers shader under name, taking its own reference. A nil
// shader removes the entry. The previous occupant loses the registry's
// reference.
func (r *Renderer) SetShader(name string, shader metadata.Shader) {
	if shader != nil {
		if !r.owns(shader) {
			return
		}
		shader.Retain()
	}
	if old, ok := r.shaders[name]; ok {
		old.Release()
	}
	if shader == nil {
		delete(r.shaders, name)
		return
	}
	r.shaders[name] = shader
}

// LoadShaderFromFiles reads both stages through the file loader. The caller
// owns the returned reference.
func (r *Renderer) LoadShaderFromFiles(fragmentPath, vertexPath string) metadata.Shader {
	if r.config.ReadFile == nil {
		r.logLoadError("shader", vertexPath, core.ErrIO)
		return nil
	}
	fragment, err := r.config.ReadFile(fragmentPath)
	if err != nil {
		r.logLoadError("shader", fragmentPath, err)
		return nil
	}
	vertex, err := r.config.ReadFile(vertexPath)
	if err != nil {
		r.logLoadError("shader", vertexPath, err)
		return nil
	}
	return r.LoadShaderFromBuffers(fragment, vertex)
}

func (r *Renderer) LoadShaderFromBuffers(fragment, vertex []byte) metadata.Shader {
	if r.backend == nil {
		return nil
	}
	s, err := r.backend.CreateShader(fragment, vertex)
	if err != nil {
		r.logLoadError("shader", "buffer", err)
		return nil
	}
	return s
}

// CreateMeshBuffer uploads static geometry. The caller owns the returned
// reference.
func (r *Renderer) CreateMeshBuffer(indices []uint16, vertices []metadata.Vertex) metadata.MeshBuffer {
	if r.backend == nil {
		return nil
	}
	if err := metadata.ValidateMesh(indices, vertices); err != nil {
		core.LogError("failed to create mesh buffer: %s", err)
		return nil
	}
	m, err := r.backend.CreateMeshBuffer(indices, vertices)
	if err != nil {
		r.logLoadError("mesh buffer", "", err)
		return nil
	}
	return m
}

// device faults were already reported by the backend's fault policy
func (r *Renderer) logLoadError(kind, name string, err error) {
	if errors.Is(err, core.ErrDevice) || errors.Is(err, core.ErrCompile) {
		return
	}
	core.LogError("failed to load %s %s: %s", kind, name, err)
}

// ActivateTexture puts texture in slot layer. A nil texture clears the slot.
func (r *Renderer) ActivateTexture(texture metadata.Texture, layer int) bool {
	if layer < 0 || layer >= metadata.TextureLayers {
		return false
	}
	if texture != nil {
		if !r.owns(texture) {
			return false
		}
		texture.Retain()
	}
	if old := r.activeTextures[layer]; old != nil {
		old.Release()
	}
	r.activeTextures[layer] = texture
	if r.backend != nil {
		r.backend.BindTexture(texture, layer)
	}
	return true
}

func (r *Renderer) ActiveTexture(layer int) metadata.Texture {
	if layer < 0 || layer >= metadata.TextureLayers {
		return nil
	}
	return r.activeTextures[layer]
}

func (r *Renderer) ActivateShader(shader metadata.Shader) bool {
	if shader != nil {
		if !r.owns(shader) {
			return false
		}
		shader.Retain()
	}
	if r.activeShader != nil {
		r.activeShader.Release()
	}
	r.activeShader = shader
	if r.backend != nil {
		r.backend.BindShader(shader)
	}
	return true
}

func (r *Renderer) ActiveShader() metadata.Shader {
	return r.activeShader
}

// DrawMeshBuffer draws mesh with the active shader and textures.
// It returns false without touching the device when there is nothing to
// draw with.
func (r *Renderer) DrawMeshBuffer(mesh metadata.MeshBuffer, transform mgl32.Mat4) bool {
	return r.drawMesh(mesh, transform, metadata.TopologyTriangleList)
}

func (r *Renderer) drawMesh(mesh metadata.MeshBuffer, transform mgl32.Mat4, topology metadata.Topology) bool {
	if r.activeShader == nil || mesh == nil {
		return false
	}
	if !r.owns(mesh) || !r.Ready() {
		return false
	}

	final := r.projection.Mul4(r.cameraTransform()).Mul4(transform)
	if idx := r.activeShader.VertexConstantID(metadata.TransformConstantName); idx >= 0 {
		r.activeShader.SetConstantMat4(metadata.ShaderStageVertex, idx, final)
	}

	call := metadata.DrawCall{
		Shader:   r.activeShader,
		Mesh:     mesh,
		Textures: r.activeTextures,
		Topology: topology,
	}
	if err := r.backend.Draw(call); err != nil {
		core.LogError("draw failed: %s", err)
		return false
	}
	return true
}

// AbsoluteToWorldLocation converts window pixels (origin top-left, y down)
// to world coordinates.
func (r *Renderer) AbsoluteToWorldLocation(position mgl32.Vec2) mgl32.Vec2 {
	if r.size.IsZero() {
		return mgl32.Vec2{}
	}
	x := 2*position.X()/r.size.Width - 1
	y := 2*(r.size.Height-position.Y())/r.size.Height - 1

	inverse := r.projection.Mul4(r.cameraTransform()).Inv()
	p := inverse.Mul4x1(mgl32.Vec4{x, y, 0, 1})
	if p.W() != 0 {
		p = p.Mul(1 / p.W())
	}
	return mgl32.Vec2{p.X(), p.Y()}
}

// WorldToAbsoluteLocation is the inverse of AbsoluteToWorldLocation.
func (r *Renderer) WorldToAbsoluteLocation(position mgl32.Vec2) mgl32.Vec2 {
	clip := r.projection.Mul4(r.cameraTransform()).Mul4x1(mgl32.Vec4{position.X(), position.Y(), 0, 1})
	if clip.W() != 0 {
		clip = clip.Mul(1 / clip.W())
	}
	return mgl32.Vec2{
		(clip.X() + 1) / 2 * r.size.Width,
		r.size.Height - (clip.Y()+1)/2*r.size.Height,
	}
}
