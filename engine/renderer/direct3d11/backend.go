package direct3d11

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/d3d11"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Backend drives a Direct3D 11 device with a single buffered swap chain.
// Textures and shaders are bound when a draw is submitted.
type Backend struct {
	factory d3d11.Factory
	surface renderer.Surface

	state      metadata.DeviceState
	owner      uuid.UUID
	faults     core.FaultPolicy
	vsync      bool
	clearColor [4]float32
	width      uint32
	height     uint32

	device    d3d11.Device
	context   d3d11.DeviceContext
	swapChain d3d11.SwapChain
	debug     d3d11.Debug

	backBuffer   d3d11.Texture2D
	renderTarget d3d11.RenderTargetView
	sampler      d3d11.SamplerState
	rasterizer   d3d11.RasterizerState
	depthStencil d3d11.DepthStencilState
	blend        d3d11.BlendState

	// per stage constant buffers shared by every draw
	vertexConstants *metadata.DynamicBuffer[d3d11.Buffer]
	pixelConstants  *metadata.DynamicBuffer[d3d11.Buffer]

	live map[uuid.UUID]func() error
}

// New returns a backend that creates its device through factory, normally
// d3d11.CreateDevice.
func New(factory d3d11.Factory, surface renderer.Surface) *Backend {
	return &Backend{
		factory: factory,
		surface: surface,
		state:   metadata.DeviceStateUninitialized,
		live:    make(map[uuid.UUID]func() error),
	}
}

func (b *Backend) Driver() metadata.Driver     { return metadata.DriverDirect3D11 }
func (b *Backend) State() metadata.DeviceState { return b.state }

// ClipSpaceCorrection remaps depth from [-1, 1] to [0, 1].
func (b *Backend) ClipSpaceCorrection() mgl32.Mat4 {
	return mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0.5, 1,
	}
}

func (b *Backend) hasDevice() bool {
	return b.state == metadata.DeviceStateDeviceCreated || b.state == metadata.DeviceStateReady
}

func (b *Backend) Initialize(config renderer.BackendConfig) error {
	if b.state != metadata.DeviceStateUninitialized {
		return fmt.Errorf("direct3d11 backend already initialized (%s)", b.state)
	}
	b.owner = config.Owner
	b.vsync = config.VSync
	b.faults = config.Faults
	if b.faults.Title == "" {
		b.faults.Title = "Fatal Direct3D11 error"
	}
	if b.faults.Abort == nil {
		b.faults.Abort = func(title, message string) {
			d3d11.MessageBox(title, message)
			core.LogFatal("%s: %s", title, message)
		}
	}
	b.clearColor = config.ClearColor.Floats()
	b.width = uint32(config.Size.Width)
	b.height = uint32(config.Size.Height)

	if err := b.createDevice(config.Debug); err != nil {
		return b.faults.Fail(err)
	}
	b.state = metadata.DeviceStateDeviceCreated

	if err := b.createTargets(); err != nil {
		return b.faults.Fail(err)
	}
	if err := b.createStates(); err != nil {
		return b.faults.Fail(err)
	}
	b.vertexConstants = metadata.NewDynamicBuffer[d3d11.Buffer](bufferDevice{b}, metadata.BufferPurposeConstant, b.faults)
	b.pixelConstants = metadata.NewDynamicBuffer[d3d11.Buffer](bufferDevice{b}, metadata.BufferPurposeConstant, b.faults)

	if config.RegisterBuiltins != nil {
		shaders, err := loadBuiltins(config)
		if err != nil {
			return b.faults.Fail(err)
		}
		if err := config.RegisterBuiltins(shaders); err != nil {
			return err
		}
	}

	b.state = metadata.DeviceStateReady
	b.SetViewport(b.width, b.height)
	return nil
}

func (b *Backend) createDevice(debug bool) error {
	var window uintptr
	if b.surface != nil {
		window = b.surface.NativeHandle()
	}
	swapChain := d3d11.SwapChainConfig{
		Window: window,
		Width:  b.width,
		Height: b.height,
		Debug:  debug,
	}
	devices, err := b.factory(swapChain)
	if err != nil && debug {
		// the debug layer is missing unless the SDK layers are installed
		core.LogWarn("failed to create Direct3D11 debug device, retrying without the debug layer: %s", err)
		swapChain.Debug = false
		devices, err = b.factory(swapChain)
	}
	if err != nil {
		return fmt.Errorf("failed to create the Direct3D11 device: %w: %w", core.ErrDevice, err)
	}
	b.device = devices.Device
	b.context = devices.Context
	b.swapChain = devices.SwapChain
	b.debug = devices.Debug
	core.LogInfo("Direct3D11 device created (debug layer: %t)", b.debug != nil)
	return nil
}

func (b *Backend) createTargets() error {
	backBuffer, err := b.swapChain.BackBuffer()
	if err != nil {
		return fmt.Errorf("failed to retrieve the back buffer: %w: %w", core.ErrDevice, err)
	}
	renderTarget, err := b.device.CreateRenderTargetView(backBuffer)
	if err != nil {
		backBuffer.Release()
		return fmt.Errorf("failed to create the render target view: %w: %w", core.ErrDevice, err)
	}
	b.backBuffer = backBuffer
	b.renderTarget = renderTarget
	b.context.OMSetRenderTargets(renderTarget)
	return nil
}

func (b *Backend) releaseTargets() {
	b.context.OMSetRenderTargets(nil)
	if b.renderTarget != nil {
		b.renderTarget.Release()
		b.renderTarget = nil
	}
	if b.backBuffer != nil {
		b.backBuffer.Release()
		b.backBuffer = nil
	}
}

func (b *Backend) createStates() error {
	var err error
	b.sampler, err = b.device.CreateSamplerState(&d3d11.SamplerDesc{
		Filter:         d3d11.FILTER_MIN_MAG_MIP_LINEAR,
		AddressU:       d3d11.TEXTURE_ADDRESS_WRAP,
		AddressV:       d3d11.TEXTURE_ADDRESS_WRAP,
		AddressW:       d3d11.TEXTURE_ADDRESS_WRAP,
		MaxAnisotropy:  1,
		ComparisonFunc: d3d11.COMPARISON_NEVER,
		MaxLOD:         d3d11.FLOAT32_MAX,
	})
	if err != nil {
		return fmt.Errorf("failed to create sampler state: %w: %w", core.ErrDevice, err)
	}

	b.rasterizer, err = b.device.CreateRasterizerState(&d3d11.RasterizerDesc{
		FillMode:              d3d11.FILL_SOLID,
		CullMode:              d3d11.CULL_NONE,
		AntialiasedLineEnable: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create rasterizer state: %w: %w", core.ErrDevice, err)
	}

	b.depthStencil, err = b.device.CreateDepthStencilState(&d3d11.DepthStencilDesc{
		DepthEnable:    0,
		DepthWriteMask: d3d11.DEPTH_WRITE_MASK_ZERO,
		DepthFunc:      d3d11.COMPARISON_LESS,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth stencil state: %w: %w", core.ErrDevice, err)
	}

	blend := d3d11.BlendDesc{}
	blend.RenderTarget[0] = d3d11.RenderTargetBlendDesc{
		BlendEnable:           1,
		SrcBlend:              d3d11.BLEND_SRC_ALPHA,
		DestBlend:             d3d11.BLEND_INV_SRC_ALPHA,
		BlendOp:               d3d11.BLEND_OP_ADD,
		SrcBlendAlpha:         d3d11.BLEND_SRC_ALPHA,
		DestBlendAlpha:        d3d11.BLEND_INV_SRC_ALPHA,
		BlendOpAlpha:          d3d11.BLEND_OP_ADD,
		RenderTargetWriteMask: d3d11.COLOR_WRITE_ENABLE_ALL,
	}
	b.blend, err = b.device.CreateBlendState(&blend)
	if err != nil {
		return fmt.Errorf("failed to create blend state: %w: %w", core.ErrDevice, err)
	}

	b.context.RSSetState(b.rasterizer)
	b.context.OMSetDepthStencilState(b.depthStencil)
	b.context.OMSetBlendState(b.blend)
	return nil
}

// Shutdown releases everything in reverse dependency order and reports live
// objects through the debug layer just before the device goes away.
func (b *Backend) Shutdown() error {
	if b.state == metadata.DeviceStateDestroyed {
		return nil
	}
	if b.state == metadata.DeviceStateUninitialized {
		b.state = metadata.DeviceStateDestroyed
		return nil
	}

	var leaked error
	if n := len(b.live); n > 0 {
		core.LogWarn("direct3d11 backend shutting down with %d live objects", n)
		for id, teardown := range b.live {
			leaked = errors.Join(leaked, teardown())
			delete(b.live, id)
		}
	}

	if b.vertexConstants != nil {
		b.vertexConstants.Free()
	}
	if b.pixelConstants != nil {
		b.pixelConstants.Free()
	}
	for _, state := range []d3d11.Object{b.blend, b.depthStencil, b.rasterizer, b.sampler} {
		if state != nil {
			state.Release()
		}
	}
	b.blend, b.depthStencil, b.rasterizer, b.sampler = nil, nil, nil, nil

	if b.context != nil {
		b.releaseTargets()
		b.context.ClearState()
		b.context.Flush()
	}
	if b.swapChain != nil {
		b.swapChain.Release()
		b.swapChain = nil
	}
	if b.context != nil {
		b.context.Release()
		b.context = nil
	}
	if b.debug != nil {
		if err := b.debug.ReportLiveDeviceObjects(); err != nil {
			core.LogWarn("failed to report live Direct3D11 objects: %s", err)
		}
		b.debug.Release()
		b.debug = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
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
	b.clearColor = color.Floats()
}

// SetViewport resizes the swap chain when the size changed and points the
// rasterizer at the whole back buffer.
func (b *Backend) SetViewport(width, height uint32) {
	if b.state != metadata.DeviceStateReady || width == 0 || height == 0 {
		return
	}
	if width != b.width || height != b.height {
		b.releaseTargets()
		if err := b.swapChain.ResizeBuffers(width, height); err != nil {
			b.faults.Fail(fmt.Errorf("failed to resize the swap chain to %dx%d: %w: %w", width, height, core.ErrDevice, err))
		}
		if err := b.createTargets(); err != nil {
			b.faults.Fail(err)
			return
		}
		b.width, b.height = width, height
	}
	b.context.RSSetViewports(&d3d11.Viewport{
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0,
		MaxDepth: 1,
	})
}

func (b *Backend) Clear() {
	if b.renderTarget == nil {
		return
	}
	b.context.ClearRenderTargetView(b.renderTarget, b.clearColor)
}

func (b *Backend) Present() error {
	if b.swapChain == nil {
		return core.ErrNotReady
	}
	var interval uint32
	if b.vsync {
		interval = 1
	}
	if err := b.swapChain.Present(interval); err != nil {
		return fmt.Errorf("present: %w: %w", core.ErrDevice, err)
	}
	return nil
}

// BindTexture is a no-op: textures are bound from the draw call.
func (b *Backend) BindTexture(texture metadata.Texture, layer int) {}

// BindShader is a no-op: the shader is bound from the draw call.
func (b *Backend) BindShader(shader metadata.Shader) {}

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

	vertexConstants, err := b.uploadConstants(b.vertexConstants, shader.constants[metadata.ShaderStageVertex])
	if err != nil {
		return err
	}
	pixelConstants, err := b.uploadConstants(b.pixelConstants, shader.constants[metadata.ShaderStagePixel])
	if err != nil {
		return err
	}

	var views [metadata.TextureLayers]d3d11.ShaderResourceView
	for layer, texture := range call.Textures {
		if t, ok := texture.(*Texture); ok && t != nil {
			views[layer] = t.view
		}
	}

	topology := uint32(d3d11.PRIMITIVE_TOPOLOGY_TRIANGLELIST)
	if call.Topology == metadata.TopologyLineStrip {
		topology = d3d11.PRIMITIVE_TOPOLOGY_LINESTRIP
	}

	vertexBuffer, _ := mesh.vertices.Handle()
	indexBuffer, _ := mesh.indices.Handle()

	ctx := b.context
	ctx.IASetInputLayout(shader.layout)
	ctx.VSSetShader(shader.vertexShader)
	ctx.VSSetConstantBuffers(vertexConstants)
	ctx.PSSetShader(shader.pixelShader)
	ctx.PSSetConstantBuffers(pixelConstants)
	ctx.PSSetShaderResources(views[:])
	ctx.PSSetSamplers(b.sampler)
	ctx.IASetVertexBuffers(vertexBuffer, metadata.VertexSize, 0)
	ctx.IASetIndexBuffer(indexBuffer, d3d11.DXGI_FORMAT_R16_UINT, 0)
	ctx.IASetPrimitiveTopology(topology)
	ctx.DrawIndexed(mesh.indexCount, 0, 0)
	return nil
}

// uploadConstants copies a stage's constant bytes into the shared buffer and
// returns the buffer to bind, nil when the stage has no constants.
func (b *Backend) uploadConstants(buffer *metadata.DynamicBuffer[d3d11.Buffer], data []byte) (d3d11.Buffer, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if err := buffer.Upload(data, uint32(len(data))); err != nil {
		return nil, err
	}
	handle, _ := buffer.Handle()
	return handle, nil
}
