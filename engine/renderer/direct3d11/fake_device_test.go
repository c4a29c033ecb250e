package direct3d11

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/renderer/d3d11"
)

var errFakeDevice = errors.New("E_FAIL")

// fakeD3D records every device, context and swap chain call in order.
type fakeD3D struct {
	calls   []string
	objects []*fakeObject

	failCreate       bool
	failDebugCreate  bool
	failVertexShader bool
	failLayout       bool
	withDebug        bool
	createConfigs    []d3d11.SwapChainConfig

	buffers      map[*fakeObject][]byte
	bufferDescs  []d3d11.BufferDesc
	textureDescs []d3d11.Texture2DDesc
	layouts      [][]d3d11.InputElementDesc
	viewports    []d3d11.Viewport
	views        []d3d11.ShaderResourceView
	draws        []fakeDraw
	presents     []uint32
	resizes      [][2]uint32
	vsConstants  []d3d11.Buffer
}

type fakeDraw struct {
	indexCount uint32
	topology   uint32
	format     uint32
	stride     uint32
}

func newFakeD3D() *fakeD3D {
	return &fakeD3D{buffers: make(map[*fakeObject][]byte)}
}

func (f *fakeD3D) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeD3D) object(kind string) *fakeObject {
	o := &fakeObject{kind: kind, fake: f}
	f.objects = append(f.objects, o)
	f.record("create %s", kind)
	return o
}

// live counts objects of kind that were created and not released.
func (f *fakeD3D) live(kind string) int {
	n := 0
	for _, o := range f.objects {
		if o.kind == kind && o.released == 0 {
			n++
		}
	}
	return n
}

func (f *fakeD3D) factory(config d3d11.SwapChainConfig) (*d3d11.Devices, error) {
	f.createConfigs = append(f.createConfigs, config)
	if f.failCreate || (config.Debug && f.failDebugCreate) {
		return nil, errFakeDevice
	}
	devices := &d3d11.Devices{
		Device:    &fakeDevice{f},
		Context:   &fakeContext{f},
		SwapChain: &fakeSwapChain{f},
	}
	if config.Debug && f.withDebug {
		devices.Debug = &fakeDebug{f}
	}
	f.record("create device")
	return devices, nil
}

type fakeObject struct {
	kind     string
	released int
	fake     *fakeD3D
}

func (o *fakeObject) Release() {
	o.released++
	o.fake.record("release %s", o.kind)
}

type fakeDevice struct{ f *fakeD3D }

func (d *fakeDevice) CreateBuffer(desc *d3d11.BufferDesc, data []byte) (d3d11.Buffer, error) {
	d.f.bufferDescs = append(d.f.bufferDescs, *desc)
	o := d.f.object("buffer")
	d.f.buffers[o] = append([]byte(nil), data...)
	return o, nil
}

func (d *fakeDevice) CreateTexture2D(desc *d3d11.Texture2DDesc, pixels []byte, pitch uint32) (d3d11.Texture2D, error) {
	d.f.textureDescs = append(d.f.textureDescs, *desc)
	d.f.record("texture pitch %d", pitch)
	return d.f.object("texture"), nil
}

func (d *fakeDevice) CreateShaderResourceView(texture d3d11.Texture2D) (d3d11.ShaderResourceView, error) {
	return d.f.object("srv"), nil
}

func (d *fakeDevice) CreateRenderTargetView(texture d3d11.Texture2D) (d3d11.RenderTargetView, error) {
	return d.f.object("rtv"), nil
}

func (d *fakeDevice) CreateVertexShader(bytecode []byte) (d3d11.VertexShader, error) {
	if d.f.failVertexShader {
		return nil, errFakeDevice
	}
	return d.f.object("vs"), nil
}

func (d *fakeDevice) CreatePixelShader(bytecode []byte) (d3d11.PixelShader, error) {
	return d.f.object("ps"), nil
}

func (d *fakeDevice) CreateInputLayout(elements []d3d11.InputElementDesc, bytecode []byte) (d3d11.InputLayout, error) {
	if d.f.failLayout {
		return nil, errFakeDevice
	}
	d.f.layouts = append(d.f.layouts, elements)
	return d.f.object("layout"), nil
}

func (d *fakeDevice) CreateSamplerState(desc *d3d11.SamplerDesc) (d3d11.SamplerState, error) {
	return d.f.object("sampler"), nil
}

func (d *fakeDevice) CreateRasterizerState(desc *d3d11.RasterizerDesc) (d3d11.RasterizerState, error) {
	return d.f.object("rasterizer"), nil
}

func (d *fakeDevice) CreateDepthStencilState(desc *d3d11.DepthStencilDesc) (d3d11.DepthStencilState, error) {
	return d.f.object("depth"), nil
}

func (d *fakeDevice) CreateBlendState(desc *d3d11.BlendDesc) (d3d11.BlendState, error) {
	return d.f.object("blend"), nil
}

func (d *fakeDevice) Release() { d.f.record("release device") }

type fakeContext struct{ f *fakeD3D }

func (c *fakeContext) ClearRenderTargetView(target d3d11.RenderTargetView, color [4]float32) {
	c.f.record("clear %.1f %.1f %.1f %.1f", color[0], color[1], color[2], color[3])
}

func (c *fakeContext) OMSetRenderTargets(target d3d11.RenderTargetView) {
	c.f.record("set render target %v", target != nil)
}

func (c *fakeContext) OMSetBlendState(state d3d11.BlendState)               { c.f.record("set blend") }
func (c *fakeContext) OMSetDepthStencilState(state d3d11.DepthStencilState) { c.f.record("set depth") }
func (c *fakeContext) RSSetState(state d3d11.RasterizerState)               { c.f.record("set rasterizer") }

func (c *fakeContext) RSSetViewports(viewport *d3d11.Viewport) {
	c.f.viewports = append(c.f.viewports, *viewport)
}

func (c *fakeContext) IASetInputLayout(layout d3d11.InputLayout) {}

func (c *fakeContext) IASetVertexBuffers(buffer d3d11.Buffer, stride, offset uint32) {
	c.f.draws = append(c.f.draws, fakeDraw{stride: stride})
}

func (c *fakeContext) IASetIndexBuffer(buffer d3d11.Buffer, format, offset uint32) {
	c.f.draws[len(c.f.draws)-1].format = format
}

func (c *fakeContext) IASetPrimitiveTopology(topology uint32) {
	c.f.draws[len(c.f.draws)-1].topology = topology
}

func (c *fakeContext) VSSetShader(shader d3d11.VertexShader) {}

func (c *fakeContext) VSSetConstantBuffers(buffer d3d11.Buffer) {
	c.f.vsConstants = append(c.f.vsConstants, buffer)
}

func (c *fakeContext) PSSetShader(shader d3d11.PixelShader)     {}
func (c *fakeContext) PSSetConstantBuffers(buffer d3d11.Buffer) {}

func (c *fakeContext) PSSetShaderResources(views []d3d11.ShaderResourceView) {
	c.f.views = append([]d3d11.ShaderResourceView(nil), views...)
}

func (c *fakeContext) PSSetSamplers(sampler d3d11.SamplerState) {}

func (c *fakeContext) Map(buffer d3d11.Buffer, mapType uint32, size uint32) ([]byte, error) {
	c.f.record("map %d %d", mapType, size)
	o := buffer.(*fakeObject)
	return c.f.buffers[o][:size], nil
}

func (c *fakeContext) Unmap(buffer d3d11.Buffer) { c.f.record("unmap") }

func (c *fakeContext) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	c.f.draws[len(c.f.draws)-1].indexCount = indexCount
	c.f.record("draw %d", indexCount)
}

func (c *fakeContext) ClearState() { c.f.record("clear state") }
func (c *fakeContext) Flush()      { c.f.record("flush") }
func (c *fakeContext) Release()    { c.f.record("release context") }

type fakeSwapChain struct{ f *fakeD3D }

func (s *fakeSwapChain) Present(syncInterval uint32) error {
	s.f.presents = append(s.f.presents, syncInterval)
	return nil
}

func (s *fakeSwapChain) BackBuffer() (d3d11.Texture2D, error) {
	return s.f.object("backbuffer"), nil
}

func (s *fakeSwapChain) ResizeBuffers(width, height uint32) error {
	s.f.resizes = append(s.f.resizes, [2]uint32{width, height})
	return nil
}

func (s *fakeSwapChain) Release() { s.f.record("release swapchain") }

type fakeDebug struct{ f *fakeD3D }

func (d *fakeDebug) ReportLiveDeviceObjects() error {
	d.f.record("report live objects")
	return nil
}

func (d *fakeDebug) Release() { d.f.record("release debug") }

type fakeSurface struct{}

func (fakeSurface) SwapBuffers()                {}
func (fakeSurface) NativeHandle() uintptr       { return 0xBEEF }
func (fakeSurface) FramebufferSize() (int, int) { return 800, 600 }
