//go:build windows

package d3d11

import (
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	moduleD3D11 = windows.NewLazySystemDLL("d3d11.dll")

	procCreateDeviceAndSwapChain = moduleD3D11.NewProc("D3D11CreateDeviceAndSwapChain")
)

const (
	sdkVersion         = 7
	driverTypeHardware = 1
	mbIconError        = 0x10
)

var (
	iidTexture2D = windows.GUID{Data1: 0x6f15aaf2, Data2: 0xd208, Data3: 0x4e89, Data4: [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
	iidDebug     = windows.GUID{Data1: 0x79cf2233, Data2: 0x7536, Data3: 0x4948, Data4: [8]byte{0x9d, 0x36, 0x1e, 0x46, 0x92, 0xdc, 0x57, 0x60}}
)

// IUnknown
const (
	unknownQueryInterface = iota
	unknownAddRef
	unknownRelease
)

// ID3D11Device
const (
	deviceCreateBuffer = iota + 3
	deviceCreateTexture1D
	deviceCreateTexture2D
	deviceCreateTexture3D
	deviceCreateShaderResourceView
	deviceCreateUnorderedAccessView
	deviceCreateRenderTargetView
	deviceCreateDepthStencilView
	deviceCreateInputLayout
	deviceCreateVertexShader
	deviceCreateGeometryShader
	deviceCreateGeometryShaderWithStreamOutput
	deviceCreatePixelShader
	deviceCreateHullShader
	deviceCreateDomainShader
	deviceCreateComputeShader
	deviceCreateClassLinkage
	deviceCreateBlendState
	deviceCreateDepthStencilState
	deviceCreateRasterizerState
	deviceCreateSamplerState
)

// ID3D11DeviceContext, after the four ID3D11DeviceChild methods.
const (
	ctxVSSetConstantBuffers = iota + 7
	ctxPSSetShaderResources
	ctxPSSetShader
	ctxPSSetSamplers
	ctxVSSetShader
	ctxDrawIndexed
	ctxDraw
	ctxMap
	ctxUnmap
	ctxPSSetConstantBuffers
	ctxIASetInputLayout
	ctxIASetVertexBuffers
	ctxIASetIndexBuffer
	ctxDrawIndexedInstanced
	ctxDrawInstanced
	ctxGSSetConstantBuffers
	ctxGSSetShader
	ctxIASetPrimitiveTopology
	ctxVSSetShaderResources
	ctxVSSetSamplers
	ctxBegin
	ctxEnd
	ctxGetData
	ctxSetPredication
	ctxGSSetShaderResources
	ctxGSSetSamplers
	ctxOMSetRenderTargets
	ctxOMSetRenderTargetsAndUnorderedAccessViews
	ctxOMSetBlendState
	ctxOMSetDepthStencilState
	ctxSOSetTargets
	ctxDrawAuto
	ctxDrawIndexedInstancedIndirect
	ctxDrawInstancedIndirect
	ctxDispatch
	ctxDispatchIndirect
	ctxRSSetState
	ctxRSSetViewports
	ctxRSSetScissorRects
	ctxCopySubresourceRegion
	ctxCopyResource
	ctxUpdateSubresource
	ctxCopyStructureCount
	ctxClearRenderTargetView
)

// The getters between ClearRenderTargetView and ClearState are never called.
const (
	ctxClearState = 110
	ctxFlush      = 111
)

// IDXGISwapChain, after IDXGIObject and IDXGIDeviceSubObject.
const (
	swapChainPresent = iota + 8
	swapChainGetBuffer
	swapChainSetFullscreenState
	swapChainGetFullscreenState
	swapChainGetDesc
	swapChainResizeBuffers
)

// ID3D11Debug
const debugReportLiveDeviceObjects = 10

type rational struct {
	Numerator   uint32
	Denominator uint32
}

type modeDesc struct {
	Width            uint32
	Height           uint32
	RefreshRate      rational
	Format           uint32
	ScanlineOrdering uint32
	Scaling          uint32
}

type swapChainDesc struct {
	BufferDesc   modeDesc
	SampleDesc   SampleDesc
	BufferUsage  uint32
	BufferCount  uint32
	OutputWindow windows.HWND
	Windowed     int32
	SwapEffect   uint32
	Flags        uint32
}

type subresourceData struct {
	SysMem           unsafe.Pointer
	SysMemPitch      uint32
	SysMemSlicePitch uint32
}

type mappedSubresource struct {
	Data       unsafe.Pointer
	RowPitch   uint32
	DepthPitch uint32
}

type inputElementDesc struct {
	SemanticName         *byte
	SemanticIndex        uint32
	Format               uint32
	InputSlot            uint32
	AlignedByteOffset    uint32
	InputSlotClass       uint32
	InstanceDataStepRate uint32
}

// comObject wraps any IUnknown-derived interface pointer.
type comObject struct {
	ptr unsafe.Pointer
}

func (o *comObject) method(index int) uintptr {
	vtbl := *(**[128]uintptr)(o.ptr)
	return vtbl[index]
}

func (o *comObject) Release() {
	if o == nil || o.ptr == nil {
		return
	}
	syscall.SyscallN(o.method(unknownRelease), uintptr(o.ptr))
	o.ptr = nil
}

func wrap(ptr unsafe.Pointer) *comObject {
	return &comObject{ptr: ptr}
}

// raw returns the interface pointer behind o, or 0 for nil.
func raw(o Object) uintptr {
	c, ok := o.(*comObject)
	if !ok || c == nil {
		return 0
	}
	return uintptr(c.ptr)
}

// Pointer exposes the interface pointer behind a COM object, 0 for nil.
func Pointer(o Object) uintptr {
	return raw(o)
}

func failed(hr uintptr) bool {
	return int32(hr) < 0
}

func bytesPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

// CreateDevice calls D3D11CreateDeviceAndSwapChain on the default hardware
// adapter.
func CreateDevice(config SwapChainConfig) (*Devices, error) {
	if err := procCreateDeviceAndSwapChain.Find(); err != nil {
		return nil, err
	}

	var windowed int32 = 1
	var refresh uint32
	if config.Fullscreen {
		windowed = 0
		refresh = 60
	}
	desc := swapChainDesc{
		BufferDesc: modeDesc{
			Width:            config.Width,
			Height:           config.Height,
			RefreshRate:      rational{Numerator: refresh, Denominator: 1},
			Format:           DXGI_FORMAT_R8G8B8A8_UNORM,
			ScanlineOrdering: DXGI_MODE_SCANLINE_ORDER_PROGRESSIVE,
			Scaling:          DXGI_MODE_SCALING_STRETCHED,
		},
		SampleDesc:   SampleDesc{Count: 1},
		BufferUsage:  DXGI_USAGE_RENDER_TARGET_OUTPUT,
		BufferCount:  1,
		OutputWindow: windows.HWND(config.Window),
		Windowed:     windowed,
		SwapEffect:   DXGI_SWAP_EFFECT_DISCARD,
		Flags:        DXGI_SWAP_CHAIN_FLAG_ALLOW_MODE_SWITCH,
	}
	var flags uint32
	if config.Debug {
		flags |= CREATE_DEVICE_DEBUG
	}

	var swapChainPtr, devicePtr, contextPtr unsafe.Pointer
	r, _, _ := procCreateDeviceAndSwapChain.Call(
		0, // default adapter
		driverTypeHardware,
		0, // no software rasterizer
		uintptr(flags),
		0, 0, // default feature levels
		sdkVersion,
		uintptr(unsafe.Pointer(&desc)),
		uintptr(unsafe.Pointer(&swapChainPtr)),
		uintptr(unsafe.Pointer(&devicePtr)),
		0,
		uintptr(unsafe.Pointer(&contextPtr)),
	)
	if failed(r) {
		return nil, ErrorCode{Name: "D3D11CreateDeviceAndSwapChain", Code: uint32(r)}
	}

	devices := &Devices{
		Device:    &device{wrap(devicePtr)},
		Context:   &deviceContext{wrap(contextPtr)},
		SwapChain: &swapChain{wrap(swapChainPtr)},
	}
	if config.Debug {
		dev := wrap(devicePtr)
		var debugPtr unsafe.Pointer
		r, _, _ := syscall.SyscallN(dev.method(unknownQueryInterface), uintptr(devicePtr),
			uintptr(unsafe.Pointer(&iidDebug)), uintptr(unsafe.Pointer(&debugPtr)))
		if !failed(r) && debugPtr != nil {
			devices.Debug = &debugLayer{wrap(debugPtr)}
		}
	}
	return devices, nil
}

// MessageBox shows a blocking error dialog.
func MessageBox(title, message string) {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return
	}
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	windows.MessageBox(0, text, caption, mbIconError)
}

type device struct {
	*comObject
}

func (d *device) create(name string, index int, desc unsafe.Pointer) (Object, error) {
	var out unsafe.Pointer
	r, _, _ := syscall.SyscallN(d.method(index), uintptr(d.ptr), uintptr(desc), uintptr(unsafe.Pointer(&out)))
	if failed(r) || out == nil {
		return nil, ErrorCode{Name: name, Code: uint32(r)}
	}
	return wrap(out), nil
}

func (d *device) CreateBuffer(desc *BufferDesc, data []byte) (Buffer, error) {
	var initial *subresourceData
	if data != nil {
		initial = &subresourceData{SysMem: bytesPtr(data)}
	}
	var out unsafe.Pointer
	r, _, _ := syscall.SyscallN(d.method(deviceCreateBuffer), uintptr(d.ptr),
		uintptr(unsafe.Pointer(desc)), uintptr(unsafe.Pointer(initial)), uintptr(unsafe.Pointer(&out)))
	runtime.KeepAlive(data)
	if failed(r) || out == nil {
		return nil, ErrorCode{Name: "ID3D11Device::CreateBuffer", Code: uint32(r)}
	}
	return wrap(out), nil
}

func (d *device) CreateTexture2D(desc *Texture2DDesc, pixels []byte, pitch uint32) (Texture2D, error) {
	var initial *subresourceData
	if pixels != nil {
		initial = &subresourceData{SysMem: bytesPtr(pixels), SysMemPitch: pitch}
	}
	var out unsafe.Pointer
	r, _, _ := syscall.SyscallN(d.method(deviceCreateTexture2D), uintptr(d.ptr),
		uintptr(unsafe.Pointer(desc)), uintptr(unsafe.Pointer(initial)), uintptr(unsafe.Pointer(&out)))
	runtime.KeepAlive(pixels)
	if failed(r) || out == nil {
		return nil, ErrorCode{Name: "ID3D11Device::CreateTexture2D", Code: uint32(r)}
	}
	return wrap(out), nil
}

func (d *device) CreateShaderResourceView(texture Texture2D) (ShaderResourceView, error) {
	var out unsafe.Pointer
	r, _, _ := syscall.SyscallN(d.method(deviceCreateShaderResourceView), uintptr(d.ptr),
		raw(texture), 0, uintptr(unsafe.Pointer(&out)))
	if failed(r) || out == nil {
		return nil, ErrorCode{Name: "ID3D11Device::CreateShaderResourceView", Code: uint32(r)}
	}
	return wrap(out), nil
}

func (d *device) CreateRenderTargetView(texture Texture2D) (RenderTargetView, error) {
	var out unsafe.Pointer
	r, _, _ := syscall.SyscallN(d.method(deviceCreateRenderTargetView), uintptr(d.ptr),
		raw(texture), 0, uintptr(unsafe.Pointer(&out)))
	if failed(r) || out == nil {
		return nil, ErrorCode{Name: "ID3D11Device::CreateRenderTargetView", Code: uint32(r)}
	}
	return wrap(out), nil
}

func (d *device) CreateVertexShader(bytecode []byte) (VertexShader, error) {
	var out unsafe.Pointer
	r, _, _ := syscall.SyscallN(d.method(deviceCreateVertexShader), uintptr(d.ptr),
		uintptr(bytesPtr(bytecode)), uintptr(len(bytecode)), 0, uintptr(unsafe.Pointer(&out)))
	runtime.KeepAlive(bytecode)
	if failed(r) || out == nil {
		return nil, ErrorCode{Name: "ID3D11Device::CreateVertexShader", Code: uint32(r)}
	}
	return wrap(out), nil
}

func (d *device) CreatePixelShader(bytecode []byte) (PixelShader, error) {
	var out unsafe.Pointer
	r, _, _ := syscall.SyscallN(d.method(deviceCreatePixelShader), uintptr(d.ptr),
		uintptr(bytesPtr(bytecode)), uintptr(len(bytecode)), 0, uintptr(unsafe.Pointer(&out)))
	runtime.KeepAlive(bytecode)
	if failed(r) || out == nil {
		return nil, ErrorCode{Name: "ID3D11Device::CreatePixelShader", Code: uint32(r)}
	}
	return wrap(out), nil
}

func (d *device) CreateInputLayout(elements []InputElementDesc, bytecode []byte) (InputLayout, error) {
	descs := make([]inputElementDesc, len(elements))
	for i, e := range elements {
		name, err := windows.BytePtrFromString(e.SemanticName)
		if err != nil {
			return nil, err
		}
		descs[i] = inputElementDesc{
			SemanticName:         name,
			SemanticIndex:        e.SemanticIndex,
			Format:               e.Format,
			InputSlot:            e.InputSlot,
			AlignedByteOffset:    e.AlignedByteOffset,
			InputSlotClass:       e.InputSlotClass,
			InstanceDataStepRate: e.InstanceDataStepRate,
		}
	}
	var out unsafe.Pointer
	r, _, _ := syscall.SyscallN(d.method(deviceCreateInputLayout), uintptr(d.ptr),
		uintptr(unsafe.Pointer(&descs[0])), uintptr(len(descs)),
		uintptr(bytesPtr(bytecode)), uintptr(len(bytecode)), uintptr(unsafe.Pointer(&out)))
	runtime.KeepAlive(descs)
	runtime.KeepAlive(bytecode)
	if failed(r) || out == nil {
		return nil, ErrorCode{Name: "ID3D11Device::CreateInputLayout", Code: uint32(r)}
	}
	return wrap(out), nil
}

func (d *device) CreateSamplerState(desc *SamplerDesc) (SamplerState, error) {
	return d.create("ID3D11Device::CreateSamplerState", deviceCreateSamplerState, unsafe.Pointer(desc))
}

func (d *device) CreateRasterizerState(desc *RasterizerDesc) (RasterizerState, error) {
	return d.create("ID3D11Device::CreateRasterizerState", deviceCreateRasterizerState, unsafe.Pointer(desc))
}

func (d *device) CreateDepthStencilState(desc *DepthStencilDesc) (DepthStencilState, error) {
	return d.create("ID3D11Device::CreateDepthStencilState", deviceCreateDepthStencilState, unsafe.Pointer(desc))
}

func (d *device) CreateBlendState(desc *BlendDesc) (BlendState, error) {
	return d.create("ID3D11Device::CreateBlendState", deviceCreateBlendState, unsafe.Pointer(desc))
}

type deviceContext struct {
	*comObject
}

func (c *deviceContext) ClearRenderTargetView(target RenderTargetView, color [4]float32) {
	syscall.SyscallN(c.method(ctxClearRenderTargetView), uintptr(c.ptr), raw(target), uintptr(unsafe.Pointer(&color)))
}

func (c *deviceContext) OMSetRenderTargets(target RenderTargetView) {
	views := [1]uintptr{raw(target)}
	var count uintptr
	if views[0] != 0 {
		count = 1
	}
	syscall.SyscallN(c.method(ctxOMSetRenderTargets), uintptr(c.ptr), count, uintptr(unsafe.Pointer(&views)), 0)
}

func (c *deviceContext) OMSetBlendState(state BlendState) {
	factor := [4]float32{}
	syscall.SyscallN(c.method(ctxOMSetBlendState), uintptr(c.ptr), raw(state), uintptr(unsafe.Pointer(&factor)), 0xffffffff)
}

func (c *deviceContext) OMSetDepthStencilState(state DepthStencilState) {
	syscall.SyscallN(c.method(ctxOMSetDepthStencilState), uintptr(c.ptr), raw(state), 0)
}

func (c *deviceContext) RSSetState(state RasterizerState) {
	syscall.SyscallN(c.method(ctxRSSetState), uintptr(c.ptr), raw(state))
}

func (c *deviceContext) RSSetViewports(viewport *Viewport) {
	syscall.SyscallN(c.method(ctxRSSetViewports), uintptr(c.ptr), 1, uintptr(unsafe.Pointer(viewport)))
}

func (c *deviceContext) IASetInputLayout(layout InputLayout) {
	syscall.SyscallN(c.method(ctxIASetInputLayout), uintptr(c.ptr), raw(layout))
}

func (c *deviceContext) IASetVertexBuffers(buffer Buffer, stride, offset uint32) {
	buffers := [1]uintptr{raw(buffer)}
	syscall.SyscallN(c.method(ctxIASetVertexBuffers), uintptr(c.ptr), 0, 1,
		uintptr(unsafe.Pointer(&buffers)), uintptr(unsafe.Pointer(&stride)), uintptr(unsafe.Pointer(&offset)))
}

func (c *deviceContext) IASetIndexBuffer(buffer Buffer, format, offset uint32) {
	syscall.SyscallN(c.method(ctxIASetIndexBuffer), uintptr(c.ptr), raw(buffer), uintptr(format), uintptr(offset))
}

func (c *deviceContext) IASetPrimitiveTopology(topology uint32) {
	syscall.SyscallN(c.method(ctxIASetPrimitiveTopology), uintptr(c.ptr), uintptr(topology))
}

func (c *deviceContext) VSSetShader(shader VertexShader) {
	syscall.SyscallN(c.method(ctxVSSetShader), uintptr(c.ptr), raw(shader), 0, 0)
}

func (c *deviceContext) VSSetConstantBuffers(buffer Buffer) {
	buffers := [1]uintptr{raw(buffer)}
	syscall.SyscallN(c.method(ctxVSSetConstantBuffers), uintptr(c.ptr), 0, 1, uintptr(unsafe.Pointer(&buffers)))
}

func (c *deviceContext) PSSetShader(shader PixelShader) {
	syscall.SyscallN(c.method(ctxPSSetShader), uintptr(c.ptr), raw(shader), 0, 0)
}

func (c *deviceContext) PSSetConstantBuffers(buffer Buffer) {
	buffers := [1]uintptr{raw(buffer)}
	syscall.SyscallN(c.method(ctxPSSetConstantBuffers), uintptr(c.ptr), 0, 1, uintptr(unsafe.Pointer(&buffers)))
}

func (c *deviceContext) PSSetShaderResources(views []ShaderResourceView) {
	if len(views) == 0 {
		return
	}
	ptrs := make([]uintptr, len(views))
	for i, v := range views {
		ptrs[i] = raw(v)
	}
	syscall.SyscallN(c.method(ctxPSSetShaderResources), uintptr(c.ptr), 0, uintptr(len(ptrs)), uintptr(unsafe.Pointer(&ptrs[0])))
	runtime.KeepAlive(ptrs)
}

func (c *deviceContext) PSSetSamplers(sampler SamplerState) {
	samplers := [1]uintptr{raw(sampler)}
	syscall.SyscallN(c.method(ctxPSSetSamplers), uintptr(c.ptr), 0, 1, uintptr(unsafe.Pointer(&samplers)))
}

func (c *deviceContext) Map(buffer Buffer, mapType uint32, size uint32) ([]byte, error) {
	var mapped mappedSubresource
	r, _, _ := syscall.SyscallN(c.method(ctxMap), uintptr(c.ptr), raw(buffer), 0, uintptr(mapType), 0, uintptr(unsafe.Pointer(&mapped)))
	if failed(r) || mapped.Data == nil {
		return nil, ErrorCode{Name: "ID3D11DeviceContext::Map", Code: uint32(r)}
	}
	return unsafe.Slice((*byte)(mapped.Data), size), nil
}

func (c *deviceContext) Unmap(buffer Buffer) {
	syscall.SyscallN(c.method(ctxUnmap), uintptr(c.ptr), raw(buffer), 0)
}

func (c *deviceContext) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	syscall.SyscallN(c.method(ctxDrawIndexed), uintptr(c.ptr), uintptr(indexCount), uintptr(startIndex), uintptr(baseVertex))
}

func (c *deviceContext) ClearState() {
	syscall.SyscallN(c.method(ctxClearState), uintptr(c.ptr))
}

func (c *deviceContext) Flush() {
	syscall.SyscallN(c.method(ctxFlush), uintptr(c.ptr))
}

type swapChain struct {
	*comObject
}

func (s *swapChain) Present(syncInterval uint32) error {
	r, _, _ := syscall.SyscallN(s.method(swapChainPresent), uintptr(s.ptr), uintptr(syncInterval), 0)
	if failed(r) {
		return ErrorCode{Name: "IDXGISwapChain::Present", Code: uint32(r)}
	}
	return nil
}

func (s *swapChain) BackBuffer() (Texture2D, error) {
	var out unsafe.Pointer
	r, _, _ := syscall.SyscallN(s.method(swapChainGetBuffer), uintptr(s.ptr), 0,
		uintptr(unsafe.Pointer(&iidTexture2D)), uintptr(unsafe.Pointer(&out)))
	if failed(r) || out == nil {
		return nil, ErrorCode{Name: "IDXGISwapChain::GetBuffer", Code: uint32(r)}
	}
	return wrap(out), nil
}

func (s *swapChain) ResizeBuffers(width, height uint32) error {
	r, _, _ := syscall.SyscallN(s.method(swapChainResizeBuffers), uintptr(s.ptr), 0,
		uintptr(width), uintptr(height), DXGI_FORMAT_UNKNOWN, DXGI_SWAP_CHAIN_FLAG_ALLOW_MODE_SWITCH)
	if failed(r) {
		return ErrorCode{Name: "IDXGISwapChain::ResizeBuffers", Code: uint32(r)}
	}
	return nil
}

type debugLayer struct {
	*comObject
}

func (d *debugLayer) ReportLiveDeviceObjects() error {
	r, _, _ := syscall.SyscallN(d.method(debugReportLiveDeviceObjects), uintptr(d.ptr), RLDO_DETAIL)
	if failed(r) {
		return ErrorCode{Name: "ID3D11Debug::ReportLiveDeviceObjects", Code: uint32(r)}
	}
	return nil
}
