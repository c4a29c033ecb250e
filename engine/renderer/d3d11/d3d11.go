// Package d3d11 is a minimal Direct3D 11 binding: the descriptor structs and
// constants the renderer needs plus interfaces over the device, immediate
// context and swap chain. The COM implementation only exists on Windows.
package d3d11

import "fmt"

const (
	DXGI_FORMAT_UNKNOWN         = 0
	DXGI_FORMAT_R32G32B32_FLOAT = 6
	DXGI_FORMAT_R32G32_FLOAT    = 16
	DXGI_FORMAT_R8G8B8A8_UNORM  = 28
	DXGI_FORMAT_R16_UINT        = 57

	DXGI_USAGE_RENDER_TARGET_OUTPUT = 0x20

	DXGI_SWAP_EFFECT_DISCARD               = 0
	DXGI_SWAP_CHAIN_FLAG_ALLOW_MODE_SWITCH = 0x2
	DXGI_MODE_SCANLINE_ORDER_PROGRESSIVE   = 1
	DXGI_MODE_SCALING_STRETCHED            = 2

	USAGE_DEFAULT   = 0
	USAGE_IMMUTABLE = 1
	USAGE_DYNAMIC   = 2

	BIND_VERTEX_BUFFER   = 0x1
	BIND_INDEX_BUFFER    = 0x2
	BIND_CONSTANT_BUFFER = 0x4
	BIND_SHADER_RESOURCE = 0x8
	BIND_RENDER_TARGET   = 0x20

	CPU_ACCESS_WRITE = 0x10000

	MAP_WRITE_DISCARD = 4

	FILTER_MIN_MAG_MIP_LINEAR = 0x15
	TEXTURE_ADDRESS_WRAP      = 1
	COMPARISON_NEVER          = 1
	COMPARISON_LESS           = 2
	FLOAT32_MAX               = 3.402823466e+38

	FILL_SOLID = 3
	CULL_NONE  = 1

	DEPTH_WRITE_MASK_ZERO = 0
	DEPTH_WRITE_MASK_ALL  = 1

	BLEND_ZERO          = 1
	BLEND_ONE           = 2
	BLEND_SRC_ALPHA     = 5
	BLEND_INV_SRC_ALPHA = 6
	BLEND_OP_ADD        = 1

	COLOR_WRITE_ENABLE_ALL = 0xf

	INPUT_PER_VERTEX_DATA = 0

	PRIMITIVE_TOPOLOGY_LINESTRIP    = 3
	PRIMITIVE_TOPOLOGY_TRIANGLELIST = 4

	CREATE_DEVICE_DEBUG = 0x2

	RLDO_DETAIL = 0x2
)

type BufferDesc struct {
	ByteWidth           uint32
	Usage               uint32
	BindFlags           uint32
	CPUAccessFlags      uint32
	MiscFlags           uint32
	StructureByteStride uint32
}

type SampleDesc struct {
	Count   uint32
	Quality uint32
}

type Texture2DDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleDesc     SampleDesc
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

type SamplerDesc struct {
	Filter         uint32
	AddressU       uint32
	AddressV       uint32
	AddressW       uint32
	MipLODBias     float32
	MaxAnisotropy  uint32
	ComparisonFunc uint32
	BorderColor    [4]float32
	MinLOD         float32
	MaxLOD         float32
}

type RasterizerDesc struct {
	FillMode              uint32
	CullMode              uint32
	FrontCounterClockwise int32
	DepthBias             int32
	DepthBiasClamp        float32
	SlopeScaledDepthBias  float32
	DepthClipEnable       int32
	ScissorEnable         int32
	MultisampleEnable     int32
	AntialiasedLineEnable int32
}

type DepthStencilOpDesc struct {
	StencilFailOp      uint32
	StencilDepthFailOp uint32
	StencilPassOp      uint32
	StencilFunc        uint32
}

type DepthStencilDesc struct {
	DepthEnable      int32
	DepthWriteMask   uint32
	DepthFunc        uint32
	StencilEnable    int32
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFace        DepthStencilOpDesc
	BackFace         DepthStencilOpDesc
}

type RenderTargetBlendDesc struct {
	BlendEnable           int32
	SrcBlend              uint32
	DestBlend             uint32
	BlendOp               uint32
	SrcBlendAlpha         uint32
	DestBlendAlpha        uint32
	BlendOpAlpha          uint32
	RenderTargetWriteMask uint8
}

type BlendDesc struct {
	AlphaToCoverageEnable  int32
	IndependentBlendEnable int32
	RenderTarget           [8]RenderTargetBlendDesc
}

// InputElementDesc mirrors D3D11_INPUT_ELEMENT_DESC with a Go string for the
// semantic name.
type InputElementDesc struct {
	SemanticName         string
	SemanticIndex        uint32
	Format               uint32
	InputSlot            uint32
	AlignedByteOffset    uint32
	InputSlotClass       uint32
	InstanceDataStepRate uint32
}

type Viewport struct {
	TopLeftX float32
	TopLeftY float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

// Object is any COM object handed out by the device.
type Object interface {
	Release()
}

type (
	Buffer             interface{ Object }
	Texture2D          interface{ Object }
	ShaderResourceView interface{ Object }
	RenderTargetView   interface{ Object }
	VertexShader       interface{ Object }
	PixelShader        interface{ Object }
	InputLayout        interface{ Object }
	SamplerState       interface{ Object }
	RasterizerState    interface{ Object }
	DepthStencilState  interface{ Object }
	BlendState         interface{ Object }
)

// Device is ID3D11Device, restricted to object creation.
type Device interface {
	CreateBuffer(desc *BufferDesc, data []byte) (Buffer, error)
	CreateTexture2D(desc *Texture2DDesc, pixels []byte, pitch uint32) (Texture2D, error)
	CreateShaderResourceView(texture Texture2D) (ShaderResourceView, error)
	CreateRenderTargetView(texture Texture2D) (RenderTargetView, error)
	CreateVertexShader(bytecode []byte) (VertexShader, error)
	CreatePixelShader(bytecode []byte) (PixelShader, error)
	CreateInputLayout(elements []InputElementDesc, bytecode []byte) (InputLayout, error)
	CreateSamplerState(desc *SamplerDesc) (SamplerState, error)
	CreateRasterizerState(desc *RasterizerDesc) (RasterizerState, error)
	CreateDepthStencilState(desc *DepthStencilDesc) (DepthStencilState, error)
	CreateBlendState(desc *BlendDesc) (BlendState, error)
	Release()
}

// DeviceContext is the immediate ID3D11DeviceContext. Nil arguments unbind.
type DeviceContext interface {
	ClearRenderTargetView(target RenderTargetView, color [4]float32)
	OMSetRenderTargets(target RenderTargetView)
	OMSetBlendState(state BlendState)
	OMSetDepthStencilState(state DepthStencilState)
	RSSetState(state RasterizerState)
	RSSetViewports(viewport *Viewport)
	IASetInputLayout(layout InputLayout)
	IASetVertexBuffers(buffer Buffer, stride, offset uint32)
	IASetIndexBuffer(buffer Buffer, format, offset uint32)
	IASetPrimitiveTopology(topology uint32)
	VSSetShader(shader VertexShader)
	VSSetConstantBuffers(buffer Buffer)
	PSSetShader(shader PixelShader)
	PSSetConstantBuffers(buffer Buffer)
	PSSetShaderResources(views []ShaderResourceView)
	PSSetSamplers(sampler SamplerState)
	// Map returns the first size bytes of buffer, valid until Unmap.
	Map(buffer Buffer, mapType uint32, size uint32) ([]byte, error)
	Unmap(buffer Buffer)
	DrawIndexed(indexCount, startIndex uint32, baseVertex int32)
	ClearState()
	Flush()
	Release()
}

type SwapChain interface {
	Present(syncInterval uint32) error
	// BackBuffer returns buffer 0 of the chain.
	BackBuffer() (Texture2D, error)
	ResizeBuffers(width, height uint32) error
	Release()
}

// Debug is ID3D11Debug, present when the device was created with the debug
// layer.
type Debug interface {
	ReportLiveDeviceObjects() error
	Release()
}

type SwapChainConfig struct {
	Window     uintptr
	Width      uint32
	Height     uint32
	Fullscreen bool
	Debug      bool
}

// Devices is everything D3D11CreateDeviceAndSwapChain hands back. Debug is nil
// unless requested and available.
type Devices struct {
	Device    Device
	Context   DeviceContext
	SwapChain SwapChain
	Debug     Debug
}

// Factory creates the device, its immediate context and a swap chain for a
// window.
type Factory func(config SwapChainConfig) (*Devices, error)

// ErrorCode is a failed HRESULT.
type ErrorCode struct {
	Name string
	Code uint32
}

func (e ErrorCode) Error() string {
	return fmt.Sprintf("%s: %#x", e.Name, e.Code)
}
