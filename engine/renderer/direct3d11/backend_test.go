package direct3d11

import (
	"encoding/binary"
	"errors"
	stdmath "math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/d3d11"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func fakeFiles(path string) ([]byte, error) {
	if strings.HasSuffix(path, ".cso") {
		return []byte("DXBC" + path), nil
	}
	return nil, core.ErrIO
}

func testConfig(register func([]renderer.BuiltinShader) error) renderer.BackendConfig {
	return renderer.BackendConfig{
		Owner:            uuid.New(),
		Size:             math.NewSize2(800, 600),
		ClearColor:       math.ColorBlue,
		VSync:            true,
		ShaderDir:        "shaders",
		ReadFile:         fakeFiles,
		Faults:           core.FaultPolicy{Mode: core.DeviceErrorReturnFailure},
		RegisterBuiltins: register,
	}
}

func newReadyBackend(t *testing.T) (*Backend, *fakeD3D, map[string]metadata.Shader) {
	t.Helper()
	fake := newFakeD3D()
	b := New(fake.factory, fakeSurface{})
	builtins := make(map[string]metadata.Shader)
	err := b.Initialize(testConfig(func(shaders []renderer.BuiltinShader) error {
		for _, s := range shaders {
			shader, err := b.CreateShader(s.Fragment, s.Vertex)
			if err != nil {
				return err
			}
			builtins[s.Name] = shader
		}
		return nil
	}))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return b, fake, builtins
}

func TestInitializeCreatesFixedState(t *testing.T) {
	b, fake, builtins := newReadyBackend(t)

	if b.State() != metadata.DeviceStateReady {
		t.Fatalf("state = %s", b.State())
	}
	if fake.createConfigs[0].Window != 0xBEEF || fake.createConfigs[0].Width != 800 {
		t.Errorf("swap chain config = %+v", fake.createConfigs[0])
	}
	for _, kind := range []string{"backbuffer", "rtv", "sampler", "rasterizer", "depth", "blend"} {
		if fake.live(kind) != 1 {
			t.Errorf("%d live %s objects, want 1", fake.live(kind), kind)
		}
	}
	if len(builtins) != 2 || builtins[metadata.ShaderTextureName] == nil || builtins[metadata.ShaderColorName] == nil {
		t.Fatalf("built-ins = %v", builtins)
	}
	if len(fake.viewports) != 1 || fake.viewports[0].Width != 800 || fake.viewports[0].MaxDepth != 1 {
		t.Errorf("viewports = %+v", fake.viewports)
	}
}

func TestInputLayoutMatchesVertex(t *testing.T) {
	_, fake, _ := newReadyBackend(t)
	layout := fake.layouts[0]
	want := []struct {
		semantic string
		format   uint32
		offset   uint32
	}{
		{"POSITION", d3d11.DXGI_FORMAT_R32G32B32_FLOAT, 0},
		{"COLOR", d3d11.DXGI_FORMAT_R8G8B8A8_UNORM, 12},
		{"TEXCOORD", d3d11.DXGI_FORMAT_R32G32_FLOAT, 16},
	}
	if len(layout) != len(want) {
		t.Fatalf("layout has %d elements", len(layout))
	}
	for i, w := range want {
		e := layout[i]
		if e.SemanticName != w.semantic || e.Format != w.format || e.AlignedByteOffset != w.offset {
			t.Errorf("element %d = %+v, want %+v", i, e, w)
		}
	}
}

func TestDeviceCreationFailure(t *testing.T) {
	fake := newFakeD3D()
	fake.failCreate = true
	b := New(fake.factory, fakeSurface{})

	var aborted string
	config := testConfig(nil)
	config.Faults = core.FaultPolicy{Mode: core.DeviceErrorAbort, Abort: func(title, message string) { aborted = title }}
	err := b.Initialize(config)
	if !errors.Is(err, core.ErrDevice) {
		t.Fatalf("err = %v, want ErrDevice", err)
	}
	if aborted != "Fatal Direct3D11 error" {
		t.Errorf("abort title = %q", aborted)
	}
	if b.State() != metadata.DeviceStateUninitialized {
		t.Errorf("state = %s", b.State())
	}
}

func TestDebugLayerFallback(t *testing.T) {
	fake := newFakeD3D()
	fake.failDebugCreate = true
	b := New(fake.factory, fakeSurface{})
	config := testConfig(nil)
	config.Debug = true

	if err := b.Initialize(config); err != nil {
		t.Fatal(err)
	}
	if len(fake.createConfigs) != 2 || fake.createConfigs[1].Debug {
		t.Errorf("create configs = %+v", fake.createConfigs)
	}
}

func TestMissingBuiltinBytecode(t *testing.T) {
	fake := newFakeD3D()
	b := New(fake.factory, fakeSurface{})
	config := testConfig(func([]renderer.BuiltinShader) error { return nil })
	config.ReadFile = func(string) ([]byte, error) { return nil, core.ErrIO }

	if err := b.Initialize(config); !errors.Is(err, core.ErrIO) {
		t.Fatalf("err = %v, want ErrIO", err)
	}
	if b.State() == metadata.DeviceStateReady {
		t.Error("ready without built-in shaders")
	}
}

func TestShaderCreationFailures(t *testing.T) {
	b, fake, _ := newReadyBackend(t)

	if _, err := b.CreateShader(nil, []byte("vs")); !errors.Is(err, core.ErrCompile) {
		t.Errorf("empty bytecode: %v", err)
	}

	fake.failLayout = true
	before := fake.live("vs")
	if _, err := b.CreateShader([]byte("ps"), []byte("vs")); !errors.Is(err, core.ErrCompile) {
		t.Errorf("layout failure: %v", err)
	}
	if fake.live("vs") != before || fake.live("ps") != 2 {
		t.Error("shader objects leaked after layout failure")
	}
}

func TestTextureCreation(t *testing.T) {
	b, fake, _ := newReadyBackend(t)
	image, _ := metadata.NewImage(4, 2, make([]uint8, 32))

	tex, err := b.CreateTexture("tile.png", image)
	if err != nil {
		t.Fatal(err)
	}
	desc := fake.textureDescs[0]
	if desc.Width != 4 || desc.Height != 2 || desc.Format != d3d11.DXGI_FORMAT_R8G8B8A8_UNORM ||
		desc.Usage != d3d11.USAGE_IMMUTABLE || desc.BindFlags != d3d11.BIND_SHADER_RESOURCE {
		t.Errorf("desc = %+v", desc)
	}
	found := false
	for _, c := range fake.calls {
		if c == "texture pitch 16" {
			found = true
		}
	}
	if !found {
		t.Error("initial data pitch is not width*4")
	}
	if tex.Size() != math.NewSize2(4, 2) {
		t.Errorf("size = %v", tex.Size())
	}

	tex.Release()
	if fake.live("texture") != 0 || fake.live("srv") != 0 {
		t.Error("texture objects not released")
	}
}

func TestConstantBufferGrowth(t *testing.T) {
	_, _, builtins := newReadyBackend(t)
	s := builtins[metadata.ShaderColorName].(*Shader)

	s.SetConstantFloats(metadata.ShaderStagePixel, 4, 1.5)
	if got := len(s.constants[metadata.ShaderStagePixel]); got != 16 {
		t.Fatalf("pixel constants = %d bytes, want 16", got)
	}
	s.SetConstantVec4(metadata.ShaderStagePixel, 20, mgl32.Vec4{1, 2, 3, 4})
	buf := s.constants[metadata.ShaderStagePixel]
	if len(buf) != 48 {
		t.Fatalf("pixel constants = %d bytes, want 48", len(buf))
	}
	if v := stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[4:])); v != 1.5 {
		t.Errorf("float at 4 = %v", v)
	}
	if v := stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[32:])); v != 4 {
		t.Errorf("float at 32 = %v", v)
	}

	before := len(buf)
	s.SetConstantMat4(metadata.ShaderStageVertex, -1, mgl32.Ident4())
	if len(s.constants[metadata.ShaderStagePixel]) != before || len(s.constants[metadata.ShaderStageVertex]) != 0 {
		t.Error("negative index wrote constants")
	}
}

func TestConstantIDs(t *testing.T) {
	_, _, builtins := newReadyBackend(t)
	s := builtins[metadata.ShaderTextureName].(*Shader)

	if id := s.VertexConstantID(metadata.TransformConstantName); id != 0 {
		t.Errorf("transform id = %d", id)
	}
	if id := s.PixelConstantID("tint"); id != -1 {
		t.Errorf("undeclared id = %d", id)
	}
	s.DeclareConstant(metadata.ShaderStagePixel, "tint", 16)
	if id := s.PixelConstantID("tint"); id != 16 {
		t.Errorf("declared id = %d", id)
	}
}

func TestUserShaderDeclaresConstants(t *testing.T) {
	b, _, _ := newReadyBackend(t)
	shader, err := b.CreateShader([]byte("user ps"), []byte("user vs"))
	if err != nil {
		t.Fatal(err)
	}
	defer shader.Release()

	shader.DeclareConstant(metadata.ShaderStageVertex, "time", 64)
	shader.DeclareConstant(metadata.ShaderStagePixel, "tint", 0)
	if id := shader.VertexConstantID("time"); id != 64 {
		t.Errorf("time id = %d, want 64", id)
	}
	if id := shader.PixelConstantID("tint"); id != 0 {
		t.Errorf("tint id = %d, want 0", id)
	}
	shader.SetConstantVec4(metadata.ShaderStagePixel, shader.PixelConstantID("tint"), mgl32.Vec4{1, 0, 0, 1})
	if got := len(shader.(*Shader).constants[metadata.ShaderStagePixel]); got != 16 {
		t.Errorf("pixel constants = %d bytes, want 16", got)
	}
}

func TestDrawBindsEverything(t *testing.T) {
	b, fake, builtins := newReadyBackend(t)
	shader := builtins[metadata.ShaderTextureName]
	image, _ := metadata.NewImage(1, 1, make([]uint8, 4))
	tex, _ := b.CreateTexture("a", image)
	mesh, err := b.CreateMeshBuffer([]uint16{0, 1, 2, 1, 3, 2}, make([]metadata.Vertex, 4))
	if err != nil {
		t.Fatal(err)
	}

	shader.SetConstantMat4(metadata.ShaderStageVertex, shader.VertexConstantID(metadata.TransformConstantName), mgl32.Ident4())
	call := metadata.DrawCall{Shader: shader, Mesh: mesh}
	call.Textures[2] = tex
	if err := b.Draw(call); err != nil {
		t.Fatal(err)
	}

	draw := fake.draws[len(fake.draws)-1]
	if draw.indexCount != 6 || draw.topology != d3d11.PRIMITIVE_TOPOLOGY_TRIANGLELIST ||
		draw.format != d3d11.DXGI_FORMAT_R16_UINT || draw.stride != metadata.VertexSize {
		t.Errorf("draw = %+v", draw)
	}
	if len(fake.views) != metadata.TextureLayers || fake.views[2] == nil || fake.views[0] != nil {
		t.Errorf("views = %v", fake.views)
	}
	if fake.vsConstants[len(fake.vsConstants)-1] == nil {
		t.Error("vertex constant buffer not bound")
	}
	cb := fake.bufferDescs[len(fake.bufferDescs)-1]
	if cb.BindFlags != d3d11.BIND_CONSTANT_BUFFER || cb.ByteWidth%16 != 0 || cb.ByteWidth != 64 {
		t.Errorf("constant buffer desc = %+v", cb)
	}

	// second draw rewrites the constant buffer in place
	if err := b.Draw(metadata.DrawCall{Shader: shader, Mesh: mesh, Topology: metadata.TopologyLineStrip}); err != nil {
		t.Fatal(err)
	}
	if fake.calls[len(fake.calls)-1] != "draw 6" {
		t.Errorf("last call = %s", fake.calls[len(fake.calls)-1])
	}
	mapped := false
	for _, c := range fake.calls {
		if c == "map 4 64" {
			mapped = true
		}
	}
	if !mapped {
		t.Error("constant buffer not mapped with WRITE_DISCARD")
	}
	if fake.draws[len(fake.draws)-1].topology != d3d11.PRIMITIVE_TOPOLOGY_LINESTRIP {
		t.Error("line strip topology not used")
	}
}

func TestDrawNotReady(t *testing.T) {
	fake := newFakeD3D()
	b := New(fake.factory, fakeSurface{})
	if err := b.Draw(metadata.DrawCall{}); !errors.Is(err, core.ErrNotReady) {
		t.Errorf("err = %v", err)
	}
}

func TestBufferRewriteDiscards(t *testing.T) {
	b, fake, _ := newReadyBackend(t)
	buf := metadata.NewDynamicBuffer[d3d11.Buffer](bufferDevice{b}, metadata.BufferPurposeVertex, core.FaultPolicy{})

	if err := buf.Upload([]byte{1, 2, 3, 4}, 4); err != nil {
		t.Fatal(err)
	}
	handle, _ := buf.Handle()
	if err := buf.SetZero(2); err != nil {
		t.Fatal(err)
	}
	if got, _ := buf.Handle(); got != handle {
		t.Error("rewrite reallocated")
	}
	data := fake.buffers[handle.(*fakeObject)]
	if data[0] != 0 || data[1] != 0 || data[2] != 3 {
		t.Errorf("contents = %v", data)
	}
	if err := buf.Destroy(); !errors.Is(err, core.ErrUnfreedBuffer) {
		t.Errorf("Destroy = %v", err)
	}
	if handle.(*fakeObject).released != 1 {
		t.Error("destroyed buffer not released")
	}
}

func TestResizeRecreatesTargets(t *testing.T) {
	b, fake, _ := newReadyBackend(t)

	b.SetViewport(1024, 768)
	if len(fake.resizes) != 1 || fake.resizes[0] != [2]uint32{1024, 768} {
		t.Fatalf("resizes = %v", fake.resizes)
	}
	if fake.live("rtv") != 1 || fake.live("backbuffer") != 1 {
		t.Error("render target not recreated exactly once")
	}
	if vp := fake.viewports[len(fake.viewports)-1]; vp.Width != 1024 || vp.Height != 768 {
		t.Errorf("viewport = %+v", vp)
	}

	b.SetViewport(1024, 768)
	if len(fake.resizes) != 1 {
		t.Error("same size resized the swap chain again")
	}
}

func TestClearAndPresent(t *testing.T) {
	b, fake, _ := newReadyBackend(t)
	b.Clear()
	if fake.calls[len(fake.calls)-1] != "clear 0.0 0.0 1.0 1.0" {
		t.Errorf("clear = %s", fake.calls[len(fake.calls)-1])
	}
	b.SetClearColor(math.ColorRed)
	b.Clear()
	if fake.calls[len(fake.calls)-1] != "clear 1.0 0.0 0.0 1.0" {
		t.Errorf("clear = %s", fake.calls[len(fake.calls)-1])
	}
	if err := b.Present(); err != nil {
		t.Fatal(err)
	}
	if fake.presents[0] != 1 {
		t.Errorf("sync interval = %d with vsync", fake.presents[0])
	}
}

func TestClipSpaceCorrection(t *testing.T) {
	b := New(nil, nil)
	near := b.ClipSpaceCorrection().Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := b.ClipSpaceCorrection().Mul4x1(mgl32.Vec4{0, 0, 1, 1})
	if near.Z() != 0 || far.Z() != 1 {
		t.Errorf("depth range = %v..%v", near.Z(), far.Z())
	}
}

func TestShutdownReportsUnreleasedMesh(t *testing.T) {
	b, fake, _ := newReadyBackend(t)
	if _, err := b.CreateMeshBuffer([]uint16{0, 1, 2}, make([]metadata.Vertex, 3)); err != nil {
		t.Fatal(err)
	}

	err := b.Shutdown()
	if !errors.Is(err, core.ErrUnfreedBuffer) {
		t.Fatalf("Shutdown() error = %v, want ErrUnfreedBuffer", err)
	}
	if n := fake.live("buffer"); n != 0 {
		t.Errorf("%d buffers still live", n)
	}
}

func TestShutdownOrder(t *testing.T) {
	fake := newFakeD3D()
	fake.withDebug = true
	b := New(fake.factory, fakeSurface{})
	config := testConfig(nil)
	config.Debug = true
	if err := b.Initialize(config); err != nil {
		t.Fatal(err)
	}
	image, _ := metadata.NewImage(1, 1, make([]uint8, 4))
	if _, err := b.CreateTexture("leak", image); err != nil {
		t.Fatal(err)
	}
	fake.calls = nil

	if err := b.Shutdown(); err != nil {
		t.Fatal(err)
	}
	order := []string{"release texture", "release blend", "release rtv", "release swapchain", "release context", "report live objects", "release device"}
	last := -1
	for _, want := range order {
		idx := -1
		for i, c := range fake.calls {
			if c == want {
				idx = i
				break
			}
		}
		if idx < 0 || idx < last {
			t.Fatalf("%q out of order in %v", want, fake.calls)
		}
		last = idx
	}
	if b.State() != metadata.DeviceStateDestroyed {
		t.Errorf("state = %s", b.State())
	}
	if err := b.Shutdown(); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}
