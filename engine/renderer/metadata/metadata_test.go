package metadata

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
)

func TestVertexLayout(t *testing.T) {
	var v Vertex
	if unsafe.Sizeof(v) != VertexSize {
		t.Errorf("sizeof(Vertex) = %d, want %d", unsafe.Sizeof(v), VertexSize)
	}
	if unsafe.Offsetof(v.Position) != VertexPositionOffset ||
		unsafe.Offsetof(v.Color) != VertexColorOffset ||
		unsafe.Offsetof(v.TexCoord) != VertexTexCoordOffset {
		t.Errorf("offsets = %d/%d/%d", unsafe.Offsetof(v.Position), unsafe.Offsetof(v.Color), unsafe.Offsetof(v.TexCoord))
	}

	vertices := []Vertex{
		NewVertex(mgl32.Vec3{1, 2, 3}, math.ColorRed, mgl32.Vec2{0, 1}),
		NewVertex(mgl32.Vec3{}, math.ColorBlue, mgl32.Vec2{}),
	}
	raw := VertexBytes(vertices)
	if len(raw) != 2*VertexSize {
		t.Fatalf("len(VertexBytes) = %d", len(raw))
	}
	if raw[VertexColorOffset] != 0xFF || raw[VertexSize+VertexColorOffset+2] != 0xFF {
		t.Error("colour bytes not at offset 12")
	}
	if VertexBytes(nil) != nil || IndexBytes(nil) != nil {
		t.Error("empty slices must map to nil")
	}
	if len(IndexBytes([]uint16{0, 1, 2})) != 6 {
		t.Error("IndexBytes length")
	}
}

func TestRefCount(t *testing.T) {
	owner := uuid.New()
	destroyed := 0
	r := NewRefCount(owner, func() { destroyed++ })
	if r.Owner() != owner || r.ID() == uuid.Nil {
		t.Fatal("identity not set")
	}
	r.Retain()
	if r.Release() {
		t.Error("released with a reference left")
	}
	if !r.Release() {
		t.Error("last release did not destroy")
	}
	if r.Release() || destroyed != 1 {
		t.Errorf("destroyed %d times, want 1", destroyed)
	}
}

func TestValidateMesh(t *testing.T) {
	vertices := make([]Vertex, 3)
	if err := ValidateMesh([]uint16{0, 1, 2}, vertices); err != nil {
		t.Errorf("ValidateMesh() = %v", err)
	}
	if err := ValidateMesh([]uint16{0, 3}, vertices); err == nil {
		t.Error("out of range index accepted")
	}
	if err := ValidateMesh(nil, make([]Vertex, MaxMeshVertices+1)); !errors.Is(err, core.ErrTooManyVertices) {
		t.Errorf("ValidateMesh() = %v, want ErrTooManyVertices", err)
	}
}

func TestNewImage(t *testing.T) {
	img, err := NewImage(64, 64, make([]uint8, 64*64*4))
	if err != nil {
		t.Fatal(err)
	}
	if img.Stride() != 256 {
		t.Errorf("Stride() = %d", img.Stride())
	}
	if _, err := NewImage(2, 2, make([]uint8, 3)); !errors.Is(err, core.ErrDecode) {
		t.Errorf("NewImage() = %v, want ErrDecode", err)
	}
}

func TestParseDriver(t *testing.T) {
	tests := map[string]Driver{
		"":           DriverNone,
		"OpenGL":     DriverOpenGL,
		"d3d11":      DriverDirect3D11,
		"direct3d11": DriverDirect3D11,
	}
	for in, want := range tests {
		got, err := ParseDriver(in)
		if err != nil || got != want {
			t.Errorf("ParseDriver(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseDriver("vulkan"); err == nil {
		t.Error("ParseDriver accepted vulkan")
	}
}
