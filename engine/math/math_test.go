package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAlignUp(t *testing.T) {
	tests := []struct{ v, a, want uint32 }{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 16, 32},
		{64, 16, 64},
	}
	for _, tt := range tests {
		if got := AlignUp(tt.v, tt.a); got != tt.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", tt.v, tt.a, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Fatal("Clamp out of range")
	}
}

func TestColorFromFloats(t *testing.T) {
	c := ColorFromFloats(1, 0, 0.5, 2)
	want := Color{255, 0, 128, 255}
	if c != want {
		t.Errorf("ColorFromFloats = %v, want %v", c, want)
	}
	f := ColorWhite.Floats()
	for i, v := range f {
		if v != 1 {
			t.Errorf("channel %d = %v, want 1", i, v)
		}
	}
}

func TestRectangleCorners(t *testing.T) {
	r := NewRectangle(1, 2, 3, 4)
	c := r.Corners()
	if c[0] != (mgl32.Vec2{1, 2}) || c[3] != (mgl32.Vec2{4, 6}) {
		t.Errorf("Corners() = %v", c)
	}
	if !r.Contains(mgl32.Vec2{2, 3}) || r.Contains(mgl32.Vec2{0, 0}) {
		t.Error("Contains gave the wrong answer")
	}
}

func TestTransformParentChain(t *testing.T) {
	parent := TransformFromPosition(mgl32.Vec3{10, 0, 0})
	child := TransformFromPosition(mgl32.Vec3{0, 5, 0})
	child.Parent = parent

	p := child.GetWorld().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !p.ApproxEqual(mgl32.Vec4{10, 5, 0, 1}) {
		t.Errorf("world origin = %v, want (10,5,0,1)", p)
	}

	child.SetScale(mgl32.Vec3{2, 2, 1})
	p = child.GetWorld().Mul4x1(mgl32.Vec4{1, 1, 0, 1})
	if !p.ApproxEqual(mgl32.Vec4{12, 7, 0, 1}) {
		t.Errorf("scaled point = %v, want (12,7,0,1)", p)
	}

	var nilT *Transform
	if nilT.GetWorld() != mgl32.Ident4() {
		t.Error("nil transform must be identity")
	}
}
