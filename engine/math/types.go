package math

import "github.com/go-gl/mathgl/mgl32"

/** @brief Width and height of a 2d area, in pixels or world units. */
type Size2 struct {
	Width  float32
	Height float32
}

func NewSize2(width, height float32) Size2 {
	return Size2{Width: width, Height: height}
}

// IsZero reports whether either dimension is zero.
func (s Size2) IsZero() bool {
	return s.Width == 0 || s.Height == 0
}

/** @brief An axis aligned rectangle anchored at its bottom-left corner. */
type Rectangle struct {
	X, Y          float32
	Width, Height float32
}

func NewRectangle(x, y, width, height float32) Rectangle {
	return Rectangle{X: x, Y: y, Width: width, Height: height}
}

// Corners returns bottom-left, bottom-right, top-left and top-right.
func (r Rectangle) Corners() [4]mgl32.Vec2 {
	return [4]mgl32.Vec2{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X, r.Y + r.Height},
		{r.X + r.Width, r.Y + r.Height},
	}
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rectangle) Contains(p mgl32.Vec2) bool {
	return p.X() >= r.X && p.X() <= r.X+r.Width &&
		p.Y() >= r.Y && p.Y() <= r.Y+r.Height
}

/**
 * @brief An 8-bit per channel RGBA colour. This is the layout the vertex
 * colour attribute uses on the GPU, normalized to [0,1] by the input stage.
 */
type Color struct {
	R, G, B, A uint8
}

var (
	ColorWhite = Color{0xFF, 0xFF, 0xFF, 0xFF}
	ColorBlack = Color{0x00, 0x00, 0x00, 0xFF}
	ColorRed   = Color{0xFF, 0x00, 0x00, 0xFF}
	ColorGreen = Color{0x00, 0xFF, 0x00, 0xFF}
	ColorBlue  = Color{0x00, 0x00, 0xFF, 0xFF}
)

func NewColor(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ColorFromFloats converts normalized channels, clamping each to [0,1].
func ColorFromFloats(r, g, b, a float32) Color {
	conv := func(f float32) uint8 {
		return uint8(Clamp(f, 0, 1)*255 + 0.5)
	}
	return Color{conv(r), conv(g), conv(b), conv(a)}
}

// Floats returns the channels normalized to [0,1].
func (c Color) Floats() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// Vec4 returns the normalized colour as a shader constant.
func (c Color) Vec4() mgl32.Vec4 {
	f := c.Floats()
	return mgl32.Vec4{f[0], f[1], f[2], f[3]}
}
