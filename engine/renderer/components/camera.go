package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/math"
)

const (
	minZoom float32 = 0.01
	maxZoom float32 = 100
)

/**
 * @brief A 2D camera looking down the z axis. The renderer
 * applies its transform between the projection and every
 * model transform.
 */
type Camera struct {
	/**
	 * @brief The world position the camera is centered on.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	position mgl32.Vec2
	/** @brief Rotation around the z axis, in radians. */
	rotation float32
	/** @brief Scale factor, 1 shows world units as pixels. */
	zoom float32
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	isDirty bool
	/** @brief The cached view matrix. */
	view mgl32.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.position = mgl32.Vec2{}
	c.rotation = 0
	c.zoom = 1
	c.isDirty = false
	c.view = mgl32.Ident4()
}

func (c *Camera) Position() mgl32.Vec2 {
	return c.position
}

func (c *Camera) SetPosition(position mgl32.Vec2) {
	c.position = position
	c.isDirty = true
}

// Move pans the camera by delta world units.
func (c *Camera) Move(delta mgl32.Vec2) {
	c.position = c.position.Add(delta)
	c.isDirty = true
}

func (c *Camera) Rotation() float32 {
	return c.rotation
}

func (c *Camera) SetRotation(angle float32) {
	c.rotation = angle
	c.isDirty = true
}

func (c *Camera) Rotate(amount float32) {
	c.SetRotation(c.rotation + amount)
}

func (c *Camera) Zoom() float32 {
	return c.zoom
}

// SetZoom clamps zoom to [0.01, 100].
func (c *Camera) SetZoom(zoom float32) {
	c.zoom = math.Clamp(zoom, minZoom, maxZoom)
	c.isDirty = true
}

// CameraTransform returns the inverse of the camera's own placement, so the
// camera position ends up at the center of the screen.
func (c *Camera) CameraTransform() mgl32.Mat4 {
	if c.isDirty {
		scale := mgl32.Scale3D(c.zoom, c.zoom, 1)
		rotation := mgl32.HomogRotate3DZ(-c.rotation)
		translation := mgl32.Translate3D(-c.position.X(), -c.position.Y(), 0)

		c.view = scale.Mul4(rotation).Mul4(translation)
		c.isDirty = false
	}
	return c.view
}
