package testbed

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
)

const (
	spriteTexture = "textures/prism.png"
	labelFont     = "fonts/pixel.fnt"

	// world units per second
	cameraSpeed float32 = 300
	// radians per second
	spinSpeed float32 = 0.8
	margin    float32 = 20
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	WorldCamera *components.Camera

	width  uint32
	height uint32

	sprite *renderer.Sprite
	label  *renderer.Text
	stats  *renderer.Text

	held   map[core.KeyCode]bool
	angle  float32
	cursor mgl32.Vec2
	fps    float64
	frames float64
}

var panKeys = map[core.KeyCode]mgl32.Vec2{
	core.KEY_LEFT:  {-1, 0},
	core.KEY_RIGHT: {1, 0},
	core.KEY_UP:    {0, 1},
	core.KEY_DOWN:  {0, -1},
}

func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	if config == nil {
		return nil, fmt.Errorf("testbed needs an application config")
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				WorldCamera: components.NewCamera(),
				held:        make(map[core.KeyCode]bool),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.Renderer == nil || g.Assets == nil {
		return fmt.Errorf("the engine did not hand over its renderer and assets")
	}
	state := g.state()
	g.Renderer.SetCamera(state.WorldCamera)

	sprite, err := g.Renderer.NewSprite(spriteTexture)
	if err != nil {
		return err
	}
	state.sprite = sprite

	font, err := g.Assets.LoadBitmapFont(labelFont)
	if err != nil {
		// text is decoration, keep going without it
		core.LogWarn("no label font: %s", err)
	} else {
		if state.label, err = g.Renderer.NewText(font, strings.ToUpper(fmt.Sprintf("prism - %s", g.Renderer.Driver())), math.ColorWhite); err != nil {
			return err
		}
		if state.stats, err = g.Renderer.NewText(font, "FPS: 0", math.NewColor(0xFF, 0xD0, 0x40, 0xFF)); err != nil {
			return err
		}
	}

	g.Events.Register(core.EventKeyDown, g.onKey)
	g.Events.Register(core.EventKeyUp, g.onKey)
	g.Events.Register(core.EventMouseMove, g.onMouseMove)
	g.Events.Register(core.EventMouseScroll, g.onScroll)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	dt := float32(deltaTime)

	if pan := panDirection(state.held); pan.Len() > 0 {
		state.WorldCamera.Move(pan.Normalize().Mul(cameraSpeed * dt / state.WorldCamera.Zoom()))
	}
	state.angle += spinSpeed * dt
	if state.sprite != nil {
		state.sprite.Transform.SetRotationZ(state.angle)
	}

	// refresh the counter twice a second
	state.frames++
	state.fps += deltaTime
	if state.fps >= 0.5 && state.stats != nil {
		state.stats.SetText(fmt.Sprintf("FPS: %.0f", state.frames/state.fps))
		state.frames, state.fps = 0, 0
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	state := g.state()
	r := g.Renderer

	if state.sprite != nil {
		state.sprite.Draw()
		size := state.sprite.Size()
		bounds := math.NewRectangle(-size.Width/2-4, -size.Height/2-4, size.Width+8, size.Height+8)
		r.DrawRectangle(bounds, math.ColorGreen, mgl32.Ident4())
	}
	r.DrawLine(mgl32.Vec2{}, state.cursor, math.ColorRed, mgl32.Ident4())

	// labels are drawn in screen space, without the camera
	r.SetCamera(nil)
	y := margin
	for _, text := range []*renderer.Text{state.label, state.stats} {
		if text == nil {
			continue
		}
		text.Transform.SetPosition(g.screenAnchor(margin, y))
		text.Draw()
		y += text.Size().Height + margin/2
	}
	r.SetCamera(state.WorldCamera)
	return nil
}

// screenAnchor converts pixels from the top-left corner to the centered,
// y-up coordinates of the projection.
func (g *TestGame) screenAnchor(x, y float32) mgl32.Vec3 {
	state := g.state()
	return mgl32.Vec3{x - float32(state.width)/2, float32(state.height)/2 - y, 0}
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	if state.sprite != nil {
		state.sprite.Release()
	}
	if state.label != nil {
		state.label.Release()
	}
	if state.stats != nil {
		state.stats.Release()
	}
	return nil
}

func (g *TestGame) onKey(event core.Event) bool {
	state := g.state()
	if event.Key == core.KEY_SPACE {
		if event.Type == core.EventKeyDown {
			state.WorldCamera.Reset()
		}
		return true
	}
	if _, ok := panKeys[event.Key]; !ok {
		return false
	}
	state.held[event.Key] = event.Type == core.EventKeyDown
	return true
}

func panDirection(held map[core.KeyCode]bool) mgl32.Vec2 {
	var pan mgl32.Vec2
	for key, direction := range panKeys {
		if held[key] {
			pan = pan.Add(direction)
		}
	}
	return pan
}

func (g *TestGame) onMouseMove(event core.Event) bool {
	g.state().cursor = event.Position
	return false
}

func (g *TestGame) onScroll(event core.Event) bool {
	camera := g.state().WorldCamera
	camera.SetZoom(camera.Zoom() * (1 + 0.1*event.Position.Y()))
	return true
}
