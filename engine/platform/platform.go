package platform

import (
	"fmt"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/containers"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const eventBacklog = 256

var startTime float64 = 0

// glfw callbacks only carry the window, so they find their platform here.
var platforms = map[*glfw.Window]*Platform{}

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type WindowConfig struct {
	Title      string
	X, Y       int
	Width      int
	Height     int
	Fullscreen bool
	Resizable  bool
	// Driver selects the client API: an OpenGL 4.1 core context or none for
	// Direct3D11, which presents through its own swap chain.
	Driver metadata.Driver
	VSync  bool
}

// Locator converts window pixels to world coordinates.
type Locator func(position mgl32.Vec2) mgl32.Vec2

// Platform owns the native window. It implements renderer.Surface and turns
// window callbacks into core.Events.
type Platform struct {
	window    *glfw.Window
	driver    metadata.Driver
	events    *containers.RingQueue[core.Event]
	locate    Locator
	modifiers core.Modifiers
}

func New() *Platform {
	return &Platform{
		events: containers.NewRingQueue[core.Event](eventBacklog),
		locate: func(p mgl32.Vec2) mgl32.Vec2 { return p },
	}
}

func (p *Platform) Startup(config WindowConfig) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, boolHint(config.Resizable))
	switch config.Driver {
	case metadata.DriverOpenGL:
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	default:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}

	var monitor *glfw.Monitor
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}
	window, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create window: %w", err)
	}
	p.window = window
	p.driver = config.Driver
	platforms[window] = p

	if config.Driver == metadata.DriverOpenGL {
		window.MakeContextCurrent()
		if config.VSync {
			glfw.SwapInterval(1)
		} else {
			glfw.SwapInterval(0)
		}
	}

	window.SetKeyCallback(keyCallback)
	window.SetMouseButtonCallback(mouseButtonCallback)
	window.SetCursorPosCallback(cursorPosCallback)
	window.SetScrollCallback(scrollCallback)
	window.SetFramebufferSizeCallback(framebufferSizeCallback)
	window.SetCloseCallback(closeCallback)
	if !config.Fullscreen {
		window.SetPos(config.X, config.Y)
	}
	window.Show()

	startTime = glfw.GetTime()
	core.LogInfo("created %dx%d window for %s", config.Width, config.Height, config.Driver)
	return nil
}

func (p *Platform) Shutdown() error {
	if p.window != nil {
		delete(platforms, p.window)
		p.window.Destroy()
		p.window = nil
	}
	glfw.Terminate()
	return nil
}

// SetLocator installs the conversion used for mouse positions.
func (p *Platform) SetLocator(locate Locator) {
	if locate != nil {
		p.locate = locate
	}
}

// PumpMessages processes pending window messages. It returns false once the
// window wants to close.
func (p *Platform) PumpMessages() bool {
	if p.window == nil {
		return false
	}
	glfw.PollEvents()
	return !p.window.ShouldClose()
}

// PollEvent pops the oldest queued event.
func (p *Platform) PollEvent() (core.Event, bool) {
	event, err := p.events.Dequeue()
	if err != nil {
		return core.Event{}, false
	}
	return event, true
}

func (p *Platform) push(event core.Event) {
	if err := p.events.Enqueue(event); err != nil {
		core.LogWarn("dropping %s event: %s", event.Type, err)
	}
}

func (p *Platform) SetTitle(title string) {
	if p.window != nil {
		p.window.SetTitle(title)
	}
}

// SwapBuffers presents the OpenGL back buffer. Direct3D11 presents through
// its swap chain, so it is a no-op there.
func (p *Platform) SwapBuffers() {
	if p.window != nil && p.driver == metadata.DriverOpenGL {
		p.window.SwapBuffers()
	}
}

func (p *Platform) NativeHandle() uintptr {
	if p.window == nil {
		return 0
	}
	return nativeHandle(p.window)
}

func (p *Platform) FramebufferSize() (int, int) {
	if p.window == nil {
		return 0, 0
	}
	return p.window.GetFramebufferSize()
}

func (p *Platform) cursorPosition() mgl32.Vec2 {
	x, y := p.window.GetCursorPos()
	return p.locate(mgl32.Vec2{float32(x), float32(y)})
}

// GetAbsoluteTime returns the seconds since the window was created.
func GetAbsoluteTime() float64 {
	return glfw.GetTime() - startTime
}

func Sleep(ms float64) {
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
}

func boolHint(value bool) int {
	if value {
		return glfw.True
	}
	return glfw.False
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	p, ok := platforms[w]
	if !ok {
		return
	}
	p.modifiers = translateModifiers(mods)
	event := core.Event{Key: translateKey(key), Modifiers: p.modifiers}
	switch action {
	case glfw.Press, glfw.Repeat:
		event.Type = core.EventKeyDown
	case glfw.Release:
		event.Type = core.EventKeyUp
	default:
		return
	}
	p.push(event)
}

func mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	p, ok := platforms[w]
	if !ok {
		return
	}
	b, ok := translateButton(button)
	if !ok {
		return
	}
	p.modifiers = translateModifiers(mods)
	event := core.Event{Type: core.EventMouseUp, Button: b, Position: p.cursorPosition(), Modifiers: p.modifiers}
	if action == glfw.Press {
		event.Type = core.EventMouseDown
	}
	p.push(event)
}

func cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p, ok := platforms[w]
	if !ok {
		return
	}
	p.push(core.Event{
		Type:      core.EventMouseMove,
		Position:  p.locate(mgl32.Vec2{float32(xpos), float32(ypos)}),
		Modifiers: p.modifiers,
	})
}

func scrollCallback(w *glfw.Window, xoff, yoff float64) {
	if p, ok := platforms[w]; ok {
		p.push(core.Event{Type: core.EventMouseScroll, Position: mgl32.Vec2{float32(xoff), float32(yoff)}, Modifiers: p.modifiers})
	}
}

func framebufferSizeCallback(w *glfw.Window, width, height int) {
	if p, ok := platforms[w]; ok {
		p.push(core.Event{Type: core.EventResize, Size: [2]int{width, height}})
	}
}

func closeCallback(w *glfw.Window) {
	if p, ok := platforms[w]; ok {
		p.push(core.Event{Type: core.EventQuit})
	}
}
