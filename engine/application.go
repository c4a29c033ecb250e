package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX int `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY int `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth int `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight int `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name       string `toml:"name"`
	Fullscreen bool   `toml:"fullscreen"`
	Resizable  bool   `toml:"resizable"`
	LogLevel   string `toml:"log_level"`

	Renderer RendererSettings `toml:"renderer"`
	Assets   AssetSettings    `toml:"assets"`
}

type RendererSettings struct {
	// "opengl" or "direct3d11"
	Driver     string     `toml:"driver"`
	ClearColor [4]float32 `toml:"clear_color"`
	VSync      bool       `toml:"vsync"`
	// Enables the D3D11 debug layer.
	Debug bool `toml:"debug"`
	// "abort" or "return"; defaults to abort on Direct3D11 only.
	DeviceErrors string `toml:"device_errors"`
	ShaderDir    string `toml:"shader_dir"`
}

type AssetSettings struct {
	ResourcePaths []string `toml:"resource_paths"`
	HotReload     bool     `toml:"hot_reload"`
}

// DefaultApplicationConfig is what a missing config file yields.
func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		Name:        "Prism",
		Resizable:   true,
		LogLevel:    "info",
		Renderer: RendererSettings{
			Driver:     metadata.DriverOpenGL.String(),
			ClearColor: [4]float32{0, 0, 0, 1},
			VSync:      true,
		},
		Assets: AssetSettings{
			ResourcePaths: []string{"assets"},
		},
	}
}

// LoadApplicationConfig decodes the TOML file at path over the defaults. A
// missing file is not an error.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		core.LogWarn("config file %s not found, using defaults", path)
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %w", path, core.ErrIO, err)
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w: %w", path, core.ErrDecode, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks the enumerated settings and fills zero sizes.
func (c *ApplicationConfig) Validate() error {
	if c.StartWidth <= 0 {
		c.StartWidth = 1280
	}
	if c.StartHeight <= 0 {
		c.StartHeight = 720
	}
	if _, err := c.Driver(); err != nil {
		return err
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.DeviceErrorPolicy(); err != nil {
		return err
	}
	return nil
}

func (c *ApplicationConfig) Driver() (metadata.Driver, error) {
	return metadata.ParseDriver(c.Renderer.Driver)
}

// DeviceErrorPolicy falls back to aborting on Direct3D11 and returning the
// failure on OpenGL.
func (c *ApplicationConfig) DeviceErrorPolicy() (core.DeviceErrorPolicy, error) {
	fallback := core.DeviceErrorReturnFailure
	if driver, err := c.Driver(); err == nil && driver == metadata.DriverDirect3D11 {
		fallback = core.DeviceErrorAbort
	}
	return core.ParseDeviceErrorPolicy(c.Renderer.DeviceErrors, fallback)
}

func (c *ApplicationConfig) ClearColor() math.Color {
	cc := c.Renderer.ClearColor
	return math.ColorFromFloats(cc[0], cc[1], cc[2], cc[3])
}

func (c *ApplicationConfig) Size() math.Size2 {
	return math.NewSize2(float32(c.StartWidth), float32(c.StartHeight))
}
