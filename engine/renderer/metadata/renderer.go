package metadata

import (
	"fmt"
	"strings"
)

/** @brief The graphics API a renderer instance is bound to. Chosen once at construction. */
type Driver uint8

const (
	/** @brief No rendering. Used by headless tools. */
	DriverNone Driver = iota
	/** @brief OpenGL 4.1 core profile. */
	DriverOpenGL
	/** @brief Direct3D 11. Windows only. */
	DriverDirect3D11
)

func (d Driver) String() string {
	switch d {
	case DriverOpenGL:
		return "opengl"
	case DriverDirect3D11:
		return "direct3d11"
	}
	return "none"
}

// ParseDriver maps a configuration value to a driver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return DriverNone, nil
	case "opengl", "gl":
		return DriverOpenGL, nil
	case "direct3d11", "d3d11":
		return DriverDirect3D11, nil
	}
	return DriverNone, fmt.Errorf("unknown rendering driver %q", s)
}

/**
 * @brief Lifecycle of a backend device.
 * Uninitialized -> DeviceCreated -> Ready -> Destroyed.
 */
type DeviceState uint8

const (
	DeviceStateUninitialized DeviceState = iota
	/** @brief The device and context exist but fixed state or built-in shaders do not. */
	DeviceStateDeviceCreated
	/** @brief Everything needed to draw is in place. */
	DeviceStateReady
	DeviceStateDestroyed
)

func (s DeviceState) String() string {
	switch s {
	case DeviceStateDeviceCreated:
		return "device_created"
	case DeviceStateReady:
		return "ready"
	case DeviceStateDestroyed:
		return "destroyed"
	}
	return "uninitialized"
}

const (
	/** @brief Number of texture slots a draw call can sample from. */
	TextureLayers = 8

	/** @brief Registry name of the built-in textured shader. */
	ShaderTextureName = "shaderTexture"
	/** @brief Registry name of the built-in flat colour shader. */
	ShaderColorName = "shaderColor"
	/** @brief Vertex constant that receives projection * camera * model. */
	TransformConstantName = "modelViewProj"
)
