//go:build !windows

package platform

import "github.com/go-gl/glfw/v3.3/glfw"

func nativeHandle(window *glfw.Window) uintptr {
	return 0
}
