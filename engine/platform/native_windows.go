//go:build windows

package platform

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// nativeHandle returns the HWND the Direct3D11 swap chain presents to.
func nativeHandle(window *glfw.Window) uintptr {
	return uintptr(unsafe.Pointer(window.GetWin32Window()))
}
