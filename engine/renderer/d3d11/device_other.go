//go:build !windows

package d3d11

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
)

func CreateDevice(config SwapChainConfig) (*Devices, error) {
	return nil, fmt.Errorf("direct3d11: %w", core.ErrUnsupported)
}

func MessageBox(title, message string) {}

func Pointer(o Object) uintptr { return 0 }
