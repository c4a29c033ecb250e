package loaders

import (
	"fmt"
	"io"
	"os"

	"github.com/spaghettifunk/prism/engine/core"
)

// BinaryLoader reads whole files: GLSL sources and compiled HLSL bytecode.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w: %w", path, core.ErrIO, err)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %w", path, core.ErrIO, err)
	}
	return buf, nil
}
