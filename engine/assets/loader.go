package assets

import (
	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Loader turns a resolved file path into a typed asset.
type Loader[T any] interface {
	Load(path string) (T, error)
}

var (
	_ Loader[[]byte]              = (*loaders.BinaryLoader)(nil)
	_ Loader[*metadata.Image]     = (*loaders.ImageLoader)(nil)
	_ Loader[*loaders.BitmapFont] = (*loaders.BitmapFontLoader)(nil)
)
