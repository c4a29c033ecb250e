package direct3d11

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/d3d11"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type Texture struct {
	metadata.RefCount
	backend *Backend
	name    string
	texture d3d11.Texture2D
	view    d3d11.ShaderResourceView
	size    math.Size2
}

func (t *Texture) Name() string     { return t.name }
func (t *Texture) Size() math.Size2 { return t.size }
func (t *Texture) Handle() uintptr  { return d3d11.Pointer(t.view) }

// CreateTexture creates an immutable RGBA8 texture initialised from image and
// a shader resource view over all of it.
func (b *Backend) CreateTexture(name string, image *metadata.Image) (metadata.Texture, error) {
	if image == nil {
		return nil, fmt.Errorf("texture %s has no image: %w", name, core.ErrDecode)
	}
	if !b.hasDevice() {
		return nil, core.ErrNotReady
	}

	desc := d3d11.Texture2DDesc{
		Width:      image.Width,
		Height:     image.Height,
		MipLevels:  1,
		ArraySize:  1,
		Format:     d3d11.DXGI_FORMAT_R8G8B8A8_UNORM,
		SampleDesc: d3d11.SampleDesc{Count: 1},
		Usage:      d3d11.USAGE_IMMUTABLE,
		BindFlags:  d3d11.BIND_SHADER_RESOURCE,
	}
	texture, err := b.device.CreateTexture2D(&desc, image.Pixels, image.Stride())
	if err != nil {
		return nil, b.faults.Fail(fmt.Errorf("could not create texture %s (%dx%d): %w: %w", name, image.Width, image.Height, core.ErrDevice, err))
	}
	view, err := b.device.CreateShaderResourceView(texture)
	if err != nil {
		texture.Release()
		return nil, b.faults.Fail(fmt.Errorf("could not create shader resource view for %s: %w: %w", name, core.ErrDevice, err))
	}

	t := &Texture{
		backend: b,
		name:    name,
		texture: texture,
		view:    view,
		size:    math.NewSize2(float32(image.Width), float32(image.Height)),
	}
	t.RefCount = metadata.NewRefCount(b.owner, t.destroy)
	b.track(t.ID(), released(t.destroy))
	core.LogDebug("created texture %s (%dx%d)", name, image.Width, image.Height)
	return t, nil
}

func (t *Texture) destroy() {
	if t.texture == nil {
		return
	}
	t.backend.untrack(t.ID())
	t.view.Release()
	t.texture.Release()
	t.view, t.texture = nil, nil
}
