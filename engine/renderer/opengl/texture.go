package opengl

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type Texture struct {
	metadata.RefCount
	backend *Backend
	name    string
	id      uint32
	size    math.Size2
}

func (t *Texture) Name() string     { return t.name }
func (t *Texture) Size() math.Size2 { return t.size }
func (t *Texture) Handle() uintptr  { return uintptr(t.id) }

// CreateTexture uploads image as an RGBA8 texture with linear filtering and
// repeat wrapping. The pixels are not kept.
func (b *Backend) CreateTexture(name string, image *metadata.Image) (metadata.Texture, error) {
	if image == nil {
		return nil, fmt.Errorf("texture %s has no image: %w", name, core.ErrDecode)
	}
	if !b.hasContext() {
		return nil, core.ErrNotReady
	}

	id := b.gl.GenTexture()
	if id == 0 {
		return nil, b.faults.Fail(fmt.Errorf("failed to create texture %s: %w", name, core.ErrDevice))
	}

	b.gl.ActiveTexture(glTexture0)
	b.gl.BindTexture(glTexture2D, id)
	b.gl.TexParameteri(glTexture2D, glTextureMinFilter, glLinear)
	b.gl.TexParameteri(glTexture2D, glTextureMagFilter, glLinear)
	b.gl.TexParameteri(glTexture2D, glTextureWrapS, glRepeat)
	b.gl.TexParameteri(glTexture2D, glTextureWrapT, glRepeat)
	b.gl.TexImage2D(glTexture2D, 0, glRGBA8, int32(image.Width), int32(image.Height), glRGBA, glUnsignedByte, image.Pixels)
	// restore whatever layer 0 had
	b.gl.BindTexture(glTexture2D, b.textures[0])

	if err := b.checkErrors("create texture " + name); err != nil {
		b.gl.DeleteTexture(id)
		return nil, b.faults.Fail(err)
	}

	t := &Texture{
		backend: b,
		name:    name,
		id:      id,
		size:    math.NewSize2(float32(image.Width), float32(image.Height)),
	}
	t.RefCount = metadata.NewRefCount(b.owner, t.destroy)
	b.track(t.ID(), released(t.destroy))
	core.LogDebug("created texture %s (%dx%d) id=%d", name, image.Width, image.Height, id)
	return t, nil
}

func (t *Texture) destroy() {
	if t.id == 0 {
		return
	}
	b := t.backend
	b.untrack(t.ID())
	if b.hasContext() {
		for layer, id := range b.textures {
			if id == t.id {
				b.textures[layer] = 0
			}
		}
		b.gl.DeleteTexture(t.id)
	}
	t.id = 0
}
