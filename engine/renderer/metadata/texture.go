package metadata

import "github.com/spaghettifunk/prism/engine/math"

/**
 * @brief A 2d RGBA8 texture living on the GPU. The pixel data is uploaded once
 * at creation; no CPU-side copy is kept.
 */
type Texture interface {
	Resource
	/** @brief The registry name (usually the file it was loaded from). */
	Name() string
	/** @brief Size in pixels of the decoded image. */
	Size() math.Size2
	/** @brief The backend object: a GL texture name or a shader resource view pointer. */
	Handle() uintptr
}
