package metadata

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
)

// MaxMeshVertices is the ceiling imposed by 16-bit indices.
const MaxMeshVertices = 1 << 16

/**
 * @brief An immutable vertex + index buffer pair. Replacing the geometry
 * means creating a new mesh buffer.
 */
type MeshBuffer interface {
	Resource
	IndexCount() uint32
	VertexCount() uint32
}

// ValidateMesh rejects geometry that 16-bit indices cannot address.
func ValidateMesh(indices []uint16, vertices []Vertex) error {
	if len(vertices) > MaxMeshVertices {
		return fmt.Errorf("%d vertices: %w", len(vertices), core.ErrTooManyVertices)
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return fmt.Errorf("index %d at %d is out of range for %d vertices", idx, i, len(vertices))
		}
	}
	return nil
}
