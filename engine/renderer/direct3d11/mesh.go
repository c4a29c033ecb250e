package direct3d11

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/d3d11"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// bufferDevice gives metadata.DynamicBuffer dynamic, CPU-writable D3D11
// buffers. Rewrites map with WRITE_DISCARD.
type bufferDevice struct {
	backend *Backend
}

func bindFlags(purpose metadata.BufferPurpose) uint32 {
	switch purpose {
	case metadata.BufferPurposeIndex:
		return d3d11.BIND_INDEX_BUFFER
	case metadata.BufferPurposeConstant:
		return d3d11.BIND_CONSTANT_BUFFER
	}
	return d3d11.BIND_VERTEX_BUFFER
}

func (d bufferDevice) AllocateBuffer(purpose metadata.BufferPurpose, data []byte, size uint32) (d3d11.Buffer, error) {
	if data == nil {
		data = make([]byte, size)
	}
	buffer, err := d.backend.device.CreateBuffer(&d3d11.BufferDesc{
		ByteWidth:      size,
		Usage:          d3d11.USAGE_DYNAMIC,
		BindFlags:      bindFlags(purpose),
		CPUAccessFlags: d3d11.CPU_ACCESS_WRITE,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDevice, err)
	}
	return buffer, nil
}

func (d bufferDevice) RewriteBuffer(buffer d3d11.Buffer, purpose metadata.BufferPurpose, data []byte, size uint32) error {
	ctx := d.backend.context
	mapped, err := ctx.Map(buffer, d3d11.MAP_WRITE_DISCARD, size)
	if err != nil {
		return fmt.Errorf("failed to lock %s buffer: %w: %w", purpose, core.ErrDevice, err)
	}
	if data == nil {
		clear(mapped)
	} else {
		copy(mapped, data[:size])
	}
	ctx.Unmap(buffer)
	return nil
}

func (d bufferDevice) FreeBuffer(buffer d3d11.Buffer) {
	if buffer != nil {
		buffer.Release()
	}
}

// MeshBuffer holds a vertex and an index buffer sized to its geometry.
type MeshBuffer struct {
	metadata.RefCount
	backend     *Backend
	vertices    *metadata.DynamicBuffer[d3d11.Buffer]
	indices     *metadata.DynamicBuffer[d3d11.Buffer]
	indexCount  uint32
	vertexCount uint32
}

func (m *MeshBuffer) IndexCount() uint32  { return m.indexCount }
func (m *MeshBuffer) VertexCount() uint32 { return m.vertexCount }

func (b *Backend) CreateMeshBuffer(indices []uint16, vertices []metadata.Vertex) (metadata.MeshBuffer, error) {
	if err := metadata.ValidateMesh(indices, vertices); err != nil {
		return nil, err
	}
	if !b.hasDevice() {
		return nil, core.ErrNotReady
	}

	m := &MeshBuffer{
		backend:     b,
		vertices:    metadata.NewDynamicBuffer[d3d11.Buffer](bufferDevice{b}, metadata.BufferPurposeVertex, b.faults),
		indices:     metadata.NewDynamicBuffer[d3d11.Buffer](bufferDevice{b}, metadata.BufferPurposeIndex, b.faults),
		indexCount:  uint32(len(indices)),
		vertexCount: uint32(len(vertices)),
	}
	raw := metadata.VertexBytes(vertices)
	if err := m.vertices.Upload(raw, uint32(len(raw))); err != nil {
		return nil, err
	}
	rawIndices := metadata.IndexBytes(indices)
	if err := m.indices.Upload(rawIndices, uint32(len(rawIndices))); err != nil {
		m.vertices.Free()
		return nil, err
	}

	m.RefCount = metadata.NewRefCount(b.owner, m.destroy)
	b.track(m.ID(), m.abandon)
	return m, nil
}

// abandon tears down a mesh that was never released, reporting its buffers
// as unfreed.
func (m *MeshBuffer) abandon() error {
	m.backend.untrack(m.ID())
	return errors.Join(m.vertices.Destroy(), m.indices.Destroy())
}

func (m *MeshBuffer) destroy() {
	m.backend.untrack(m.ID())
	m.vertices.Free()
	m.indices.Free()
}
