package opengl

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// bufferDevice gives metadata.DynamicBuffer access to GL buffer objects.
// Rewrites orphan the old storage before writing.
type bufferDevice struct {
	backend *Backend
}

func bufferTarget(purpose metadata.BufferPurpose) uint32 {
	if purpose == metadata.BufferPurposeIndex {
		return glElementArrayBuffer
	}
	return glArrayBuffer
}

func (d bufferDevice) AllocateBuffer(purpose metadata.BufferPurpose, data []byte, size uint32) (uint32, error) {
	gl := d.backend.gl
	id := gl.GenBuffer()
	if id == 0 {
		return 0, fmt.Errorf("glGenBuffers returned 0: %w", core.ErrDevice)
	}
	target := bufferTarget(purpose)
	gl.BindBuffer(target, id)
	if data == nil {
		data = make([]byte, size)
	}
	gl.BufferData(target, int(size), data, glDynamicDraw)
	if err := d.backend.checkErrors("allocate " + purpose.String() + " buffer"); err != nil {
		gl.DeleteBuffer(id)
		return 0, err
	}
	return id, nil
}

func (d bufferDevice) RewriteBuffer(id uint32, purpose metadata.BufferPurpose, data []byte, size uint32) error {
	gl := d.backend.gl
	target := bufferTarget(purpose)
	gl.BindBuffer(target, id)
	if data == nil {
		gl.BufferData(target, int(size), make([]byte, size), glDynamicDraw)
	} else {
		gl.BufferData(target, int(size), nil, glDynamicDraw)
		gl.BufferSubData(target, 0, int(size), data)
	}
	return d.backend.checkErrors("update " + purpose.String() + " buffer")
}

func (d bufferDevice) FreeBuffer(id uint32) {
	if d.backend.hasContext() {
		d.backend.gl.DeleteBuffer(id)
	}
}

// MeshBuffer is a vertex array object with its vertex and index buffers.
type MeshBuffer struct {
	metadata.RefCount
	backend     *Backend
	vao         uint32
	vertices    *metadata.DynamicBuffer[uint32]
	indices     *metadata.DynamicBuffer[uint32]
	indexCount  uint32
	vertexCount uint32
}

func (m *MeshBuffer) IndexCount() uint32  { return m.indexCount }
func (m *MeshBuffer) VertexCount() uint32 { return m.vertexCount }

func (b *Backend) CreateMeshBuffer(indices []uint16, vertices []metadata.Vertex) (metadata.MeshBuffer, error) {
	if err := metadata.ValidateMesh(indices, vertices); err != nil {
		return nil, err
	}
	if !b.hasContext() {
		return nil, core.ErrNotReady
	}

	vao := b.gl.GenVertexArray()
	if vao == 0 {
		return nil, b.faults.Fail(fmt.Errorf("failed to create vertex array: %w", core.ErrDevice))
	}
	m := &MeshBuffer{
		backend:     b,
		vao:         vao,
		vertices:    metadata.NewDynamicBuffer[uint32](bufferDevice{b}, metadata.BufferPurposeVertex, b.faults),
		indices:     metadata.NewDynamicBuffer[uint32](bufferDevice{b}, metadata.BufferPurposeIndex, b.faults),
		indexCount:  uint32(len(indices)),
		vertexCount: uint32(len(vertices)),
	}

	b.gl.BindVertexArray(vao)
	err := m.upload(indices, vertices)
	b.gl.BindVertexArray(0)
	if err != nil {
		m.free()
		return nil, err
	}

	m.RefCount = metadata.NewRefCount(b.owner, m.destroy)
	b.track(m.ID(), m.abandon)
	return m, nil
}

// upload runs with the vertex array bound so it captures the attribute
// layout and the index buffer binding.
func (m *MeshBuffer) upload(indices []uint16, vertices []metadata.Vertex) error {
	gl := m.backend.gl
	raw := metadata.VertexBytes(vertices)
	if err := m.vertices.Upload(raw, uint32(len(raw))); err != nil {
		return err
	}
	if len(raw) > 0 {
		gl.EnableVertexAttribArray(attribPosition)
		gl.VertexAttribPointer(attribPosition, 3, glFloat, false, metadata.VertexSize, metadata.VertexPositionOffset)
		gl.EnableVertexAttribArray(attribColor)
		gl.VertexAttribPointer(attribColor, 4, glUnsignedByte, true, metadata.VertexSize, metadata.VertexColorOffset)
		gl.EnableVertexAttribArray(attribTexCoord)
		gl.VertexAttribPointer(attribTexCoord, 2, glFloat, false, metadata.VertexSize, metadata.VertexTexCoordOffset)
	}
	rawIndices := metadata.IndexBytes(indices)
	return m.indices.Upload(rawIndices, uint32(len(rawIndices)))
}

func (m *MeshBuffer) free() {
	m.vertices.Free()
	m.indices.Free()
	if m.vao != 0 && m.backend.hasContext() {
		m.backend.gl.DeleteVertexArray(m.vao)
	}
	m.vao = 0
}

// abandon tears down a mesh that was never released, reporting its buffers
// as unfreed.
func (m *MeshBuffer) abandon() error {
	m.backend.untrack(m.ID())
	err := errors.Join(m.vertices.Destroy(), m.indices.Destroy())
	m.free()
	return err
}

func (m *MeshBuffer) destroy() {
	m.backend.untrack(m.ID())
	m.free()
}
