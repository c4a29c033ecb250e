package metadata

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
)

/** @brief What a GPU buffer is bound as. Fixed for the buffer's lifetime. */
type BufferPurpose uint8

const (
	BufferPurposeVertex BufferPurpose = iota
	BufferPurposeIndex
	BufferPurposeConstant
)

func (p BufferPurpose) String() string {
	switch p {
	case BufferPurposeIndex:
		return "index"
	case BufferPurposeConstant:
		return "constant"
	}
	return "vertex"
}

/**
 * @brief The three buffer operations a backend provides to DynamicBuffer.
 * A nil data slice means zero-fill.
 */
type BufferDevice[H comparable] interface {
	// AllocateBuffer creates a CPU-writable buffer of exactly size bytes.
	AllocateBuffer(purpose BufferPurpose, data []byte, size uint32) (H, error)
	// RewriteBuffer discards the previous contents of handle and writes size
	// bytes from the start.
	RewriteBuffer(handle H, purpose BufferPurpose, data []byte, size uint32) error
	FreeBuffer(handle H)
}

// DynamicBuffer owns one GPU buffer that grows on demand and is otherwise
// rewritten in place with discard semantics.
type DynamicBuffer[H comparable] struct {
	device   BufferDevice[H]
	purpose  BufferPurpose
	faults   core.FaultPolicy
	handle   H
	valid    bool
	capacity uint32
}

func NewDynamicBuffer[H comparable](device BufferDevice[H], purpose BufferPurpose, faults core.FaultPolicy) *DynamicBuffer[H] {
	return &DynamicBuffer[H]{
		device:  device,
		purpose: purpose,
		faults:  faults,
	}
}

func (b *DynamicBuffer[H]) Purpose() BufferPurpose { return b.purpose }
func (b *DynamicBuffer[H]) Capacity() uint32       { return b.capacity }
func (b *DynamicBuffer[H]) Valid() bool            { return b.valid }

// Handle returns the backing buffer, if any.
func (b *DynamicBuffer[H]) Handle() (H, bool) {
	return b.handle, b.valid
}

// Upload writes the first size bytes of data. A nil data zero-fills.
func (b *DynamicBuffer[H]) Upload(data []byte, size uint32) error {
	if size == 0 {
		return nil
	}
	if data != nil {
		if uint32(len(data)) < size {
			return fmt.Errorf("%s buffer upload of %d bytes from a %d byte slice", b.purpose, size, len(data))
		}
		data = data[:size]
	}

	if size > b.capacity {
		b.Free()
		handle, err := b.device.AllocateBuffer(b.purpose, data, size)
		if err != nil {
			return b.faults.Fail(fmt.Errorf("failed to create %s buffer of %d bytes: %w", b.purpose, size, err))
		}
		b.handle = handle
		b.valid = true
		b.capacity = size
		return nil
	}

	if err := b.device.RewriteBuffer(b.handle, b.purpose, data, size); err != nil {
		return b.faults.Fail(fmt.Errorf("failed to update %s buffer: %w", b.purpose, err))
	}
	return nil
}

func (b *DynamicBuffer[H]) SetZero(size uint32) error {
	return b.Upload(nil, size)
}

// Free releases the backing buffer. The next upload allocates again.
func (b *DynamicBuffer[H]) Free() {
	if !b.valid {
		return
	}
	b.device.FreeBuffer(b.handle)
	var zero H
	b.handle = zero
	b.valid = false
	b.capacity = 0
}

// Destroy is the teardown check: a buffer that still holds a GPU object is
// reported through the fault policy and then freed.
func (b *DynamicBuffer[H]) Destroy() error {
	if !b.valid {
		return nil
	}
	err := b.faults.Fail(fmt.Errorf("%s buffer of %d bytes: %w", b.purpose, b.capacity, core.ErrUnfreedBuffer))
	b.Free()
	return err
}
