package metadata

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
)

/**
 * @brief Shared behaviour of every GPU resource: identity, the renderer that
 * created it and a reference count.
 */
type Resource interface {
	ID() uuid.UUID
	Owner() uuid.UUID
	Retain()
	/** @brief Drops one reference. Returns true when the GPU objects were released. */
	Release() bool
	References() int32
}

// RefCount implements Resource. The creator holds the first reference and
// destroy runs when the last one is dropped.
type RefCount struct {
	id      uuid.UUID
	owner   uuid.UUID
	count   int32
	destroy func()
}

func NewRefCount(owner uuid.UUID, destroy func()) RefCount {
	return RefCount{
		id:      uuid.New(),
		owner:   owner,
		count:   1,
		destroy: destroy,
	}
}

func (r *RefCount) ID() uuid.UUID     { return r.id }
func (r *RefCount) Owner() uuid.UUID  { return r.owner }
func (r *RefCount) References() int32 { return r.count }

func (r *RefCount) Retain() {
	if r.count <= 0 {
		core.LogWarn("retaining released resource %s", r.id)
		return
	}
	r.count++
}

func (r *RefCount) Release() bool {
	if r.count <= 0 {
		core.LogWarn("releasing resource %s more times than it was retained", r.id)
		return false
	}
	r.count--
	if r.count > 0 {
		return false
	}
	if r.destroy != nil {
		r.destroy()
	}
	return true
}
