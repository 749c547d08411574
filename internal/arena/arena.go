// Package arena implements a generational arena: slot-based storage with
// stable handles. A handle pairs a slot index with a generation counter, so
// a handle to a removed entity is detectably stale instead of silently
// aliasing whatever reuses the slot.
package arena

// Handle identifies an entity in an Arena. The zero Handle is never valid:
// generations start at 1.
type Handle struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether h is the zero (never-issued) handle.
func (h Handle) IsZero() bool {
	return h.Gen == 0
}

// Less orders handles by index, then generation. Used as the deterministic
// tie-break everywhere the simulation must pick between equal candidates.
func (h Handle) Less(o Handle) bool {
	if h.Index != o.Index {
		return h.Index < o.Index
	}
	return h.Gen < o.Gen
}

type slot[T any] struct {
	value    T
	gen      uint32
	occupied bool
}

// Arena stores values of type T addressed by stable Handles.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// New creates an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = v
		s.gen++
		s.occupied = true
		a.live++
		return Handle{Index: idx, Gen: s.gen}
	}
	a.slots = append(a.slots, slot[T]{value: v, gen: 1, occupied: true})
	a.live++
	return Handle{Index: uint32(len(a.slots) - 1), Gen: 1}
}

// Get returns a pointer to the value for h, or nil if the handle is stale
// or was never issued.
func (a *Arena[T]) Get(h Handle) *T {
	if int(h.Index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.Index]
	if !s.occupied || s.gen != h.Gen {
		return nil
	}
	return &s.value
}

// Contains reports whether h refers to a live value.
func (a *Arena[T]) Contains(h Handle) bool {
	return a.Get(h) != nil
}

// Remove deletes the value for h. Returns false if the handle was already
// stale. The slot is recycled with a bumped generation.
func (a *Arena[T]) Remove(h Handle) bool {
	if a.Get(h) == nil {
		return false
	}
	s := &a.slots[h.Index]
	var zero T
	s.value = zero
	s.occupied = false
	a.free = append(a.free, h.Index)
	a.live--
	return true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	return a.live
}

// Handles returns the handles of all live values in ascending index order.
// The fixed order is what makes arena iteration deterministic.
func (a *Arena[T]) Handles() []Handle {
	out := make([]Handle, 0, a.live)
	for i := range a.slots {
		if a.slots[i].occupied {
			out = append(out, Handle{Index: uint32(i), Gen: a.slots[i].gen})
		}
	}
	return out
}

// ForEach calls fn for every live value in ascending index order.
func (a *Arena[T]) ForEach(fn func(Handle, *T)) {
	for i := range a.slots {
		if a.slots[i].occupied {
			fn(Handle{Index: uint32(i), Gen: a.slots[i].gen}, &a.slots[i].value)
		}
	}
}
