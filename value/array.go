package value

import "sync/atomic"

// arrayData is the shared, reference-counted backing storage for an
// ArrayVal. refs counts how many ArrayVal handles currently alias it;
// MutableSlice clones the storage (copy-on-write) once refs > 1.
type arrayData struct {
	items []Value
	refs  int32
}

// ArrayVal is Asteria's array container (§3.6): a shared, ordered,
// copy-on-write sequence of Values.
type ArrayVal struct{ data *arrayData }

// NewArray builds a fresh, uniquely-owned array from items.
func NewArray(items ...Value) ArrayVal {
	cloned := make([]Value, len(items))
	copy(cloned, items)
	return ArrayVal{data: &arrayData{items: cloned, refs: 1}}
}

// Retain bumps the shared refcount, returning the same handle; call this
// whenever a Value is duplicated into a second owner (§9 copy-on-write).
func (a ArrayVal) Retain() ArrayVal {
	if a.data != nil {
		atomic.AddInt32(&a.data.refs, 1)
	}
	return a
}

// Release drops the shared refcount; call this when an owner is discarded
// (e.g. a Variable is finalized by the GC).
func (a ArrayVal) Release() {
	if a.data != nil {
		atomic.AddInt32(&a.data.refs, -1)
	}
}

func (a ArrayVal) unique() bool {
	return a.data == nil || atomic.LoadInt32(&a.data.refs) <= 1
}

// Len returns the element count.
func (a ArrayVal) Len() int {
	if a.data == nil {
		return 0
	}
	return len(a.data.items)
}

// Items returns the read-only backing slice; callers must not mutate it.
func (a ArrayVal) Items() []Value {
	if a.data == nil {
		return nil
	}
	return a.data.items
}

// Get reads element i (negative counts from the tail); out-of-range reads
// return null rather than erroring (§4.11).
func (a ArrayVal) Get(i int64) Value {
	items := a.Items()
	idx := normalizeIndex(i, len(items))
	if idx < 0 || idx >= len(items) {
		return Null_()
	}
	return items[idx]
}

// MutableArray splits the backing storage (if shared) and returns a handle
// whose Set calls are guaranteed not to disturb other observers.
func (a ArrayVal) MutableArray() ArrayVal {
	if a.unique() {
		return a
	}
	items := make([]Value, len(a.data.items))
	copy(items, a.data.items)
	a.Release()
	return ArrayVal{data: &arrayData{items: items, refs: 1}}
}

// Set writes element i (negative counts from the tail), extending the
// array with nulls when i is past the current end (§4.11). The receiver
// must already be uniquely owned (see MutableArray).
func (a ArrayVal) Set(i int64, v Value) ArrayVal {
	idx := normalizeIndex(i, len(a.data.items))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(a.data.items) {
		grown := make([]Value, idx+1)
		copy(grown, a.data.items)
		a.data.items = grown
	}
	a.data.items[idx] = v
	return a
}

// Push appends to the end, splitting storage first if shared.
func (a ArrayVal) Push(v Value) ArrayVal {
	a = a.MutableArray()
	a.data.items = append(a.data.items, v)
	return a
}

func normalizeIndex(i int64, length int) int {
	if i < 0 {
		return length + int(i)
	}
	return int(i)
}

// visitChildren appends every Value held directly by this array (used by
// the GC's explicit-stack traversal, §4.10/§9).
func (a ArrayVal) visitChildren(stack []Value) []Value {
	return append(stack, a.Items()...)
}
