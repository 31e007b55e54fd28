package value

import (
	"sync/atomic"

	"github.com/asteria-lang/asteria/internal/container"
)

// objectData is the shared, reference-counted backing storage for an
// ObjectVal, built on internal/container.OrderedMap so that field order
// matches insertion order (§3.6).
type objectData struct {
	fields container.OrderedMap[string, Value]
	refs   int32
}

// ObjectVal is Asteria's object container: a shared, insertion-ordered,
// copy-on-write mapping from field name to Value.
type ObjectVal struct{ data *objectData }

// NewObject builds a fresh, uniquely-owned object from the given keys in
// order, paired with values.
func NewObject(keys []string, values []Value) ObjectVal {
	om := container.NewOrderedMap[string, Value]()
	for i, k := range keys {
		var v Value
		if i < len(values) {
			v = values[i]
		}
		om.Set(k, v)
	}
	return ObjectVal{data: &objectData{fields: om, refs: 1}}
}

// Retain bumps the shared refcount (§9 copy-on-write).
func (o ObjectVal) Retain() ObjectVal {
	if o.data != nil {
		atomic.AddInt32(&o.data.refs, 1)
	}
	return o
}

// Release drops the shared refcount.
func (o ObjectVal) Release() {
	if o.data != nil {
		atomic.AddInt32(&o.data.refs, -1)
	}
}

func (o ObjectVal) unique() bool {
	return o.data == nil || atomic.LoadInt32(&o.data.refs) <= 1
}

// Size returns the field count.
func (o ObjectVal) Size() int {
	if o.data == nil {
		return 0
	}
	return o.data.fields.Size()
}

// Get reads a field; a missing key reads as null (§4.11).
func (o ObjectVal) Get(key string) Value {
	if o.data == nil {
		return Null_()
	}
	v, ok := o.data.fields.Get(key)
	if !ok {
		return Null_()
	}
	return v
}

// Keys returns the field names in insertion order.
func (o ObjectVal) Keys() []string {
	if o.data == nil {
		return nil
	}
	return o.data.fields.Keys()
}

// Entries iterates (key, value) in insertion order.
func (o ObjectVal) Entries() func(yield func(string, Value) bool) {
	if o.data == nil {
		return func(yield func(string, Value) bool) {}
	}
	return o.data.fields.Entries()
}

// MutableObject splits the backing storage (if shared).
func (o ObjectVal) MutableObject() ObjectVal {
	if o.unique() {
		if o.data == nil {
			om := container.NewOrderedMap[string, Value]()
			return ObjectVal{data: &objectData{fields: om, refs: 1}}
		}
		return o
	}
	cloned := o.data.fields.Clone()
	o.Release()
	return ObjectVal{data: &objectData{fields: cloned, refs: 1}}
}

// Set writes (or inserts) a field; the receiver must already be uniquely
// owned (see MutableObject).
func (o ObjectVal) Set(key string, v Value) ObjectVal {
	o.data.fields.Set(key, v)
	return o
}

// Unset removes a field if present.
func (o ObjectVal) Unset(key string) ObjectVal {
	if o.data != nil {
		o.data.fields.Delete(key)
	}
	return o
}

// visitChildren appends every Value held directly by this object (used by
// the GC's explicit-stack traversal, §4.10/§9).
func (o ObjectVal) visitChildren(stack []Value) []Value {
	for _, v := range o.Items() {
		stack = append(stack, v)
	}
	return stack
}

// Items returns the field values in insertion order.
func (o ObjectVal) Items() []Value {
	if o.data == nil {
		return nil
	}
	out := make([]Value, 0, o.data.fields.Size())
	o.data.fields.Entries()(func(_ string, v Value) bool {
		out = append(out, v)
		return true
	})
	return out
}
