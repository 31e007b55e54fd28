package value

import "sync/atomic"

// State is a Variable's lifecycle state (§3.7).
type State uint8

const (
	StateUninitialized State = iota
	StateMutable
	StateImmutable
)

// Variable is a GC-managed cell holding an optional Value plus mutability
// and GC bookkeeping (§3.7). Variables are always allocated through a GC
// (see gc.go) so that generation membership and the free pool stay
// consistent.
type Variable struct {
	val   Value
	state State

	gen    int8  // which generation (0..2) currently holds this Variable
	shared int32 // pin count: holders the GC's root registry cannot see
}

// Get returns the stored value; ok is false if the Variable is still
// uninitialized.
func (v *Variable) Get() (Value, bool) {
	if v.state == StateUninitialized {
		return Value{}, false
	}
	return v.val, true
}

// State reports the current lifecycle state.
func (v *Variable) State() State { return v.state }

// Mutable reports whether assignment through this Variable is legal.
func (v *Variable) Mutable() bool { return v.state == StateMutable }

// Initialize stores val and transitions out of StateUninitialized. This is
// how AIR's InitializeVariable node (§3.5) is implemented.
func (v *Variable) Initialize(val Value, immutable bool) {
	v.releaseCurrent()
	v.val = val
	if immutable {
		v.state = StateImmutable
	} else {
		v.state = StateMutable
	}
}

// Assign overwrites the stored value, failing if the Variable is immutable
// or still uninitialized.
func (v *Variable) Assign(val Value) bool {
	if v.state != StateMutable {
		return false
	}
	v.releaseCurrent()
	v.val = val
	return true
}

// Uninitialize drops the stored value, returning to StateUninitialized
// (used by the GC when finalizing an unreachable Variable, §4.10).
func (v *Variable) Uninitialize() {
	v.releaseCurrent()
	v.val = Value{}
	v.state = StateUninitialized
}

func (v *Variable) releaseCurrent() {
	switch v.val.kind {
	case Array:
		v.val.arr.Release()
	case Object:
		v.val.obj.Release()
	}
}

// Retain/Release pin and unpin this Variable against collection. A pin is
// taken by any holder the GC's root registry cannot enumerate — today
// that is a rebind snapshot embedded in an AIR tree (§4.4) — and the
// collector treats any pinned Variable as a root (§4.10).
func (v *Variable) Retain() { atomic.AddInt32(&v.shared, 1) }
func (v *Variable) Release() {
	if atomic.AddInt32(&v.shared, -1) < 0 {
		atomic.StoreInt32(&v.shared, 0)
	}
}
