// Package value implements the Asteria value domain (§3.6): a tagged
// union Value, its copy-on-write Array and Object containers, the
// reference-counted Variable cell, and the generational garbage collector
// that reclaims Variables caught in reference cycles (§4.10).
//
// Go already garbage-collects arbitrary object graphs, so Value does not
// need the original's manual reference counting to stay memory-safe; what
// it still needs, and what this package implements, is the Variable-level
// generational collector, because Variable cycles formed through closures
// are semantically part of the language (script authors can observe when
// a `defer`-registered destructor-like cleanup runs) rather than a pure
// memory-safety concern Go's collector already handles.
package value

import "math"

// Kind discriminates the Value tagged union (§3.6).
type Kind uint8

const (
	Null Kind = iota
	Boolean
	Integer
	Real
	String
	Opaque
	Function
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case Real:
		return "real"
	case String:
		return "string"
	case Opaque:
		return "opaque"
	case Function:
		return "function"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the tagged union of §3.6. Only the field matching Kind is
// meaningful. Arrays and objects carry a pointer-backed, copy-on-write
// payload (ArrayVal/ObjectVal); everything else is stored inline.
type Value struct {
	kind Kind

	b bool
	i int64
	f float64
	s string

	opaque OpaqueHandle
	fn     Callable
	arr    ArrayVal
	obj    ObjectVal
}

func (v Value) Kind() Kind { return v.kind }

func Null_() Value                  { return Value{kind: Null} }
func FromBool(b bool) Value         { return Value{kind: Boolean, b: b} }
func FromInt(i int64) Value         { return Value{kind: Integer, i: i} }
func FromReal(f float64) Value      { return Value{kind: Real, f: f} }
func FromString(s string) Value     { return Value{kind: String, s: s} }
func FromOpaque(o OpaqueHandle) Value { return Value{kind: Opaque, opaque: o} }
func FromFunction(fn Callable) Value { return Value{kind: Function, fn: fn} }
func FromArray(a ArrayVal) Value    { return Value{kind: Array, arr: a} }
func FromObject(o ObjectVal) Value  { return Value{kind: Object, obj: o} }

func (v Value) AsBool() bool           { return v.b }
func (v Value) AsInt() int64           { return v.i }
func (v Value) AsReal() float64        { return v.f }
func (v Value) AsString() string       { return v.s }
func (v Value) AsOpaque() OpaqueHandle { return v.opaque }
func (v Value) AsFunction() Callable   { return v.fn }
func (v Value) AsArray() ArrayVal      { return v.arr }
func (v Value) AsObject() ObjectVal    { return v.obj }

// Truthy implements the truthiness table of §4.7: null, false, 0, ±0.0,
// NaN, and "" are false; opaques, functions, arrays, and objects are
// always true.
func (v Value) Truthy() bool {
	switch v.kind {
	case Null:
		return false
	case Boolean:
		return v.b
	case Integer:
		return v.i != 0
	case Real:
		return v.f != 0 && !math.IsNaN(v.f)
	case String:
		return v.s != ""
	default:
		return true
	}
}

// Countof implements the `countof` opcode (§4.7): null is 0, strings
// report byte length, arrays report element count, objects report field
// count. Opaques and functions have no defined count and are a runtime
// error, resolved from original_source/asteria/src/runtime/air_node.cpp
// (see SPEC_FULL.md §C.7).
func (v Value) Countof() (int64, bool) {
	switch v.kind {
	case Null:
		return 0, true
	case String:
		return int64(len(v.s)), true
	case Array:
		return int64(v.arr.Len()), true
	case Object:
		return int64(v.obj.Size()), true
	default:
		return 0, false
	}
}

// Clone returns a value suitable for storing into a second owner slot. For
// array/object payloads this bumps the shared refcount (enabling
// copy-on-write) rather than deep-copying; every other kind is already
// copied by value.
func (v Value) Clone() Value {
	switch v.kind {
	case Array:
		v.arr = v.arr.Retain()
	case Object:
		v.obj = v.obj.Retain()
	}
	return v
}

// Ordering is the tri-plus-one ordering result of §3.6.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
	Unordered
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "unordered"
	}
}

// Compare implements the ordering contract of §3.6.
func Compare(a, b Value) Ordering {
	if a.kind == Null && b.kind == Null {
		return Equal
	}
	if a.kind == Boolean && b.kind == Boolean {
		return orderBool(a.b, b.b)
	}
	if a.kind == Integer && b.kind == Integer {
		return orderNum(a.i, b.i)
	}
	if a.kind == Real && b.kind == Real {
		return orderFloat(a.f, b.f)
	}
	if a.kind == Integer && b.kind == Real {
		return compareIntReal(a.i, b.f)
	}
	if a.kind == Real && b.kind == Integer {
		return reverse(compareIntReal(b.i, a.f))
	}
	if a.kind == String && b.kind == String {
		return orderBytes(a.s, b.s)
	}
	if a.kind == Array && b.kind == Array {
		return compareArrays(a.arr, b.arr)
	}
	if a.kind == b.kind {
		// object/opaque/function: unordered except strict equality by
		// identity, which callers check separately via StrictEquals.
		return Unordered
	}
	return Unordered
}

// StrictEquals reports `==` for kinds that Compare cannot order (object,
// opaque, function compare by identity; every other kind defers to
// Compare == Equal).
func StrictEquals(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Object:
		return a.obj.data == b.obj.data
	case Opaque:
		return a.opaque == b.opaque
	case Function:
		return a.fn == b.fn
	default:
		return Compare(a, b) == Equal
	}
}

func reverse(o Ordering) Ordering {
	switch o {
	case Less:
		return Greater
	case Greater:
		return Less
	default:
		return o
	}
}

func orderBool(a, b bool) Ordering {
	if a == b {
		return Equal
	}
	if !a && b {
		return Less
	}
	return Greater
}

func orderNum(a, b int64) Ordering {
	if a < b {
		return Less
	}
	if a > b {
		return Greater
	}
	return Equal
}

func orderFloat(a, b float64) Ordering {
	if math.IsNaN(a) || math.IsNaN(b) {
		return Unordered
	}
	if a < b {
		return Less
	}
	if a > b {
		return Greater
	}
	return Equal
}

func orderBytes(a, b string) Ordering {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return Less
			}
			return Greater
		}
	}
	return orderNum(int64(len(a)), int64(len(b)))
}

// compareIntReal implements §3.6's mixed comparison: the integer is
// converted to a real with round-down, and the comparison is strict
// (an integer is not equal to a real with the same rounded value unless
// the round trip is exact).
func compareIntReal(i int64, f float64) Ordering {
	if math.IsNaN(f) {
		return Unordered
	}
	rf := math.Floor(f)
	ri := float64(i)
	// float64(i) rounds to nearest; step down one ulp where that rounded up.
	if ri >= 0x1p63 || int64(ri) > i {
		ri = math.Nextafter(ri, math.Inf(-1))
	}
	switch {
	case ri < f:
		return Less
	case ri > f:
		return Greater
	default:
		if rf == f && int64(rf) == i {
			return Equal
		}
		return Unordered
	}
}

func compareArrays(a, b ArrayVal) Ordering {
	as, bs := a.Items(), b.Items()
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		if c := Compare(as[i], bs[i]); c != Equal {
			return c
		}
	}
	return orderNum(int64(len(as)), int64(len(bs)))
}
