package context

import (
	"fmt"

	"github.com/asteria-lang/asteria/value"
)

// Kind discriminates the Reference tagged union (§3.8).
type Kind uint8

const (
	KindUninit Kind = iota
	KindInvalid
	KindVoid
	KindTemporary
	KindVariable
	KindPtcArgs
)

func (k Kind) String() string {
	switch k {
	case KindUninit:
		return "uninit"
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindTemporary:
		return "temporary"
	case KindVariable:
		return "variable"
	case KindPtcArgs:
		return "ptc_args"
	default:
		return "reference(?)"
	}
}

// Reference is a handle onto a value location (§3.8): either nothing
// (Uninit/Invalid/Void), an rvalue held inline (Temporary), an lvalue
// backed by a GC-managed cell (Variable), or a pending proper tail call
// awaiting the trampoline (PtcArgs). A stack of Modifiers narrows the
// location into nested arrays/objects.
type Reference struct {
	kind Kind

	temp     value.Value
	variable *value.Variable
	ptc      *PtcArguments

	modifiers []Modifier
}

func Uninit() Reference  { return Reference{kind: KindUninit} }
func Invalid() Reference { return Reference{kind: KindInvalid} }
func Void() Reference    { return Reference{kind: KindVoid} }

func Temporary(v value.Value) Reference {
	return Reference{kind: KindTemporary, temp: v}
}

func FromVariable(v *value.Variable) Reference {
	return Reference{kind: KindVariable, variable: v}
}

func FromPtcArguments(p *PtcArguments) Reference {
	return Reference{kind: KindPtcArgs, ptc: p}
}

func (r Reference) Kind() Kind { return r.kind }

// Variable returns the backing Variable cell; only meaningful when
// Kind() == KindVariable.
func (r Reference) Variable() *value.Variable { return r.variable }

// PtcArguments returns the pending tail call; only meaningful when
// Kind() == KindPtcArgs.
func (r Reference) PtcArguments() *PtcArguments { return r.ptc }

// PushModifier returns a copy of r with m appended to its modifier chain.
func (r Reference) PushModifier(m Modifier) Reference {
	mods := make([]Modifier, len(r.modifiers), len(r.modifiers)+1)
	copy(mods, r.modifiers)
	r.modifiers = append(mods, m)
	return r
}

// PopModifier removes the most recently pushed modifier, returning the
// narrowed reference it was applied on top of. This is how `self` is
// recovered for method calls (§4.9, §4.11).
func (r Reference) PopModifier() (Reference, Modifier, bool) {
	n := len(r.modifiers)
	if n == 0 {
		return r, Modifier{}, false
	}
	m := r.modifiers[n-1]
	r.modifiers = r.modifiers[:n-1]
	return r, m, true
}

// Modifiers returns the modifier chain, outermost first.
func (r Reference) Modifiers() []Modifier { return r.modifiers }

func (r Reference) baseValue() (value.Value, error) {
	switch r.kind {
	case KindTemporary:
		return r.temp, nil
	case KindVariable:
		v, ok := r.variable.Get()
		if !ok {
			return value.Value{}, fmt.Errorf("attempt to use uninitialized variable")
		}
		return v, nil
	case KindVoid:
		return value.Value{}, fmt.Errorf("attempt to dereference a void reference")
	case KindPtcArgs:
		return value.Value{}, fmt.Errorf("attempt to dereference a pending tail call")
	default:
		return value.Value{}, fmt.Errorf("attempt to dereference an unbound reference")
	}
}

func (r Reference) setBaseValue(v value.Value) (Reference, error) {
	switch r.kind {
	case KindTemporary:
		r.temp = v
		return r, nil
	case KindVariable:
		if !r.variable.Assign(v) {
			return r, fmt.Errorf("attempt to assign to an immutable or uninitialized variable")
		}
		return r, nil
	default:
		return r, fmt.Errorf("attempt to assign through a non-lvalue reference")
	}
}

// DereferenceReadonly returns a shared view of the value this reference
// (with its modifier chain) denotes, without copying any container
// storage (§3.8).
func (r Reference) DereferenceReadonly() (value.Value, error) {
	base, err := r.baseValue()
	if err != nil {
		return value.Value{}, err
	}
	return navigateRead(base, r.modifiers)
}

// DereferenceMutable forces copy-on-write along the modifier chain and
// returns the current value together with a setter that commits a
// replacement back through every level, including the backing Variable
// (§3.8).
func (r Reference) DereferenceMutable() (value.Value, func(value.Value) error, error) {
	base, err := r.baseValue()
	if err != nil {
		return value.Value{}, nil, err
	}
	cur, err := navigateRead(base, r.modifiers)
	if err != nil {
		return value.Value{}, nil, err
	}
	setter := func(v value.Value) error {
		rebuilt, err := navigateWrite(base, r.modifiers, v)
		if err != nil {
			return err
		}
		_, err = r.setBaseValue(rebuilt)
		return err
	}
	return cur, setter, nil
}

// DereferenceUnset removes the location this reference denotes (§3.8,
// §4.11): with no modifiers, the backing Variable is uninitialized (a
// temporary is left unchanged); with modifiers, the deepest array
// element is nulled out or the deepest object field is deleted.
func (r Reference) DereferenceUnset() error {
	if len(r.modifiers) == 0 {
		switch r.kind {
		case KindVariable:
			r.variable.Uninitialize()
			return nil
		case KindTemporary:
			return nil
		default:
			return fmt.Errorf("attempt to unset a non-lvalue reference")
		}
	}
	base, err := r.baseValue()
	if err != nil {
		return err
	}
	rebuilt, err := navigateUnset(base, r.modifiers)
	if err != nil {
		return err
	}
	_, err = r.setBaseValue(rebuilt)
	return err
}

func resolveArrayIndex(m Modifier, length int) int64 {
	switch m.Kind {
	case ModArrayHead:
		return 0
	case ModArrayTail:
		return int64(length - 1)
	default:
		return m.Index
	}
}

func navigateRead(v value.Value, mods []Modifier) (value.Value, error) {
	if len(mods) == 0 {
		return v, nil
	}
	m, rest := mods[0], mods[1:]
	switch m.Kind {
	case ModArrayIndex, ModArrayHead, ModArrayTail, ModArrayRandom:
		if v.Kind() != value.Array {
			return value.Value{}, fmt.Errorf("array modifier applied to a %s value", v.Kind())
		}
		arr := v.AsArray()
		idx := resolveArrayIndex(m, arr.Len())
		return navigateRead(arr.Get(idx), rest)
	case ModObjectKey:
		if v.Kind() != value.Object {
			return value.Value{}, fmt.Errorf("object modifier applied to a %s value", v.Kind())
		}
		return navigateRead(v.AsObject().Get(m.Key), rest)
	default:
		return value.Value{}, fmt.Errorf("unknown modifier kind")
	}
}

func navigateWrite(v value.Value, mods []Modifier, newVal value.Value) (value.Value, error) {
	if len(mods) == 0 {
		return newVal, nil
	}
	m, rest := mods[0], mods[1:]
	switch m.Kind {
	case ModArrayIndex, ModArrayHead, ModArrayTail, ModArrayRandom:
		if v.Kind() != value.Array {
			return value.Value{}, fmt.Errorf("array modifier applied to a %s value", v.Kind())
		}
		arr := v.AsArray().MutableArray()
		idx := resolveArrayIndex(m, arr.Len())
		child, err := navigateWrite(arr.Get(idx), rest, newVal)
		if err != nil {
			return value.Value{}, err
		}
		arr = arr.Set(idx, child)
		return value.FromArray(arr), nil
	case ModObjectKey:
		if v.Kind() != value.Object {
			return value.Value{}, fmt.Errorf("object modifier applied to a %s value", v.Kind())
		}
		obj := v.AsObject().MutableObject()
		child, err := navigateWrite(obj.Get(m.Key), rest, newVal)
		if err != nil {
			return value.Value{}, err
		}
		obj = obj.Set(m.Key, child)
		return value.FromObject(obj), nil
	default:
		return value.Value{}, fmt.Errorf("unknown modifier kind")
	}
}

func navigateUnset(v value.Value, mods []Modifier) (value.Value, error) {
	m, rest := mods[0], mods[1:]
	if len(rest) == 0 {
		switch m.Kind {
		case ModArrayIndex, ModArrayHead, ModArrayTail, ModArrayRandom:
			if v.Kind() != value.Array {
				return value.Value{}, fmt.Errorf("array modifier applied to a %s value", v.Kind())
			}
			arr := v.AsArray().MutableArray()
			idx := resolveArrayIndex(m, arr.Len())
			arr = arr.Set(idx, value.Null_())
			return value.FromArray(arr), nil
		case ModObjectKey:
			if v.Kind() != value.Object {
				return value.Value{}, fmt.Errorf("object modifier applied to a %s value", v.Kind())
			}
			obj := v.AsObject().MutableObject().Unset(m.Key)
			return value.FromObject(obj), nil
		default:
			return value.Value{}, fmt.Errorf("unknown modifier kind")
		}
	}
	switch m.Kind {
	case ModArrayIndex, ModArrayHead, ModArrayTail, ModArrayRandom:
		if v.Kind() != value.Array {
			return value.Value{}, fmt.Errorf("array modifier applied to a %s value", v.Kind())
		}
		arr := v.AsArray().MutableArray()
		idx := resolveArrayIndex(m, arr.Len())
		child, err := navigateUnset(arr.Get(idx), rest)
		if err != nil {
			return value.Value{}, err
		}
		arr = arr.Set(idx, child)
		return value.FromArray(arr), nil
	case ModObjectKey:
		if v.Kind() != value.Object {
			return value.Value{}, fmt.Errorf("object modifier applied to a %s value", v.Kind())
		}
		obj := v.AsObject().MutableObject()
		child, err := navigateUnset(obj.Get(m.Key), rest)
		if err != nil {
			return value.Value{}, err
		}
		obj = obj.Set(m.Key, child)
		return value.FromObject(obj), nil
	default:
		return value.Value{}, fmt.Errorf("unknown modifier kind")
	}
}
