package context_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/value"
)

func newVariable(t *testing.T, v value.Value, immutable bool) *value.Variable {
	t.Helper()
	gc := value.NewGC()
	variable := gc.Allocate()
	variable.Initialize(v, immutable)
	return variable
}

func TestTemporaryDereferenceRoundTrip(t *testing.T) {
	r := context.Temporary(value.FromInt(42))
	v, err := r.DereferenceReadonly()
	require.NoError(t, err)
	require.EqualValues(t, 42, v.AsInt())
}

func TestVoidReferenceIsUnreadable(t *testing.T) {
	_, err := context.Void().DereferenceReadonly()
	require.Error(t, err)
}

func TestVariableAssignRejectsImmutable(t *testing.T) {
	variable := newVariable(t, value.FromInt(1), true)
	r := context.FromVariable(variable)
	_, setter, err := r.DereferenceMutable()
	require.NoError(t, err)
	require.Error(t, setter(value.FromInt(2)), "assigning to an immutable variable must fail")
}

func TestArrayIndexModifierReadWrite(t *testing.T) {
	arr := value.NewArray(value.FromInt(1), value.FromInt(2), value.FromInt(3))
	// The variable is a second owner of arr's storage, so it takes a
	// Retain, as Value.Clone does for every second owner.
	variable := newVariable(t, value.FromArray(arr.Retain()), false)
	r := context.FromVariable(variable).PushModifier(context.ArrayIndex(1))

	v, err := r.DereferenceReadonly()
	require.NoError(t, err)
	require.EqualValues(t, 2, v.AsInt())

	_, setter, err := r.DereferenceMutable()
	require.NoError(t, err)
	require.NoError(t, setter(value.FromInt(99)))

	updated, _ := variable.Get()
	require.EqualValues(t, 99, updated.AsArray().Items()[1].AsInt())
	require.EqualValues(t, 1, arr.Items()[1].AsInt(), "the original array handle is untouched (copy-on-write)")
}

func TestArrayTailModifierResolvesLastElement(t *testing.T) {
	arr := value.NewArray(value.FromInt(10), value.FromInt(20), value.FromInt(30))
	variable := newVariable(t, value.FromArray(arr), false)
	r := context.FromVariable(variable).PushModifier(context.ArrayTail())

	v, err := r.DereferenceReadonly()
	require.NoError(t, err)
	require.EqualValues(t, 30, v.AsInt())
}

func TestObjectKeyModifierUnset(t *testing.T) {
	obj := value.NewObject([]string{"a", "b"}, []value.Value{value.FromInt(1), value.FromInt(2)})
	variable := newVariable(t, value.FromObject(obj), false)
	r := context.FromVariable(variable).PushModifier(context.ObjectKey("a"))

	require.NoError(t, r.DereferenceUnset())
	updated, _ := variable.Get()
	require.Equal(t, value.Null, updated.AsObject().Get("a").Kind())
}

func TestPopModifierRecoversOuterReference(t *testing.T) {
	r := context.Temporary(value.FromInt(1)).PushModifier(context.ArrayIndex(0))
	outer, m, ok := r.PopModifier()
	require.True(t, ok)
	require.Equal(t, context.ModArrayIndex, m.Kind)
	require.Empty(t, outer.Modifiers())
}

func TestModifierOnWrongKindIsAnError(t *testing.T) {
	r := context.Temporary(value.FromInt(1)).PushModifier(context.ArrayIndex(0))
	_, err := r.DereferenceReadonly()
	require.Error(t, err)
}
