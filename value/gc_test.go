package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asteria-lang/asteria/value"
)

// fakeClosure stands in for the interpreter's closure implementation: a
// Callable whose captures are an explicit Variable list.
type fakeClosure struct {
	captured []*value.Variable
}

func (f *fakeClosure) FuncName() string { return "<fake>" }

func (f *fakeClosure) VisitCaptured(visit func(*value.Variable)) {
	for _, v := range f.captured {
		visit(v)
	}
}

// TestGCCollectsUnrootedCycle builds the cycle the collector exists for:
// two Variables reachable only through each other's closure captures.
// While either is rooted both survive; once the root is dropped, a full
// collection finalizes both despite the cycle.
func TestGCCollectsUnrootedCycle(t *testing.T) {
	gc := value.NewGC()
	roots := make(map[*value.Variable]struct{})
	gc.Roots = func(markVar func(*value.Variable), _ func(value.Value)) {
		for v := range roots {
			markVar(v)
		}
	}

	a := gc.Allocate()
	b := gc.Allocate()
	a.Initialize(value.FromFunction(&fakeClosure{captured: []*value.Variable{b}}), false)
	b.Initialize(value.FromFunction(&fakeClosure{captured: []*value.Variable{a}}), false)
	roots[a] = struct{}{}

	gc.CollectAll()
	require.Equal(t, 2, gc.LiveCount(), "b is reachable through a's capture")
	_, ok := b.Get()
	require.True(t, ok)

	delete(roots, a)
	gc.CollectAll()
	require.Equal(t, 0, gc.LiveCount(), "the unrooted cycle is reclaimed")
	_, ok = a.Get()
	require.False(t, ok, "finalization uninitializes the variable")
}

// TestGCReachesThroughContainers checks the explicit-worklist traversal:
// a Variable reachable only through a nested array/object value graph
// survives collection.
func TestGCReachesThroughContainers(t *testing.T) {
	gc := value.NewGC()
	roots := make(map[*value.Variable]struct{})
	gc.Roots = func(markVar func(*value.Variable), _ func(value.Value)) {
		for v := range roots {
			markVar(v)
		}
	}

	inner := gc.Allocate()
	inner.Initialize(value.FromInt(7), false)

	holder := gc.Allocate()
	nested := value.FromArray(value.NewArray(
		value.FromObject(value.NewObject(
			[]string{"fn"},
			[]value.Value{value.FromFunction(&fakeClosure{captured: []*value.Variable{inner}})},
		)),
	))
	holder.Initialize(nested, false)
	roots[holder] = struct{}{}

	gc.CollectAll()
	require.Equal(t, 2, gc.LiveCount())
	_, ok := inner.Get()
	require.True(t, ok)
}

// TestGCPinnedVariableSurvivesWithoutRoots covers the Retain pin taken by
// rebind snapshots: a pinned Variable is a root even when the registry
// cannot see its holder.
func TestGCPinnedVariableSurvivesWithoutRoots(t *testing.T) {
	gc := value.NewGC()
	gc.Roots = func(func(*value.Variable), func(value.Value)) {}

	v := gc.Allocate()
	v.Initialize(value.FromInt(1), false)
	v.Retain()

	gc.CollectAll()
	require.Equal(t, 1, gc.LiveCount())

	v.Release()
	gc.CollectAll()
	require.Equal(t, 0, gc.LiveCount())
}
