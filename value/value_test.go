package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asteria-lang/asteria/value"
)

func TestTruthyBoundaries(t *testing.T) {
	require.False(t, value.Null_().Truthy())
	require.False(t, value.FromBool(false).Truthy())
	require.False(t, value.FromInt(0).Truthy())
	require.False(t, value.FromReal(0.0).Truthy())
	require.False(t, value.FromReal(-0.0).Truthy())
	require.False(t, value.FromReal(math.NaN()).Truthy())
	require.False(t, value.FromString("").Truthy())

	require.True(t, value.FromInt(-1).Truthy())
	require.True(t, value.FromString(" ").Truthy())
	require.True(t, value.FromArray(value.NewArray()).Truthy())
	require.True(t, value.FromObject(value.NewObject(nil, nil)).Truthy())
}

func TestCountofBoundaries(t *testing.T) {
	n, ok := value.Null_().Countof()
	require.True(t, ok)
	require.EqualValues(t, 0, n)

	n, ok = value.FromString("abc").Countof()
	require.True(t, ok)
	require.EqualValues(t, 3, n)

	n, ok = value.FromArray(value.NewArray(value.FromInt(1), value.FromInt(2))).Countof()
	require.True(t, ok)
	require.EqualValues(t, 2, n)

	_, ok = value.FromFunction(nil).Countof()
	require.False(t, ok, "countof on a function is undefined (§C.7)")
}

func TestCompareCrossFamilyIsUnordered(t *testing.T) {
	require.Equal(t, value.Unordered, value.Compare(value.FromString("1"), value.FromInt(1)))
	require.Equal(t, value.Unordered, value.Compare(value.FromInt(1), value.FromString("1")))
	require.Equal(t, value.Unordered, value.Compare(value.FromBool(true), value.FromInt(1)))
}

func TestCompareIntegerRealRoundDown(t *testing.T) {
	require.Equal(t, value.Equal, value.Compare(value.FromInt(2), value.FromReal(2.0)))
	require.Equal(t, value.Less, value.Compare(value.FromInt(2), value.FromReal(2.5)))
	require.Equal(t, value.Less, value.Compare(value.FromInt(2), value.FromReal(3.0)))
	require.Equal(t, value.Greater, value.Compare(value.FromReal(2.5), value.FromInt(2)))
	require.Equal(t, value.Unordered, value.Compare(value.FromInt(2), value.FromReal(math.NaN())))

	// A 64-bit integer whose float64 conversion collides with the real is
	// only Equal when the round trip is exact (§3.6).
	big := int64(1) << 62
	require.Equal(t, value.Equal, value.Compare(value.FromInt(big), value.FromReal(float64(big))))
	require.Equal(t, value.Unordered, value.Compare(value.FromInt(big+1), value.FromReal(float64(big))))
}

func TestCompareStringsLexicographicByByte(t *testing.T) {
	require.Equal(t, value.Less, value.Compare(value.FromString("ab"), value.FromString("b")))
	require.Equal(t, value.Less, value.Compare(value.FromString("ab"), value.FromString("abc")))
	require.Equal(t, value.Equal, value.Compare(value.FromString("x"), value.FromString("x")))
}

func TestCompareArraysLexicographic(t *testing.T) {
	a := value.NewArray(value.FromInt(1), value.FromInt(2))
	b := value.NewArray(value.FromInt(1), value.FromInt(3))
	require.Equal(t, value.Less, value.Compare(value.FromArray(a), value.FromArray(b)))

	c := value.NewArray(value.FromInt(1))
	require.Equal(t, value.Less, value.Compare(value.FromArray(c), value.FromArray(a)))
}

func TestStrictEqualsIdentityForObjects(t *testing.T) {
	o1 := value.NewObject(nil, nil)
	o2 := o1.Retain()
	require.True(t, value.StrictEquals(value.FromObject(o1), value.FromObject(o2)))

	o3 := value.NewObject(nil, nil)
	require.False(t, value.StrictEquals(value.FromObject(o1), value.FromObject(o3)))
}

func TestArrayCopyOnWrite(t *testing.T) {
	a := value.NewArray(value.FromInt(1), value.FromInt(2), value.FromInt(3))
	b := a.Retain()
	a = a.MutableArray().Set(0, value.FromInt(99))

	require.EqualValues(t, 1, b.Items()[0].AsInt())
	require.EqualValues(t, 99, a.Items()[0].AsInt())
}

func TestArrayNegativeIndex(t *testing.T) {
	a := value.NewArray(value.FromInt(10), value.FromInt(20), value.FromInt(30))
	require.EqualValues(t, 30, a.Get(-1).AsInt())
	require.Equal(t, value.Null, a.Get(99).Kind())
}
