package interp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asteria-lang/asteria/opcode"
	"github.com/asteria-lang/asteria/value"
)

func TestApplyAddOverflow(t *testing.T) {
	_, rerr := applyAdd(value.FromInt(math.MaxInt64), value.FromInt(1))
	require.NotNil(t, rerr)

	v, rerr := applyAdd(value.FromInt(2), value.FromInt(3))
	require.Nil(t, rerr)
	require.EqualValues(t, 5, v.AsInt())
}

func TestApplyDivByZeroAndMinInt64Overflow(t *testing.T) {
	_, rerr := applyDiv(value.FromInt(1), value.FromInt(0))
	require.NotNil(t, rerr)

	_, rerr = applyDiv(value.FromInt(math.MinInt64), value.FromInt(-1))
	require.NotNil(t, rerr, "INT64_MIN / -1 overflows")
}

func TestApplyModularWrapsWithoutError(t *testing.T) {
	v, rerr := applyModular(opcode.AddM, value.FromInt(math.MaxInt64), value.FromInt(1))
	require.Nil(t, rerr)
	require.EqualValues(t, math.MinInt64, v.AsInt())
}

func TestApplySaturatingClamps(t *testing.T) {
	v, rerr := applySaturating(opcode.AddS, value.FromInt(math.MaxInt64), value.FromInt(1))
	require.Nil(t, rerr)
	require.EqualValues(t, math.MaxInt64, v.AsInt())

	v, rerr = applySaturating(opcode.SubS, value.FromInt(math.MinInt64), value.FromInt(1))
	require.Nil(t, rerr)
	require.EqualValues(t, math.MinInt64, v.AsInt())
}

func TestApplyShiftLogicalVsArithmetic(t *testing.T) {
	v, rerr := applyShift(opcode.Srl, value.FromInt(-1), value.FromInt(1))
	require.Nil(t, rerr)
	require.EqualValues(t, math.MaxInt64, v.AsInt())

	v, rerr = applyShift(opcode.Sra, value.FromInt(-2), value.FromInt(1))
	require.Nil(t, rerr)
	require.EqualValues(t, -1, v.AsInt())

	_, rerr = applyShift(opcode.Sll, value.FromInt(1), value.FromInt(-1))
	require.NotNil(t, rerr, "negative shift counts are rejected")
}

func TestApplyBitwiseStringsTruncateVsExtend(t *testing.T) {
	v := bitwiseStrings(opcode.AndB, "abc", "ab")
	require.Equal(t, "ab", v.AsString())

	v = bitwiseStrings(opcode.OrB, "\x00\x00", "\xff")
	require.Equal(t, "\xff\x00", v.AsString())
}

func TestNegMinInt64Overflows(t *testing.T) {
	_, rerr := applyUnary(opcode.Neg, value.FromInt(math.MinInt64))
	require.NotNil(t, rerr)
}

func TestStringRepeatRejectsNegativeCount(t *testing.T) {
	_, rerr := applyMul(value.FromString("ab"), value.FromInt(-1))
	require.NotNil(t, rerr)

	v, rerr := applyMul(value.FromString("ab"), value.FromInt(3))
	require.Nil(t, rerr)
	require.Equal(t, "ababab", v.AsString())
}

func TestApplyShiftStringForms(t *testing.T) {
	v, rerr := applyShift(opcode.Sll, value.FromString("abcd"), value.FromInt(1))
	require.Nil(t, rerr)
	require.Equal(t, "bcd ", v.AsString())

	v, rerr = applyShift(opcode.Srl, value.FromString("abcd"), value.FromInt(1))
	require.Nil(t, rerr)
	require.Equal(t, " abc", v.AsString())

	v, rerr = applyShift(opcode.Sla, value.FromString("ab"), value.FromInt(3))
	require.Nil(t, rerr)
	require.Equal(t, "ab   ", v.AsString())

	v, rerr = applyShift(opcode.Sra, value.FromString("abcd"), value.FromInt(3))
	require.Nil(t, rerr)
	require.Equal(t, "a", v.AsString())

	v, rerr = applyShift(opcode.Sll, value.FromString("ab"), value.FromInt(99))
	require.Nil(t, rerr)
	require.Equal(t, "  ", v.AsString(), "shifting past the length leaves all spaces")
}

func TestCmp3wayProducesUnorderedSentinel(t *testing.T) {
	v, rerr := applyBinary(opcode.Cmp3way, value.FromInt(1), value.FromString("a"))
	require.Nil(t, rerr)
	require.Equal(t, "[unordered]", v.AsString())

	v, rerr = applyBinary(opcode.Cmp3way, value.FromInt(2), value.FromInt(3))
	require.Nil(t, rerr)
	require.EqualValues(t, -1, v.AsInt())
}

func TestOrderedComparisonRejectsUnordered(t *testing.T) {
	_, rerr := applyBinary(opcode.CmpLt, value.FromInt(1), value.FromString("a"))
	require.NotNil(t, rerr)

	v, rerr := applyBinary(opcode.CmpEq, value.FromInt(1), value.FromString("a"))
	require.Nil(t, rerr, "equality tolerates unordered pairs")
	require.False(t, v.AsBool())
}

func TestNotbOnStringsFlipsBytes(t *testing.T) {
	v, rerr := applyUnary(opcode.NotB, value.FromString("\x00\xff"))
	require.Nil(t, rerr)
	require.Equal(t, "\xff\x00", v.AsString())
}

func TestMathUnariesRejectNonNumerics(t *testing.T) {
	_, rerr := applyUnary(opcode.Sqrt, value.FromString("4"))
	require.NotNil(t, rerr)

	v, rerr := applyUnary(opcode.Sqrt, value.FromInt(9))
	require.Nil(t, rerr)
	require.EqualValues(t, 3.0, v.AsReal())
}

func TestCompareEqualsUsesIdentityForObjects(t *testing.T) {
	o1 := value.NewObject(nil, nil)
	o2 := value.NewObject(nil, nil)
	require.False(t, compareEquals(value.FromObject(o1), value.FromObject(o2)))
	require.True(t, compareEquals(value.FromInt(1), value.FromInt(1)))
}
