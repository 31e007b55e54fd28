package asteria_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asteria-lang/asteria"
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/options"
	"github.com/asteria-lang/asteria/value"
)

func run(t *testing.T, src string) value.Value {
	t.Helper()
	s := asteria.New(options.Default(), diag.Hooks{})
	require.NoError(t, s.ReloadString("test.as", src))
	v, rerr := s.Execute(nil)
	require.Nil(t, rerr, "uncaught exception: %v", rerr)
	return v
}

func runErr(t *testing.T, src string) *diag.RuntimeError {
	t.Helper()
	s := asteria.New(options.Default(), diag.Hooks{})
	require.NoError(t, s.ReloadString("test.as", src))
	_, rerr := s.Execute(nil)
	require.NotNil(t, rerr)
	return rerr
}

// TestFactorialAndReturn is spec.md §8 scenario 1.
func TestFactorialAndReturn(t *testing.T) {
	v := run(t, `func fact(n) { return n <= 1 ? 1 : n * fact(n-1); } return fact(10);`)
	require.Equal(t, value.Integer, v.Kind())
	require.EqualValues(t, 3628800, v.AsInt())
}

// TestTryCatchDeferredRethrow is spec.md §8 scenario 2: the deferred
// exception supersedes the original one.
func TestTryCatchDeferredRethrow(t *testing.T) {
	v := run(t, `try { defer throw "dtor"; throw "orig"; } catch(e) { return e; }`)
	require.Equal(t, value.String, v.Kind())
	require.Equal(t, "dtor", v.AsString())
}

// TestProperTailCallChain is spec.md §8 scenario 3: a million-deep tail
// call must not grow the host stack.
func TestProperTailCallChain(t *testing.T) {
	v := run(t, `func f(n) { return n == 0 ? "done" : f(n-1); } return f(1000000);`)
	require.Equal(t, value.String, v.Kind())
	require.Equal(t, "done", v.AsString())
}

// TestStructuredBinding is spec.md §8 scenario 4.
func TestStructuredBinding(t *testing.T) {
	v := run(t, `var [a, b, c] = [1, 2]; return [a, b, c];`)
	require.Equal(t, value.Array, v.Kind())
	items := v.AsArray().Items()
	require.Len(t, items, 3)
	require.EqualValues(t, 1, items[0].AsInt())
	require.EqualValues(t, 2, items[1].AsInt())
	require.Equal(t, value.Null, items[2].Kind())
}

// TestForEachMutationVisibility is spec.md §8 scenario 5.
func TestForEachMutationVisibility(t *testing.T) {
	v := run(t, `var o = { x: 1, y: 2 }; var s = 0;
		for each (k, val : o) { s += val; } return s;`)
	require.Equal(t, value.Integer, v.Kind())
	require.EqualValues(t, 3, v.AsInt())
}

// TestSwitchFallthroughAndBypassedVariable is spec.md §8 scenario 6.
func TestSwitchFallthroughAndBypassedVariable(t *testing.T) {
	v := run(t, `var r = "";
		switch (2) {
		case 1: var z = "a"; r += z;
		case 2: r += "b";
		case 3: r += "c"; break;
		default: r += "d";
		}
		return r;`)
	require.Equal(t, value.String, v.Kind())
	require.Equal(t, "bc", v.AsString())

	runErr(t, `switch (2) {
		case 1: var z = "a";
		case 2: return z;
		}`)
}

// TestIntDivisionByZeroAndOverflowBoundaries covers §8's boundary cases for the
// arithmetic opcodes directly through the full pipeline.
func TestIntDivisionByZeroAndOverflowBoundaries(t *testing.T) {
	runErr(t, `return 1 / 0;`)
	runErr(t, `return -9223372036854775808 / -1;`)
}

// TestEmptyContainersAndCountof covers §8's "countof of an empty object
// is 0" and "empty array/object literals evaluate to fresh empty
// containers" boundaries.
func TestEmptyContainersAndCountof(t *testing.T) {
	v := run(t, `return countof({});`)
	require.EqualValues(t, 0, v.AsInt())

	v = run(t, `return countof([]);`)
	require.EqualValues(t, 0, v.AsInt())
}

// TestCopyOnWriteArray covers §8's "mutating a after let b = a does not
// change b".
func TestCopyOnWriteArray(t *testing.T) {
	v := run(t, `var a = [1, 2, 3]; var b = a; a[0] = 99; return b;`)
	items := v.AsArray().Items()
	require.EqualValues(t, 1, items[0].AsInt())
}

func TestWhileLoop(t *testing.T) {
	v := run(t, `var i = 0; var s = 0; while (i < 5) { s += i; i += 1; } return s;`)
	require.EqualValues(t, 10, v.AsInt())
}

func TestDoWhileLoopRunsBodyFirst(t *testing.T) {
	v := run(t, `var i = 0; do { i += 1; } while (i < 3); return i;`)
	require.EqualValues(t, 3, v.AsInt())
}

func TestForLoopWithContinue(t *testing.T) {
	v := run(t, `var s = 0;
		for (var i = 0; i < 6; i += 1) {
			if (i % 2 == 1) { continue; }
			s += i;
		}
		return s;`)
	require.EqualValues(t, 6, v.AsInt())
}

// TestReturnInsideNestedBlock checks that a return evaluated inside a
// nested lexical scope still delivers its value to the caller.
func TestReturnInsideNestedBlock(t *testing.T) {
	v := run(t, `func f(n) { if (n > 3) { return "big"; } return "small"; } return f(10);`)
	require.Equal(t, "big", v.AsString())
}

func TestTernaryCompoundAssign(t *testing.T) {
	v := run(t, `var x = 0; x ?= 1 : 2; return x;`)
	require.EqualValues(t, 2, v.AsInt())

	v = run(t, `var x = 7; x ?= x + 1 : 0; return x;`)
	require.EqualValues(t, 8, v.AsInt())
}

func TestVariadicCallWithArrayGenerator(t *testing.T) {
	v := run(t, `func add3(a, b, c) { return a + b + c; }
		var args = [1, 2, 3];
		return add3(args...);`)
	require.EqualValues(t, 6, v.AsInt())
}

func TestVariadicCallWithFunctionGenerator(t *testing.T) {
	v := run(t, `func gen(i) { return i == null ? 2 : (i + 1) * 10; }
		func sum(a, b) { return a + b; }
		return sum(gen...);`)
	require.EqualValues(t, 30, v.AsInt())
}

func TestThreeWayComparisonSentinel(t *testing.T) {
	v := run(t, `return 2 <=> 3;`)
	require.EqualValues(t, -1, v.AsInt())

	v = run(t, `return 1 <=> "a";`)
	require.Equal(t, "[unordered]", v.AsString())

	v = run(t, `return 1 </> "a";`)
	require.True(t, v.AsBool())
}

func TestOrderedComparisonErrorsOnUnordered(t *testing.T) {
	runErr(t, `return 1 < "a";`)
}

func TestStringShiftsPadWithSpaces(t *testing.T) {
	v := run(t, `return "ab" << 1;`)
	require.Equal(t, "b ", v.AsString())

	v = run(t, `return "abcd" >>> 2;`)
	require.Equal(t, "ab", v.AsString())

	v = run(t, `return "ab" <<< 2;`)
	require.Equal(t, "ab  ", v.AsString())
}

func TestDeferRunsInLIFOOrder(t *testing.T) {
	v := run(t, `var log = "";
		func f() { defer log += "a"; defer log += "b"; log += "c"; return null; }
		f();
		return log;`)
	require.Equal(t, "cba", v.AsString())
}

func TestShiftBoundaries(t *testing.T) {
	v := run(t, `return 1 << 64;`)
	require.EqualValues(t, 0, v.AsInt(), "logical shift past the width yields 0")

	runErr(t, `return 1 <<< 64;`)
}

func TestPseudoOperators(t *testing.T) {
	v := run(t, `return __addm(9223372036854775807, 1);`)
	require.EqualValues(t, -9223372036854775808, v.AsInt())

	v = run(t, `return __fma(2.0, 3.0, 1.0);`)
	require.EqualValues(t, 7.0, v.AsReal())

	v = run(t, `func v() { return; } return __isvoid v();`)
	require.True(t, v.AsBool())
}

func TestHeadTailSubscripts(t *testing.T) {
	v := run(t, `var a = [1, 2, 3]; return a[^] + a[$];`)
	require.EqualValues(t, 4, v.AsInt())

	v = run(t, `var a = [1, 2, 3]; return a[-1];`)
	require.EqualValues(t, 3, v.AsInt())
}

func TestUnsetRemovesObjectField(t *testing.T) {
	v := run(t, `var o = { a: 1, b: 2 }; unset o.a; return countof(o);`)
	require.EqualValues(t, 1, v.AsInt())
}

func TestCoalescenceOperators(t *testing.T) {
	v := run(t, `var x = null; return x ?? 5;`)
	require.EqualValues(t, 5, v.AsInt())

	v = run(t, `var x = null; x ??= 9; return x;`)
	require.EqualValues(t, 9, v.AsInt())

	v = run(t, `var x = 3; x ??= 9; return x;`)
	require.EqualValues(t, 3, v.AsInt())
}

func TestCatchExpressionMaterializesThrownValue(t *testing.T) {
	v := run(t, `return catch(1 / 0);`)
	require.Equal(t, value.String, v.Kind())
}

func TestBacktraceExposedInCatch(t *testing.T) {
	v := run(t, `try { throw "boom"; } catch(e) { return countof(__backtrace) > 0; }`)
	require.True(t, v.AsBool())
}

func TestClosureCapturesOuterVariable(t *testing.T) {
	v := run(t, `var n = 10;
		var f = func(x) { return x + n; };
		n = 20;
		return f(1);`)
	require.EqualValues(t, 21, v.AsInt())
}

func TestScriptExecuteWithArguments(t *testing.T) {
	s := asteria.New(options.Default(), diag.Hooks{})
	require.NoError(t, s.ReloadString("args.as", `var a = ...; return a[0] + a[1];`))
	v, rerr := s.Execute([]value.Value{value.FromInt(4), value.FromInt(5)})
	require.Nil(t, rerr)
	require.EqualValues(t, 9, v.AsInt())
}

func TestScriptWithoutReturnYieldsNull(t *testing.T) {
	v := run(t, `var x = 1;`)
	require.Equal(t, value.Null, v.Kind())
}

func TestImportInvokesModuleTopLevel(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "mod.as")
	require.NoError(t, os.WriteFile(modPath, []byte(`var a = ...; return a[0] * 2;`), 0o644))

	v := run(t, `return import("`+modPath+`", 21);`)
	require.EqualValues(t, 42, v.AsInt())
}
