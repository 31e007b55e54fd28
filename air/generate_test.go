package air_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/options"
	"github.com/asteria-lang/asteria/syntax"
	"github.com/asteria-lang/asteria/token"
)

func generate(t *testing.T, src string, opts options.Compiler) []air.Node {
	t.Helper()
	toks, err := token.Tokenize("g.as", []byte(src), opts)
	require.NoError(t, err)
	stmts, err := syntax.NewParser(toks, opts, 0).ParseStatements()
	require.NoError(t, err)
	actx := context.NewAnalyticContext(nil, true)
	nodes, err := air.GenerateStatements(stmts, actx, opts)
	require.NoError(t, err)
	return nodes
}

func kinds(nodes []air.Node) []air.Kind {
	out := make([]air.Kind, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind()
	}
	return out
}

func TestVarDeclarationLowering(t *testing.T) {
	nodes := generate(t, `var x = 1;`, options.Default())
	require.Equal(t, []air.Kind{
		air.KindDeclareVariable,
		air.KindPushTemporary,
		air.KindInitializeVariable,
	}, kinds(nodes))
}

func TestReturnByValueEmitsCheckArgument(t *testing.T) {
	nodes := generate(t, `return 1;`, options.Default())
	require.Equal(t, []air.Kind{
		air.KindPushTemporary,
		air.KindCheckArgument,
		air.KindReturnValue,
	}, kinds(nodes))
	require.False(t, nodes[1].(air.CheckArgument).ByRef)
}

func TestBareReturnEmitsReturnVoid(t *testing.T) {
	nodes := generate(t, `return;`, options.Default())
	require.Len(t, nodes, 1)
	ss := nodes[0].(air.SimpleStatus)
	require.Equal(t, air.StatusReturnVoid, ss.Status)
}

// TestTailCallMarking checks the §4.3 rule: only the last unit of a
// returned expression inherits the tail-call mode, and only outside a
// `try` body.
func TestTailCallMarking(t *testing.T) {
	opts := options.Default()
	nodes := generate(t, `func f(n) { return f(n); }`, opts)
	def := nodes[1].(air.DefineFunction)
	var call air.FunctionCall
	for _, n := range def.Body {
		if fc, ok := n.(air.FunctionCall); ok {
			call = fc
		}
	}
	require.NotEqual(t, 0, call.PtcMode, "a returned call is tail-marked")

	nodes = generate(t, `func f(n) { try { return f(n); } catch(e) { return e; } }`, opts)
	def = nodes[1].(air.DefineFunction)
	try := def.Body[0].(air.TryStmt)
	for _, n := range try.TryBody {
		if fc, ok := n.(air.FunctionCall); ok {
			require.Equal(t, 0, fc.PtcMode, "calls inside a try body are never tail calls")
		}
	}
}

func TestStructuredBindingLowering(t *testing.T) {
	nodes := generate(t, `var [a, b] = xs;`, options.Compiler{ImplicitGlobalNames: true})
	ks := kinds(nodes)
	require.Equal(t, air.KindDeclareVariable, ks[0])
	require.Equal(t, air.KindDeclareVariable, ks[1])
	require.Equal(t, air.KindUnpackStructArray, ks[len(ks)-1])
	unpack := nodes[len(nodes)-1].(air.UnpackStructArray)
	require.Equal(t, []string{"a", "b"}, unpack.Names)
}

func TestSwitchBypassedNamesAccumulate(t *testing.T) {
	nodes := generate(t, `switch (1) {
		case 1: var z = 1;
		case 2: var w = 2;
		case 3: ;
	}`, options.Default())
	sw := nodes[0].(air.SwitchStmt)
	require.Len(t, sw.Clauses, 3)
	require.Empty(t, sw.Clauses[0].BypassedNames)
	require.Equal(t, []string{"z"}, sw.Clauses[1].BypassedNames)
	require.Equal(t, []string{"z", "w"}, sw.Clauses[2].BypassedNames)
}

func TestSingleStepTrapsEmittedPerStatement(t *testing.T) {
	opts := options.Default()
	opts.VerboseSingleStepTraps = true
	nodes := generate(t, `var x = 1; x += 1;`, opts)
	traps := 0
	for _, n := range nodes {
		if n.Kind() == air.KindSingleStepTrap {
			traps++
		}
	}
	require.Equal(t, 2, traps)
}

func TestBreakTargetsLowerToDistinctStatuses(t *testing.T) {
	nodes := generate(t, `while (1) { break; }`, options.Default())
	w := nodes[0].(air.WhileStmt)
	ss := w.Body[0].(air.SimpleStatus)
	require.Equal(t, air.StatusBreakUnspec, ss.Status)

	nodes = generate(t, `while (1) { break while; }`, options.Default())
	w = nodes[0].(air.WhileStmt)
	ss = w.Body[0].(air.SimpleStatus)
	require.Equal(t, air.StatusBreakWhile, ss.Status)
}
