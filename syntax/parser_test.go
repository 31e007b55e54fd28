package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/opcode"
	"github.com/asteria-lang/asteria/options"
	"github.com/asteria-lang/asteria/syntax"
	"github.com/asteria-lang/asteria/token"
)

func parse(t *testing.T, src string) []syntax.Statement {
	t.Helper()
	toks, err := token.Tokenize("p.as", []byte(src), options.Default())
	require.NoError(t, err)
	stmts, err := syntax.NewParser(toks, options.Default(), 0).ParseStatements()
	require.NoError(t, err)
	return stmts
}

// TestExpressionRPNOrdering checks §3.3's contract: within one
// expression, operands precede their operator, and precedence groups the
// multiplication before the addition.
func TestExpressionRPNOrdering(t *testing.T) {
	stmts := parse(t, `1 + 2 * 3;`)
	require.Len(t, stmts, 1)
	es, ok := stmts[0].(*syntax.ExprStmt)
	require.True(t, ok)
	require.Len(t, es.Expr, 5)

	ops := []opcode.Op{}
	for _, u := range es.Expr {
		if oe, ok := u.(*syntax.OperatorExpr); ok {
			ops = append(ops, oe.Op)
		}
	}
	require.Equal(t, []opcode.Op{opcode.Mul, opcode.Add}, ops)
	_, ok = es.Expr[4].(*syntax.OperatorExpr)
	require.True(t, ok, "the lowest-precedence operator comes last")
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	stmts := parse(t, `a = b = 1;`)
	es := stmts[0].(*syntax.ExprStmt)
	// a b 1 assign assign
	last := es.Expr[len(es.Expr)-1].(*syntax.OperatorExpr)
	require.Equal(t, opcode.Assign, last.Op)
	secondLast := es.Expr[len(es.Expr)-2].(*syntax.OperatorExpr)
	require.Equal(t, opcode.Assign, secondLast.Op)
}

func TestTernaryAndCompoundSpelling(t *testing.T) {
	stmts := parse(t, `x ? 1 : 2;`)
	es := stmts[0].(*syntax.ExprStmt)
	branch := es.Expr[len(es.Expr)-1].(*syntax.BranchExpr)
	require.False(t, branch.Assign)

	stmts = parse(t, `x ?= 1 : 2;`)
	es = stmts[0].(*syntax.ExprStmt)
	branch = es.Expr[len(es.Expr)-1].(*syntax.BranchExpr)
	require.True(t, branch.Assign)
}

func TestVariadicCallParsesGeneratorForm(t *testing.T) {
	stmts := parse(t, `f(xs...);`)
	es := stmts[0].(*syntax.ExprStmt)
	_, ok := es.Expr[len(es.Expr)-1].(*syntax.VariadicCallExpr)
	require.True(t, ok)
}

func TestStructuredBindingDeclarators(t *testing.T) {
	stmts := parse(t, `var [a, b] = xs, {c} = o;`)
	vg := stmts[0].(*syntax.VarGroupStmt)
	require.Len(t, vg.Declarators, 2)
	require.True(t, vg.Declarators[0].IsArrayBinding)
	require.Equal(t, []string{"a", "b"}, vg.Declarators[0].Names)
	require.True(t, vg.Declarators[1].IsObjectBinding)
	require.Equal(t, []string{"c"}, vg.Declarators[1].Names)
}

func TestUnmatchedBracketCarriesOpeningLocation(t *testing.T) {
	toks, err := token.Tokenize("p.as", []byte(`func f() { return 1;`), options.Default())
	require.NoError(t, err)
	_, err = syntax.NewParser(toks, options.Default(), 0).ParseStatements()
	require.Error(t, err)

	perr, ok := err.(*diag.ParserError)
	require.True(t, ok)
	require.Equal(t, diag.CodeClosedBraceExpected, perr.Code)
	require.NotNil(t, perr.OpenLoc, "bracketing errors name the unmatched opener")
	require.EqualValues(t, 10, perr.OpenLoc.Column)
}

func TestRecursionSentryRejectsPathologicalNesting(t *testing.T) {
	src := ""
	for i := 0; i < 600; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < 600; i++ {
		src += ")"
	}
	src += ";"
	toks, err := token.Tokenize("deep.as", []byte(src), options.Default())
	require.NoError(t, err)
	_, err = syntax.NewParser(toks, options.Default(), 0).ParseStatements()
	require.Error(t, err)
	perr, ok := err.(*diag.ParserError)
	require.True(t, ok)
	require.Equal(t, diag.CodeTooManyElements, perr.Code)
}

func TestSwitchClauses(t *testing.T) {
	stmts := parse(t, `switch (x) { case 1: break; default: ; }`)
	sw := stmts[0].(*syntax.SwitchStmt)
	require.Len(t, sw.Labels, 2)
	require.NotNil(t, sw.Labels[0])
	require.Nil(t, sw.Labels[1], "a nil label slot marks default")
}
