// Package syntax implements the recursive-descent statement-sequence
// parser (§4.2): it turns a token.Stream into a tree of Statement and
// Expr ("Expression Unit", §3.3) nodes. Each sub-expression is emitted in
// reverse-Polish order (operator after its operands), exactly as the
// eventual AIR lowering pass expects.
package syntax

import (
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/opcode"
	"github.com/asteria-lang/asteria/value"
)

// Expr is the shared interface for every expression-unit kind (§3.3). It
// follows the teacher's sum-type idiom (a marker interface plus one
// concrete struct per variant) rather than a single tagged struct, so that
// each kind only carries the fields it actually needs.
type Expr interface {
	Loc() diag.Loc
	exprNode()
}

type exprBase struct{ Sloc diag.Loc }

func (e exprBase) Loc() diag.Loc { return e.Sloc }
func (exprBase) exprNode()       {}

// LiteralExpr pushes a constant value (null, boolean, integer, real, or
// string) produced directly by the tokenizer.
type LiteralExpr struct {
	exprBase
	Value value.Value
}

// LocalRefExpr reads a name resolved (at AIR-generation time) against the
// enclosing analytic scope chain.
type LocalRefExpr struct {
	exprBase
	Name string
}

// GlobalRefExpr reads a name that is known, at parse time, to be global
// (never found in an enclosing analytic scope).
type GlobalRefExpr struct {
	exprBase
	Name string
}

// ClosureExpr is a function literal: parameters, body, and a synthetic
// name used for backtraces (e.g. "<closure at file:line:col>").
type ClosureExpr struct {
	exprBase
	Params       []string
	Variadic     bool
	Body         []Statement
	SyntheticName string
}

// BranchExpr is the ternary-like `cond ? a : b` / `cond ?= a : b`
// construct: two sub-expression sequences, with an Assign flag marking the
// `?=` compound-assignment spelling.
type BranchExpr struct {
	exprBase
	TrueBranch  []Expr
	FalseBranch []Expr
	Assign      bool
}

// CallExpr applies the callee (and `nargs` preceding arguments, already on
// the stack in RPN order) as a function call.
type CallExpr struct {
	exprBase
	Nargs int
}

// MemberExpr accesses a named member/field of the preceding value.
type MemberExpr struct {
	exprBase
	Name string
}

// OperatorExpr applies one RPN opcode to the operands already produced.
type OperatorExpr struct {
	exprBase
	Op     opcode.Op
	Assign bool // true for the compound-assignment spelling (e.g. `+=`)
}

// ArrayExpr constructs an array literal from the preceding `Nelems`
// elements.
type ArrayExpr struct {
	exprBase
	Nelems int
}

// ObjectExpr constructs an object literal; Keys gives the field names in
// source order, matching the preceding value-producing expressions.
type ObjectExpr struct {
	exprBase
	Keys []string
}

// CoalescenceExpr is the `??` / `??=` operator: NullBranch only evaluates
// when the preceding value is null.
type CoalescenceExpr struct {
	exprBase
	NullBranch []Expr
	Assign     bool
}

// VariadicCallExpr calls a callee with arguments produced by a generator
// (an array, or a callable invoked to discover a count and then indexed).
type VariadicCallExpr struct {
	exprBase
}

// ArgFinishExpr marks that the preceding expression produced one complete
// call argument, carrying whether that argument binds by reference.
type ArgFinishExpr struct {
	exprBase
	ByRef bool
}

// ImportCallExpr is a call to the `import` builtin with `Nargs` trailing
// arguments after the module path.
type ImportCallExpr struct {
	exprBase
	Nargs int
}

// CatchExpr evaluates Body and, if it throws, materializes the thrown
// value as this expression's result instead of propagating.
type CatchExpr struct {
	exprBase
	Body []Expr
}
