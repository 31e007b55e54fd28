package syntax

import "github.com/asteria-lang/asteria/diag"

// Statement is the shared interface for every statement kind (§3.4),
// following the same sum-type idiom as Expr.
type Statement interface {
	Loc() diag.Loc
	stmtNode()
}

type stmtBase struct{ Sloc diag.Loc }

func (s stmtBase) Loc() diag.Loc { return s.Sloc }
func (stmtBase) stmtNode()       {}

// ExprStmt discards the result of an expression sequence.
type ExprStmt struct {
	stmtBase
	Expr []Expr
}

// BlockStmt is a lexically scoped sequence of statements.
type BlockStmt struct {
	stmtBase
	Body []Statement
}

// Declarator is one name-or-structured-binding target of a VarGroupStmt
// (§3.4): either a single name, or a bracketed (`[a, b]`, array) / braced
// (`{a, b}`, object) list of names.
type Declarator struct {
	Sloc diag.Loc
	Name string // set when this is a plain single-name declarator

	// Structured bindings (mutually exclusive with Name being set):
	IsArrayBinding  bool
	IsObjectBinding bool
	Names           []string // element/field names, in source order
}

// VarGroupStmt is a `var`/`const` declaration list: parallel slices of
// declarators and initializer expression sequences (§3.4, §4.3).
type VarGroupStmt struct {
	stmtBase
	Immutable    bool
	Declarators  []Declarator
	Initializers [][]Expr
}

// FuncDeclStmt is a named function declaration, sugar for a VarGroupStmt
// binding a ClosureExpr, kept distinct because it is hoisted (§6.2).
type FuncDeclStmt struct {
	stmtBase
	Name     string
	Params   []string
	Variadic bool
	Body     []Statement
}

// IfStmt: an optional `!` negates the condition's truthiness test (§3.4).
type IfStmt struct {
	stmtBase
	Negative    bool
	Condition   []Expr
	TrueBranch  []Statement
	FalseBranch []Statement // nil if there is no else-clause
}

// SwitchStmt: parallel label expressions and clause bodies; a nil label
// expression slot marks the `default` clause.
type SwitchStmt struct {
	stmtBase
	Control []Expr
	Labels  [][]Expr
	Bodies  [][]Statement
}

// DoWhileStmt evaluates Body at least once before testing Condition.
type DoWhileStmt struct {
	stmtBase
	Body      []Statement
	Negative  bool
	Condition []Expr
}

// WhileStmt tests Condition before every iteration.
type WhileStmt struct {
	stmtBase
	Negative  bool
	Condition []Expr
	Body      []Statement
}

// ForEachStmt iterates KeyName/MappedName over Range (an array or object).
type ForEachStmt struct {
	stmtBase
	KeyName    string
	MappedName string
	Range      []Expr
	Body       []Statement
}

// ForStmt is the C-style three-clause loop. Init may be a VarGroupStmt or
// an ExprStmt; Cond/Step are expression sequences (either may be empty).
type ForStmt struct {
	stmtBase
	Init Statement
	Cond []Expr
	Step []Expr
	Body []Statement
}

// LoopKind tags which loop construct break/continue targets (§3.4).
type LoopKind uint8

const (
	LoopUnspec LoopKind = iota
	LoopSwitch
	LoopWhile
	LoopFor
)

// TryStmt: the statement's own Sloc (the `try` keyword) and CatchSloc are
// kept separately because the catch backtrace frame reports the catch
// clause's own location (§3.4, §4.8).
type TryStmt struct {
	stmtBase
	CatchSloc   diag.Loc
	TryBody     []Statement
	ExceptName  string
	CatchBody   []Statement
}

// BreakStmt / ContinueStmt carry the loop kind the parser determined the
// statement targets (possibly LoopUnspec, meaning "innermost").
type BreakStmt struct {
	stmtBase
	Target LoopKind
}

type ContinueStmt struct {
	stmtBase
	Target LoopKind
}

// ThrowStmt raises Expr as an exception (§4.8).
type ThrowStmt struct {
	stmtBase
	Expr []Expr
}

// ReturnStmt: ByRef marks `return ref EXPR;`; Expr is empty for a bare
// `return;` (§4.3: lowers to SimpleStatus(return_void)).
type ReturnStmt struct {
	stmtBase
	ByRef bool
	Expr  []Expr
}

// AssertStmt checks Condition and, on failure, raises an exception
// carrying Message.
type AssertStmt struct {
	stmtBase
	Condition []Expr
	Message   string
}

// DeferStmt registers Expr to run on scope exit (§4.8). Throws marks the
// `defer throw EXPR;` spelling, whose evaluation raises the expression's
// value instead of discarding it (superseding whatever status or
// exception the scope was exiting with).
type DeferStmt struct {
	stmtBase
	Throws bool
	Expr   []Expr
}

// RefGroupStmt binds Name to Ref by reference rather than by value
// (the `ref NAME = EXPR;` form).
type RefGroupStmt struct {
	stmtBase
	Name string
	Ref  []Expr
}
