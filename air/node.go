// Package air implements the Abstract Intermediate Representation (§3.5):
// a language-neutral tree of ~40 typed node kinds that Statement and
// ExpressionUnit values lower themselves into (§4.3), plus the optimizer
// rebind pass that closes over a live execution context (§4.4). Unlike the
// source tree, AIR already carries resolved opcode and reference-depth
// information; the interpreter never looks at a syntax.Statement again.
package air

import (
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/opcode"
	"github.com/asteria-lang/asteria/value"
)

// Kind discriminates the Node sum type, mirroring §3.5's representative
// shapes one-to-one.
type Kind int

const (
	KindClearStack Kind = iota
	KindExecuteBlock
	KindDeclareVariable
	KindInitializeVariable
	KindIfStmt
	KindSwitchStmt
	KindDoWhileStmt
	KindWhileStmt
	KindForEachStmt
	KindForStmt
	KindTryStmt
	KindThrow
	KindAssert
	KindSimpleStatus
	KindCheckArgument
	KindPushGlobalReference
	KindPushLocalReference
	KindPushBoundReference
	KindDefineFunction
	KindBranchExpression
	KindCoalescence
	KindFunctionCall
	KindVariadicCall
	KindImportCall
	KindMemberAccess
	KindPushUnnamedArray
	KindPushUnnamedObject
	KindApplyOperator
	KindUnpackStructArray
	KindUnpackStructObject
	KindDefineNullVariable
	KindSingleStepTrap
	KindDeferExpression
	KindDeclareReference
	KindInitializeReference
	KindCatchExpression
	KindReturnValue
	KindPushTemporary
)

// StatusCode is the closed set of non-"next" control-flow results a node
// sequence can evaluate to (§4.8). SimpleStatus nodes emit one directly;
// every other node implicitly yields StatusNext when it completes without
// raising an error.
type StatusCode int

const (
	StatusNext StatusCode = iota
	StatusReturnVoid
	StatusReturnRef
	StatusBreakUnspec
	StatusBreakSwitch
	StatusBreakWhile
	StatusBreakFor
	StatusContinueUnspec
	StatusContinueWhile
	StatusContinueFor
)

func (s StatusCode) String() string {
	switch s {
	case StatusNext:
		return "next"
	case StatusReturnVoid:
		return "return_void"
	case StatusReturnRef:
		return "return_ref"
	case StatusBreakUnspec:
		return "break_unspec"
	case StatusBreakSwitch:
		return "break_switch"
	case StatusBreakWhile:
		return "break_while"
	case StatusBreakFor:
		return "break_for"
	case StatusContinueUnspec:
		return "continue_unspec"
	case StatusContinueWhile:
		return "continue_while"
	case StatusContinueFor:
		return "continue_for"
	default:
		return "status(?)"
	}
}

// Node is the shared interface for every AIR node kind. Kind, Loc, and
// Terminal correspond to §4.5's get_symbols/make_uparam hooks: Terminal
// reports whether this node unconditionally ends the block it is in
// (a `throw`, a bare `return`, or an `if` whose both branches already do),
// which is exactly the reachability rule the solidifier (package avmc)
// needs for dead-code reporting.
type Node interface {
	Kind() Kind
	Loc() diag.Loc
	Terminal() bool
}

type base struct {
	Sloc diag.Loc
}

func (b base) Loc() diag.Loc { return b.Sloc }
func (base) Terminal() bool  { return false }

// BlockTerminal reports whether executing body always ends via a
// terminal status (so whatever lexically follows it is unreachable),
// i.e. whether its last node is itself Terminal (§4.5).
func BlockTerminal(body []Node) bool {
	if len(body) == 0 {
		return false
	}
	return body[len(body)-1].Terminal()
}

// ClearStack discards the operand stack's contents (used to start a fresh
// expression-statement evaluation, §4.3).
type ClearStack struct{ base }

func (ClearStack) Kind() Kind { return KindClearStack }

// ExecuteBlock runs Body in a fresh nested ExecutiveContext (lexical
// scoping for `{ }`).
type ExecuteBlock struct {
	base
	Body []Node
}

func (ExecuteBlock) Kind() Kind  { return KindExecuteBlock }
func (e ExecuteBlock) Terminal() bool { return BlockTerminal(e.Body) }

// DeclareVariable allocates a fresh, uninitialized Variable named Name in
// the current context (§3.7, §4.6).
type DeclareVariable struct {
	base
	Name string
}

func (DeclareVariable) Kind() Kind { return KindDeclareVariable }

// InitializeVariable pops the operand stack's top value and stores it into
// the most recently declared-but-uninitialized Variable, transitioning it
// to mutable or immutable per Immutable.
type InitializeVariable struct {
	base
	Immutable bool
	// Name identifies which named slot to initialize (generated alongside
	// the matching DeclareVariable).
	Name string
}

func (InitializeVariable) Kind() Kind { return KindInitializeVariable }

// IfStmt: if Negative, the condition's truthiness is inverted before
// branching (§3.4, §3.5). Condition is evaluated in the enclosing scope;
// TrueBody/FalseBody each run in their own nested context.
type IfStmt struct {
	base
	Negative  bool
	Condition []Node
	TrueBody  []Node
	FalseBody []Node
}

func (IfStmt) Kind() Kind { return KindIfStmt }
func (s IfStmt) Terminal() bool {
	return s.FalseBody != nil && BlockTerminal(s.TrueBody) && BlockTerminal(s.FalseBody)
}

// SwitchClause is one `case`/`default` arm of a SwitchStmt. A nil Label
// marks `default`. BypassedNames lists every name declared by an earlier
// clause's body that this clause's body can see lexically but must reject
// reading from until its own DeclareVariable executes (§4.3, §8 scenario 6).
type SwitchClause struct {
	Label         []Node // empty for `default`
	IsDefault     bool
	Body          []Node
	BypassedNames []string
}

// SwitchStmt evaluates Control once, against each clause's Label in turn
// (first strict-equal match wins, `default` if present and none match),
// then falls through from the matching clause onward sharing one
// Executive Context across all clause bodies (§4.3).
type SwitchStmt struct {
	base
	Control []Node
	Clauses []SwitchClause
}

func (SwitchStmt) Kind() Kind { return KindSwitchStmt }

// DoWhileStmt runs Body, then loops while Condition (negated if Negative)
// is truthy.
type DoWhileStmt struct {
	base
	Body      []Node
	Negative  bool
	Condition []Node
}

func (DoWhileStmt) Kind() Kind { return KindDoWhileStmt }

// WhileStmt tests Condition (negated if Negative) before each iteration.
type WhileStmt struct {
	base
	Negative  bool
	Condition []Node
	Body      []Node
}

func (WhileStmt) Kind() Kind { return KindWhileStmt }

// ForEachStmt iterates KeyName/MappedName over the array/object value Init
// evaluates to.
type ForEachStmt struct {
	base
	KeyName    string
	MappedName string
	Init       []Node
	Body       []Node
}

func (ForEachStmt) Kind() Kind { return KindForEachStmt }

// ForStmt is the C-style three-clause loop; Init/Cond/Step may be empty.
type ForStmt struct {
	base
	Init []Node
	Cond []Node
	Step []Node
	Body []Node
}

func (ForStmt) Kind() Kind { return KindForStmt }

// TryStmt: CatchSloc is kept separately from the node's own Sloc (the
// `try` keyword) so that the FrameCatch frame appended to an exception
// raised out of TryBody, before CatchBody runs, reports the `catch`
// clause's own location (§3.4, §4.8, SPEC_FULL.md §C.5); no catch frame
// is appended for an error raised out of CatchBody. TryBody never contains a node whose
// evaluation can produce a PtcArgs status (the compiler enforces this by
// generating every call inside TryBody with ptc_mode = none); CatchBody is
// not so restricted.
type TryStmt struct {
	base
	TryBody    []Node
	CatchSloc  diag.Loc
	ExceptName string
	CatchBody  []Node
}

func (TryStmt) Kind() Kind { return KindTryStmt }

// Throw raises the operand stack's top value as a user-level exception.
type Throw struct{ base }

func (Throw) Kind() Kind     { return KindThrow }
func (Throw) Terminal() bool { return true }

// Assert pops the operand stack's top value; if its truthiness (negated if
// Negative) is false, raises an assertion failure carrying Msg.
type Assert struct {
	base
	Negative bool
	Msg      string
}

func (Assert) Kind() Kind { return KindAssert }

// SimpleStatus emits a non-`next` status directly: this is how `break`,
// `continue`, and a bare `return;` lower (§4.3).
type SimpleStatus struct {
	base
	Status StatusCode
}

func (SimpleStatus) Kind() Kind { return KindSimpleStatus }
func (s SimpleStatus) Terminal() bool { return s.Status != StatusNext }

// CheckArgument converts the operand stack's top reference to a Temporary
// (dereferencing it) when ByRef is false, enforcing return-by-value
// semantics (§4.3); a no-op when ByRef is true.
type CheckArgument struct {
	base
	ByRef bool
}

func (CheckArgument) Kind() Kind { return KindCheckArgument }

// PushGlobalReference pushes a reference resolved by name against the
// global Executive Context, regardless of any intervening lexical scope
// (§3.5, §4.3). Hint caches the named slot index from a previous lookup.
type PushGlobalReference struct {
	base
	Name string
	Hint int
}

func (PushGlobalReference) Kind() Kind { return KindPushGlobalReference }

// PushLocalReference pushes a reference resolved by walking Depth parent
// Executive Contexts up from the current one (§3.5, §4.3).
type PushLocalReference struct {
	base
	Depth int
	Name  string
	Hint  int
}

func (PushLocalReference) Kind() Kind { return KindPushLocalReference }

// PushBoundReference pushes a reference snapshot captured at AIR-optimizer
// time (§4.4): either an actual Variable-backed reference (closure
// capture, Variable set) or — when BoundValue is set instead — a plain
// constant folded in by the rebind pass.
type PushBoundReference struct {
	base
	Variable   *value.Variable // set for a snapshotted closure capture
	BoundValue *value.Value    // set instead of Variable when folded to a constant
	// Name/Depth preserve enough of the original reference for backtraces.
	Name  string
	Depth int
}

func (PushBoundReference) Kind() Kind { return KindPushBoundReference }

// DefineFunction constructs a closure Value capturing the current
// Executive Context and pushes it. QualifiedName is used for backtraces.
type DefineFunction struct {
	base
	QualifiedName string
	Params        []string
	Variadic      bool
	Body          []Node
}

func (DefineFunction) Kind() Kind { return KindDefineFunction }

// BranchExpression is the ternary-like ?:/?= construct. The parser emits
// one BranchExpression after the condition's own reference; execution pops
// that reference and runs one body. If Assign, the chosen branch's result
// is additionally assigned back through that condition reference (the
// `cond ?= a : b` spelling, see syntax package).
type BranchExpression struct {
	base
	Assign    bool
	TrueBody  []Node
	FalseBody []Node
}

func (BranchExpression) Kind() Kind { return KindBranchExpression }

// Coalescence is `??`/`??=`: NullBody only evaluates (and its result
// replaces the stack top) when the preceding value is null.
type Coalescence struct {
	base
	Assign   bool
	NullBody []Node
}

func (Coalescence) Kind() Kind { return KindCoalescence }

// FunctionCall pops Nargs argument references off the operand stack, then
// the callee beneath them, and applies it (§4.9). PtcMode selects whether this
// call trampolines instead of invoking inline.
type FunctionCall struct {
	base
	Nargs   int
	PtcMode int // context.PtcMode, duplicated here to avoid an import cycle
}

func (FunctionCall) Kind() Kind { return KindFunctionCall }
func (f FunctionCall) Terminal() bool { return f.PtcMode != 0 }

// VariadicCall calls a callee with arguments produced by a generator
// (§4.9): the stack top is the generator, beneath it the callee.
type VariadicCall struct {
	base
	PtcMode int
}

func (VariadicCall) Kind() Kind { return KindVariadicCall }
func (v VariadicCall) Terminal() bool { return v.PtcMode != 0 }

// ImportCall resolves a module path (the preceding Nargs+1-th stack
// value) and invokes its compiled top-level function with Nargs trailing
// arguments (§4.9, §6.6).
type ImportCall struct {
	base
	Nargs int
}

func (ImportCall) Kind() Kind { return KindImportCall }

// MemberAccess pushes an object-key Modifier (Name) onto the reference at
// the operand stack's top, without dereferencing it (§4.11).
type MemberAccess struct {
	base
	Name string
}

func (MemberAccess) Kind() Kind { return KindMemberAccess }

// PushUnnamedArray pops Nelems values and pushes a fresh array literal
// built from them, in source order.
type PushUnnamedArray struct {
	base
	Nelems int
}

func (PushUnnamedArray) Kind() Kind { return KindPushUnnamedArray }

// PushUnnamedObject pops len(Keys) values and pushes a fresh object
// literal pairing them with Keys, in source order.
type PushUnnamedObject struct {
	base
	Keys []string
}

func (PushUnnamedObject) Kind() Kind { return KindPushUnnamedObject }

// ApplyOperator pops Op.Arity() operands and applies the opcode's
// semantics (§4.7); Assign marks a compound-assignment spelling (`+=`)
// that additionally commits the result back through the left operand's
// lvalue.
type ApplyOperator struct {
	base
	Op     opcode.Op
	Assign bool
}

func (ApplyOperator) Kind() Kind { return KindApplyOperator }

// UnpackStructArray pops one array value and declares/initializes one
// variable per entry of Names (already DeclareVariable'd) from its elements in order,
// padding with null past the array's length (§3.4, §4.3, §8 scenario 4).
type UnpackStructArray struct {
	base
	Immutable bool
	Names     []string
}

func (UnpackStructArray) Kind() Kind { return KindUnpackStructArray }

// UnpackStructObject pops one object value and declares/initializes one
// variable per key, reading null for an absent field.
type UnpackStructObject struct {
	base
	Immutable bool
	Names     []string
}

func (UnpackStructObject) Kind() Kind { return KindUnpackStructObject }

// DefineNullVariable declares Name and immediately initializes it to null
// (emitted for a `var`/`const` declarator that has no initializer).
type DefineNullVariable struct {
	base
	Immutable bool
	Name      string
}

func (DefineNullVariable) Kind() Kind { return KindDefineNullVariable }

// SingleStepTrap invokes the embedder's OnSingleStepTrap hook (§6.5),
// emitted before each statement expression when
// options.Compiler.VerboseSingleStepTraps is set (§6.1).
type SingleStepTrap struct{ base }

func (SingleStepTrap) Kind() Kind { return KindSingleStepTrap }

// DeferExpression registers Body to run (without its result being
// retained) on any exit from the enclosing scope (§4.8).
type DeferExpression struct {
	base
	Body []Node
}

func (DeferExpression) Kind() Kind { return KindDeferExpression }

// DeclareReference opens a named reference slot in the current context
// without assigning it a value yet (used by `ref NAME = EXPR;`, §3.4).
type DeclareReference struct {
	base
	Name string
}

func (DeclareReference) Kind() Kind { return KindDeclareReference }

// InitializeReference pops the operand stack's top reference (not its
// dereferenced value) and binds it directly to the most recently declared
// reference slot, implementing bind-by-reference semantics.
type InitializeReference struct {
	base
	Name string
}

func (InitializeReference) Kind() Kind { return KindInitializeReference }

// CatchExpression evaluates Body; if it raises an exception, the thrown
// value is pushed as this expression's result instead of propagating.
type CatchExpression struct {
	base
	Body []Node
}

func (CatchExpression) Kind() Kind { return KindCatchExpression }

// ReturnValue converts the operand stack's top reference into the
// function's result (respecting by-ref vs by-value, already enforced by a
// preceding CheckArgument) and emits StatusReturnRef.
type ReturnValue struct{ base }

func (ReturnValue) Kind() Kind     { return KindReturnValue }
func (ReturnValue) Terminal() bool { return true }

// PushTemporary pushes a constant Value, folded in at AIR-generation or
// optimizer time (literals, and rebind-folded constant references).
type PushTemporary struct {
	base
	Value value.Value
}

func (PushTemporary) Kind() Kind { return KindPushTemporary }

// newBase builds the shared base (source location) of a node; it is
// unexported and used only by this package's own generate.go.
func newBase(sloc diag.Loc) base { return base{Sloc: sloc} }
