package context

import (
	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/internal/container"
	"github.com/asteria-lang/asteria/value"
)

// DeferredExpr is one entry of a context's deferred-expression queue
// (§3.9, §4.8). Run receives the context the closure was deferred in, so
// it can push its result as if evaluated inline.
type DeferredExpr struct {
	Sloc diag.Loc
	Run  func(ctx *ExecutiveContext) error
}

// ExecutiveContext is the run-time counterpart of AnalyticContext (§3.9):
// an ordered table of named references, an operand stack, an alternate
// stack used for argument marshalling, and a LIFO queue of deferred
// expressions. Contexts form a lexical parent chain mirroring the
// analytic scopes the AIR was generated against.
//
// The operand and alternate stacks are owned per function frame, not per
// lexical scope: a nested block context shares its frame's stacks, so
// that a `return` evaluated inside a nested block leaves its result where
// the function-call machinery expects to find it. Only NewFunctionContext
// (and a parentless context) allocates fresh stacks.
type ExecutiveContext struct {
	parent *ExecutiveContext

	named    container.OrderedMap[string, *Reference]
	operand  *container.Stack[Reference]
	alt      *container.Stack[Reference]
	deferred []DeferredExpr

	sentry *RecursionSentry
	closed bool
}

// NewExecutiveContext returns a fresh context chained to parent (nil for
// the top-level / global context), sharing parent's operand/alternate
// stacks. sentry is shared across the whole call chain so that deep
// recursion is detected regardless of which context created it (§4.6);
// it also tracks the set of live contexts for GC root enumeration.
func NewExecutiveContext(parent *ExecutiveContext, sentry *RecursionSentry) *ExecutiveContext {
	ctx := &ExecutiveContext{
		parent: parent,
		named:  container.NewOrderedMap[string, *Reference](),
		sentry: sentry,
	}
	if parent != nil {
		ctx.operand = parent.operand
		ctx.alt = parent.alt
	} else {
		ctx.operand = &container.Stack[Reference]{}
		ctx.alt = &container.Stack[Reference]{}
	}
	if sentry != nil {
		sentry.track(ctx)
	}
	return ctx
}

// NewFunctionContext returns a context for a fresh function frame: it
// chains lexically to parent (the closure's captured scope) but owns its
// own operand and alternate stacks, so the callee's stack traffic never
// disturbs the caller's in-progress expression (§4.9).
func NewFunctionContext(parent *ExecutiveContext, sentry *RecursionSentry) *ExecutiveContext {
	ctx := &ExecutiveContext{
		parent:  parent,
		named:   container.NewOrderedMap[string, *Reference](),
		sentry:  sentry,
		operand: &container.Stack[Reference]{},
		alt:     &container.Stack[Reference]{},
	}
	if sentry != nil {
		sentry.track(ctx)
	}
	return ctx
}

func (ctx *ExecutiveContext) Parent() *ExecutiveContext { return ctx.parent }

// Close removes this context from the live set the GC enumerates roots
// from. Called once the scope has fully exited (deferred expressions
// included); variables still reachable through a captured closure remain
// reachable via the closure value's own graph.
func (ctx *ExecutiveContext) Close() {
	if ctx.closed {
		return
	}
	ctx.closed = true
	if ctx.sentry != nil {
		ctx.sentry.untrack(ctx)
	}
}

// OpenNamedReference returns the mutable slot for name, inserting a
// sentinel Invalid reference if this is the first mention in this
// context's own scope (§4.6). It never consults the parent chain: that is
// the analytic context's job at compile time.
func (ctx *ExecutiveContext) OpenNamedReference(name string) *Reference {
	if slot, ok := ctx.named.Get(name); ok {
		return slot
	}
	slot := new(Reference)
	*slot = Invalid()
	ctx.named.Set(name, slot)
	return slot
}

// GetNamedReferenceWithHint looks up name, first validating hint (a slot
// index cached by the caller from a previous lookup of the same name) and
// falling back to the ordered map's own index. It returns the slot, the
// hint to cache for next time, and whether the name was found in this
// context's own scope.
func (ctx *ExecutiveContext) GetNamedReferenceWithHint(hint int, name string) (*Reference, int, bool) {
	if k, v, ok := ctx.named.GetAt(hint); ok && k == name {
		return v, hint, true
	}
	if i, ok := ctx.named.IndexOf(name); ok {
		_, v, _ := ctx.named.GetAt(i)
		return v, i, true
	}
	return nil, -1, false
}

// ForEachNamed visits every reference slot declared directly in this
// context's own scope (not the parent chain). Used by a closure's
// VisitCaptured to feed the GC's explicit-stack traversal (§4.10): a
// closure conservatively treats every name visible in its captured scope
// chain as potentially captured, rather than tracking precise use sites.
func (ctx *ExecutiveContext) ForEachNamed(visit func(name string, slot *Reference)) {
	for _, name := range ctx.named.Keys() {
		if slot, ok := ctx.named.Get(name); ok {
			visit(name, slot)
		}
	}
}

// VisitRoots feeds the GC's mark phase (§4.10) everything this context
// holds alive directly: Variables bound in named slots and on the operand
// and alternate stacks, plus the Values of temporaries and pending tail
// calls, whose graphs may in turn reach further Variables through
// closures.
func (ctx *ExecutiveContext) VisitRoots(markVar func(*value.Variable), markVal func(value.Value)) {
	visitRef := func(r *Reference) {
		switch r.kind {
		case KindVariable:
			markVar(r.variable)
		case KindTemporary:
			markVal(r.temp)
		case KindPtcArgs:
			markVal(value.FromFunction(r.ptc.Callee))
			for i := range r.ptc.ArgStack {
				arg := r.ptc.ArgStack[i]
				switch arg.kind {
				case KindVariable:
					markVar(arg.variable)
				case KindTemporary:
					markVal(arg.temp)
				}
			}
		}
	}
	ctx.ForEachNamed(func(_ string, slot *Reference) { visitRef(slot) })
	for _, r := range ctx.operand.Slice() {
		r := r
		visitRef(&r)
	}
	for _, r := range ctx.alt.Slice() {
		r := r
		visitRef(&r)
	}
}

// OperandStack returns the reference/value stack opcodes push onto and
// pop from (§3.9); shared by every lexical scope of one function frame.
func (ctx *ExecutiveContext) OperandStack() *container.Stack[Reference] { return ctx.operand }

// AltStack returns the alternate stack used for argument marshalling
// during a function call (§3.9, §4.9).
func (ctx *ExecutiveContext) AltStack() *container.Stack[Reference] { return ctx.alt }

// Sentry returns the shared recursion sentry for this call chain.
func (ctx *ExecutiveContext) Sentry() *RecursionSentry { return ctx.sentry }

// DeferExpression pushes a closure to run on scope exit (§4.6, §4.8).
func (ctx *ExecutiveContext) DeferExpression(sloc diag.Loc, run func(ctx *ExecutiveContext) error) {
	ctx.deferred = append(ctx.deferred, DeferredExpr{Sloc: sloc, Run: run})
}

// OnScopeExitStatus runs deferred expressions in LIFO order on a normal
// (non-exceptional) scope exit. If a deferred expression itself errors,
// that error supersedes status and further deferred expressions still
// run (§3.9, §4.6).
func (ctx *ExecutiveContext) OnScopeExitStatus(status error) error {
	for i := len(ctx.deferred) - 1; i >= 0; i-- {
		d := ctx.deferred[i]
		if err := d.Run(ctx); err != nil {
			status = err
		}
	}
	ctx.deferred = nil
	return status
}

// OnScopeExitException runs deferred expressions during exception
// propagation; a new exception raised by a deferred expression replaces
// the in-flight one (§3.9, §4.8).
func (ctx *ExecutiveContext) OnScopeExitException(exc error) error {
	for i := len(ctx.deferred) - 1; i >= 0; i-- {
		d := ctx.deferred[i]
		if err := d.Run(ctx); err != nil {
			exc = err
		}
	}
	ctx.deferred = nil
	return exc
}
