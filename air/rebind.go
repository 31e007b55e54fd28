package air

import (
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/value"
)

// Rebind implements a conservative slice of the §4.4 AIR optimizer: given
// the ExecutiveContext a top-level body's closure captures (Script.Reload
// and LoadModule pass the global root context; DefineFunction does not
// call Rebind), it rewrites PushLocalReference nodes that resolve to a
// strictly enclosing scope (Depth >= 1) into a PushBoundReference that
// already carries the target Variable, so the interpreter never walks
// the parent chain for that read again.
//
// Depth numbering is only stable across node lists that execute directly
// against captured (no intervening child ExecutiveContext): a function
// body's own top-level statements, and the condition/control expression
// lists of its control-flow statements, which the generator always lowers
// against the enclosing scope rather than a nested one (see generate.go).
// Nested block, branch, and loop bodies, and a `for` loop's Cond/Step
// lists (lowered against the loop's own scope), run in a child context one
// level deeper than captured, so Rebind does not recurse into them —
// their PushLocalReference nodes are left for the interpreter to resolve
// at Depth-walk time. This under-optimizes nested scopes rather than
// risk rebinding against the wrong frame.
func Rebind(body []Node, captured *context.ExecutiveContext, optimizationLevel int) []Node {
	if optimizationLevel < 1 || captured == nil {
		return body
	}
	out := make([]Node, len(body))
	for i, n := range body {
		out[i] = rebindNode(n, captured)
	}
	return out
}

func rebindNode(n Node, captured *context.ExecutiveContext) Node {
	switch t := n.(type) {
	case PushLocalReference:
		if bound, ok := tryBind(t, captured); ok {
			return bound
		}
		return t
	case IfStmt:
		t.Condition = rebindInPlace(t.Condition, captured)
		return t
	case SwitchStmt:
		t.Control = rebindInPlace(t.Control, captured)
		return t
	case DoWhileStmt:
		t.Condition = rebindInPlace(t.Condition, captured)
		return t
	case WhileStmt:
		t.Condition = rebindInPlace(t.Condition, captured)
		return t
	case ForEachStmt:
		t.Init = rebindInPlace(t.Init, captured)
		return t
	default:
		return n
	}
}

func rebindInPlace(nodes []Node, captured *context.ExecutiveContext) []Node {
	if nodes == nil {
		return nil
	}
	return Rebind(nodes, captured, 1)
}

// tryBind walks Depth-1 parents from captured (captured itself stands in
// for the closure's eventual depth-0 frame's immediate parent) and, if the
// name resolves to a plain Variable-backed reference there with no
// modifier chain, snapshots it: an already-initialized immutable variable
// folds straight to its Value, anything else keeps the live Variable cell.
func tryBind(ref PushLocalReference, captured *context.ExecutiveContext) (PushBoundReference, bool) {
	if ref.Depth < 1 {
		return PushBoundReference{}, false
	}
	ctx := captured
	for hops := ref.Depth - 1; hops > 0 && ctx != nil; hops-- {
		ctx = ctx.Parent()
	}
	if ctx == nil {
		return PushBoundReference{}, false
	}
	slot, _, ok := ctx.GetNamedReferenceWithHint(-1, ref.Name)
	if !ok {
		return PushBoundReference{}, false
	}
	r := *slot
	if r.Kind() != context.KindVariable || len(r.Modifiers()) != 0 {
		return PushBoundReference{}, false
	}
	v := r.Variable()
	out := PushBoundReference{base: base{Sloc: ref.Sloc}, Name: ref.Name, Depth: ref.Depth}
	if v.State() == value.StateImmutable {
		if val, ok := v.Get(); ok {
			out.BoundValue = &val
			return out, true
		}
	}
	v.Retain()
	out.Variable = v
	return out, true
}
