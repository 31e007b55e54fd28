package interp

import (
	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/value"
)

// userFunction is the sole value.Callable implementation this interpreter
// produces: a closure over an AIR body and the ExecutiveContext live at
// DefineFunction time (§3.7, §4.9).
type userFunction struct {
	name     string
	params   []string
	variadic bool
	body     []air.Node
	captured *context.ExecutiveContext
	global   *GlobalContext
}

func (f *userFunction) FuncName() string {
	if f.name != "" {
		return f.name
	}
	return "<closure>"
}

// VisitCaptured conservatively treats every name visible in the closure's
// captured scope chain as reachable through this function (§4.10): it
// does not attempt to track which names the body actually reads, since
// Rebind already snapshots the subset that was proven safe to fold
// (PushBoundReference.Variable) and those are reachable through the AIR
// tree itself, not through this hook. This hook exists for the remaining,
// un-rebound captures a nested/un-optimized body may still reach via
// Depth-walking at execution time.
func (f *userFunction) VisitCaptured(visit func(*value.Variable)) {
	for ctx := f.captured; ctx != nil; ctx = ctx.Parent() {
		ctx.ForEachNamed(func(_ string, slot *context.Reference) {
			if slot.Kind() == context.KindVariable {
				visit(slot.Variable())
			}
		})
	}
}
