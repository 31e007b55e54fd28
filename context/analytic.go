package context

import "github.com/asteria-lang/asteria/internal/container"

// AnalyticSlot is what a name resolves to within an analytic context: just
// enough information for AIR generation to tell a local slot from one
// that must fall back to a global reference (§3.9, §4.3).
type AnalyticSlot struct {
	// Depth is how many parent hops away from the context that declared
	// this name the reference site is; 0 means declared in the current
	// scope.
	Depth int
}

// AnalyticContext is the compile-time counterpart of ExecutiveContext
// (§3.9): a table of declared names, a parent pointer, and a flag marking
// a function-body scope (so name resolution knows when it has crossed a
// closure boundary while computing Depth, needed by the AIR optimizer's
// rebind pass, §4.4).
type AnalyticContext struct {
	parent         *AnalyticContext
	names          container.OrderedMap[string, AnalyticSlot]
	isFunctionBody bool
}

// NewAnalyticContext returns a fresh scope chained to parent.
func NewAnalyticContext(parent *AnalyticContext, isFunctionBody bool) *AnalyticContext {
	return &AnalyticContext{
		parent:         parent,
		names:          container.NewOrderedMap[string, AnalyticSlot](),
		isFunctionBody: isFunctionBody,
	}
}

func (ac *AnalyticContext) Parent() *AnalyticContext { return ac.parent }
func (ac *AnalyticContext) IsFunctionBody() bool     { return ac.isFunctionBody }

// Declare records name as declared in this scope.
func (ac *AnalyticContext) Declare(name string) {
	ac.names.Set(name, AnalyticSlot{})
}

// Resolve walks the parent chain looking for name, returning the number
// of hops it took to find it (§4.3: "records the depth at which the name
// was found").
func (ac *AnalyticContext) Resolve(name string) (depth int, found bool) {
	for cur := ac; cur != nil; cur = cur.parent {
		if _, ok := cur.names.Get(name); ok {
			return depth, true
		}
		depth++
	}
	return 0, false
}

// CrossesFunctionBoundary reports whether resolving name from this scope
// passes through at least one function-body boundary before it is found,
// which the AIR optimizer's rebind pass (§4.4) uses to decide whether a
// bound reference must be snapshotted (closure capture) rather than left
// as a direct parent-frame access.
func (ac *AnalyticContext) CrossesFunctionBoundary(name string) bool {
	for cur := ac; cur != nil; cur = cur.parent {
		if _, ok := cur.names.Get(name); ok {
			return false
		}
		if cur.isFunctionBody {
			return true
		}
	}
	return false
}
