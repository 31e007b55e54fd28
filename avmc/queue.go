// Package avmc implements the "solidification" step (§4.5): turning an AIR
// node list into the compact form the interpreter actually executes.
//
// The original design packs each AIR node's dispatch behavior directly
// into a header (a function pointer plus a union of "uparam"/"sparam"
// fields) so that execution never type-switches again. Go has no function
// pointers with that shape, and a type-switch is the idiomatic
// replacement for a vtable here — so avmc.Queue stays a thin wrapper: the
// node list itself, plus the one piece of information solidification can
// usefully precompute once instead of on every execution, reachability
// (§4.5's "reachable=false" dead-code hint). The actual per-Kind dispatch
// logic lives in package interp as a type-switch, which is where a
// function-pointer table's bodies would have lived anyway.
package avmc

import "github.com/asteria-lang/asteria/air"

// Queue is a solidified node sequence ready for execution.
type Queue struct {
	Nodes []air.Node
	// Reachable[i] is false when Nodes[i] can never run because an
	// earlier node in the sequence is Terminal() (§4.5).
	Reachable []bool
}

// Solidify walks body once and precomputes reachability. It does not
// mutate or reorder nodes; dead nodes stay in the queue (so backtraces
// and tests can still see them) but are marked unreachable.
func Solidify(body []air.Node) Queue {
	reachable := make([]bool, len(body))
	dead := false
	for i, n := range body {
		reachable[i] = !dead
		if n.Terminal() {
			dead = true
		}
	}
	return Queue{Nodes: body, Reachable: reachable}
}

// Len returns the number of nodes in the queue.
func (q Queue) Len() int { return len(q.Nodes) }

// DeadCode returns every node solidification determined to be
// unreachable (each carries its own source location), for diagnostics (§6.3).
func (q Queue) DeadCode() []air.Node {
	var out []air.Node
	for i, n := range q.Nodes {
		if !q.Reachable[i] {
			out = append(out, n)
		}
	}
	return out
}
