package context

import "fmt"

// RecursionSentry tracks stack-base distance for deep calls (§4.6),
// distinct from token.RecursionSentry which guards the compile-time
// recursive-descent parser. One instance is shared across an entire call
// chain so that recursion through any number of intervening Executive
// Contexts is still bounded. It doubles as the registry of live contexts
// the garbage collector enumerates its roots from (§4.10): every context
// is tracked at construction and untracked by Close once its scope has
// fully exited.
type RecursionSentry struct {
	depth int
	limit int
	live  map[*ExecutiveContext]struct{}
}

// NewRecursionSentry returns a sentry with the given depth limit (512 if
// limit <= 0).
func NewRecursionSentry(limit int) *RecursionSentry {
	if limit <= 0 {
		limit = 512
	}
	return &RecursionSentry{limit: limit, live: make(map[*ExecutiveContext]struct{})}
}

// Enter increments the depth counter, returning a matching decrement
// closure, or a runtime error if the configured depth has been exceeded.
func (s *RecursionSentry) Enter() (func(), error) {
	if s.depth >= s.limit {
		return func() {}, fmt.Errorf("recursion depth exceeded %d frames", s.limit)
	}
	s.depth++
	return func() { s.depth-- }, nil
}

func (s *RecursionSentry) Depth() int { return s.depth }

func (s *RecursionSentry) track(ctx *ExecutiveContext) {
	if s.live == nil {
		s.live = make(map[*ExecutiveContext]struct{})
	}
	s.live[ctx] = struct{}{}
}

func (s *RecursionSentry) untrack(ctx *ExecutiveContext) {
	delete(s.live, ctx)
}

// VisitLiveContexts visits every context whose scope has not yet exited,
// in no particular order. The GC's root-enumeration callback walks these
// to seed its mark phase (§4.10).
func (s *RecursionSentry) VisitLiveContexts(visit func(*ExecutiveContext)) {
	for ctx := range s.live {
		visit(ctx)
	}
}
