package token

import "github.com/asteria-lang/asteria/diag"

// RecursionSentry guards recursive-descent productions against unbounded
// input (e.g. "((((((...") by counting nesting depth rather than relying
// on the host stack to overflow first (§4.1, §4.2). The parser enters the
// sentry in parseStatement and parsePrimary and leaves it on return; its
// other recursive productions are not counted.
type RecursionSentry struct {
	depth int
	limit int
}

// NewRecursionSentry returns a sentry with the given maximum depth. A limit
// of 0 selects a generous default suitable for hand-written scripts.
func NewRecursionSentry(limit int) RecursionSentry {
	if limit <= 0 {
		limit = 512
	}
	return RecursionSentry{limit: limit}
}

// Enter increments the depth counter, raising CodeTooManyElements once the
// limit is exceeded.
func (s *RecursionSentry) Enter(loc diag.Loc) (func(), error) {
	s.depth++
	if s.depth > s.limit {
		s.depth--
		return func() {}, &diag.ParserError{Code: diag.CodeTooManyElements, Loc: loc}
	}
	return func() { s.depth-- }, nil
}

// Depth reports the current nesting depth.
func (s *RecursionSentry) Depth() int { return s.depth }
