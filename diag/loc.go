// Package diag holds the small data types shared by every layer of the
// Asteria pipeline: source locations, the parser and runtime error
// taxonomies, and the interpreter's hook interface (§3.1, §6.3, §6.4, §6.5).
package diag

import "fmt"

// Loc is a source location, a tuple (file, line, column). A zero Line marks
// a synthetic location (one that was not read out of a real source file,
// e.g. a compiler-injected node).
type Loc struct {
	File   string
	Line   int32
	Column int32
}

// Synthetic returns a Loc with Line == 0, meaning "no real source position".
func Synthetic(file string) Loc { return Loc{File: file} }

// IsSynthetic reports whether the location was compiler-injected.
func (l Loc) IsSynthetic() bool { return l.Line == 0 }

// String renders "file:line:column".
func (l Loc) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}
