package token

import "sort"

// punctuatorTable lists every punctuator spelling recognized by the
// tokenizer. The longest-prefix-match rule (§4.1) is mandatory: "<<<=" must
// win over "<<<" which must win over "<<" which must win over "<".
var punctuatorTable = []string{
	// postfix / grouping
	"++", "--", "[", "]", "(", ")", "{", "}", ".", ",", ";", ":",
	"[^]", "[$]", "[?]",
	// prefix
	"+", "-", "~", "!",
	// multiplicative / additive
	"*", "/", "%",
	// shifts: "<<"/">>" logical, "<<<"/">>>" arithmetic
	"<<<=", ">>>=", "<<=", ">>=", "<<<", ">>>", "<<", ">>",
	// bitwise
	"&", "|", "^",
	// relational
	"<=>", "</>", "<=", ">=", "<", ">",
	// equality
	"==", "!=",
	// logical
	"&&=", "||=", "&&", "||",
	// coalescence
	"??=", "??",
	// ternary / variadic
	"?=", "?", "...", "…",
	// assignment family
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "=",
}

func init() {
	sort.Slice(punctuatorTable, func(i, j int) bool {
		return len(punctuatorTable[i]) > len(punctuatorTable[j])
	})
}

// matchPunctuator returns the longest punctuator spelling that is a prefix
// of src, or "" if none matches.
func matchPunctuator(src string) string {
	for _, p := range punctuatorTable {
		if len(p) <= len(src) && src[:len(p)] == p {
			return p
		}
	}
	return ""
}
