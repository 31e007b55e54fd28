package token

// keywords is the fixed table identifiers are matched against (§4.1). A
// match becomes a KindKeyword token unless Options.KeywordsAsIdentifiers is
// set, in which case the identifier table always wins (§6.1).
var keywords = map[string]bool{
	"null": true, "true": true, "false": true,
	"var": true, "const": true, "func": true, "ref": true,
	"if": true, "else": true, "switch": true, "case": true, "default": true,
	"do": true, "while": true, "for": true, "each": true,
	"try": true, "catch": true, "break": true, "continue": true,
	"throw": true, "return": true, "assert": true, "defer": true,
	"and": true, "or": true, "not": true,
	"unset": true, "countof": true, "typeof": true,
	"import": true,
}

// IsKeyword reports whether s is a reserved word in the base grammar.
func IsKeyword(s string) bool { return keywords[s] }
