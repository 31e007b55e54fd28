// Package roundtrip is an independently-specified re-lexer used only by
// tests (§8: "Lexical: parse(render_tokens(tokens)) == tokens"). It is
// deliberately not built on package token's hand-rolled scanner: it uses
// goparsec combinators in the style of the teacher's pkg/jack, pkg/vm, and
// pkg/asm parsers (ast.OrdChoice/ast.ManyUntil over pc.Token/pc.Atom
// alternatives) so that a bug shared by both lexers is unlikely to also be
// shared by this one.
//
// It cannot and does not replace the primary lexer/parser: goparsec
// produces a generic, untyped pc.Queryable tree, not the reversed
// token.Stream the rest of the compiler consumes, and it has no notion of
// the precise per-character ParserError codes or unmatched-bracket
// companion locations §4.1/§4.2/§6.3 require. Its only job is to count
// and classify the lexemes in a rendering of a token.Stream and confirm
// an independent grammar agrees on how many tokens there are and what
// kind each one is.
package roundtrip

import (
	"sort"
	"strconv"
	"strings"

	pc "github.com/prataprc/goparsec"

	"github.com/asteria-lang/asteria/token"
)

var ast = pc.NewAST("asteria_roundtrip", 0)

var (
	// Leading '-' is optional: Render emits a negative numeric literal as
	// one contiguous token (the lexer folds a sign into the literal per
	// §4.1), never separated from its digits by the single space Render
	// inserts between distinct tokens, so no ambiguity with a standalone
	// '-' punctuator arises.
	pReal = pc.Token(`-?[0-9]+\.[0-9]+([eE][+-]?[0-9]+)?`, "REAL")
	pInt  = pc.Token(`-?[0-9]+`, "INT")
	// String rendering always double-quotes and backslash-escapes
	// embedded quotes/backslashes (see Render), so the independent
	// grammar only needs to undo that one escaping scheme.
	pString = pc.Token(`"(?:\\.|[^"\\])*"`, "STRING")
	pIdent  = pc.Token(`[A-Za-z_][A-Za-z_0-9]*`, "IDENT")
	pPunct  = pc.Token(punctuatorAlternation(), "PUNCT")

	pToken   = ast.OrdChoice("token", nil, pReal, pInt, pString, pIdent, pPunct)
	pProgram = ast.ManyUntil("program", nil, pToken, pc.End())
)

// punctuatorTable mirrors package token's own table (§4.1's
// longest-match rule); kept as a literal copy rather than an import since
// this package exists to be an *independent* check, not a client of the
// production lexer's internals (package token's table is unexported).
var punctuatorTable = []string{
	"++", "--", "[", "]", "(", ")", "{", "}", ".", ",", ";", ":",
	"[^]", "[$]", "[?]",
	"+", "-", "~", "!",
	"*", "/", "%",
	"<<<=", ">>>=", "<<=", ">>=", "<<<", ">>>", "<<", ">>",
	"&", "|", "^",
	"<=>", "</>", "<=", ">=", "<", ">",
	"==", "!=",
	"&&=", "||=", "&&", "||",
	"??=", "??",
	"?=", "?", "...",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "=",
}

// punctuatorAlternation builds a regexp alternation of every punctuator,
// longest first so the engine's leftmost-alternative-wins rule doubles as
// the longest-match rule (§4.1).
func punctuatorAlternation() string {
	sorted := append([]string(nil), punctuatorTable...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = regexpQuote(p)
	}
	return strings.Join(parts, "|")
}

func regexpQuote(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '.', '+', '*', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Render turns a token.Stream into whitespace-separated canonical source
// text (§8's render_tokens): the exact spellings don't need to match the
// original source, only re-lex to the same token kinds in the same order.
func Render(toks []token.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		switch t.Kind {
		case token.KindKeyword:
			parts[i] = t.Keyword
		case token.KindPunctuator:
			parts[i] = t.Punct
		case token.KindIdentifier:
			parts[i] = t.Ident
		case token.KindInteger:
			parts[i] = strconv.FormatInt(t.Int, 10)
		case token.KindReal:
			parts[i] = strconv.FormatFloat(t.Real, 'g', -1, 64)
			if !strings.ContainsAny(parts[i], ".eE") {
				parts[i] += ".0"
			}
		case token.KindString:
			parts[i] = strconv.Quote(t.Str)
		}
	}
	return strings.Join(parts, " ")
}

// Kind classifies one leaf the independent grammar recognized.
type Kind int

const (
	KindInt Kind = iota
	KindRealK
	KindStringK
	KindIdentK
	KindPunctK
)

// Lex re-lexes src with the goparsec grammar above and returns the
// sequence of Kinds it recognized, or ok=false if the grammar could not
// consume the whole input (a leftover/unparsed suffix).
func Lex(src string) (kinds []Kind, ok bool) {
	root, _ := ast.Parsewith(pProgram, pc.NewScanner([]byte(src)))
	if root == nil || root.GetName() != "program" {
		return nil, false
	}
	for _, child := range root.GetChildren() {
		switch child.GetName() {
		case "INT":
			kinds = append(kinds, KindInt)
		case "REAL":
			kinds = append(kinds, KindRealK)
		case "STRING":
			kinds = append(kinds, KindStringK)
		case "IDENT":
			kinds = append(kinds, KindIdentK)
		case "PUNCT":
			kinds = append(kinds, KindPunctK)
		default:
			return nil, false
		}
	}
	return kinds, true
}

// kindOf maps a token.Kind onto the Kind this package's grammar produces;
// keyword tokens re-lex as plain identifiers since the independent
// grammar has no keyword table of its own (§4.1's keyword recognition is
// a semantic overlay on top of identifiers, not a distinct lexeme class).
func kindOf(t token.Token) Kind {
	switch t.Kind {
	case token.KindInteger:
		return KindInt
	case token.KindReal:
		return KindRealK
	case token.KindString:
		return KindStringK
	case token.KindPunctuator:
		return KindPunctK
	default: // keyword or identifier
		return KindIdentK
	}
}

// Agrees reports whether re-lexing Render(toks) with the independent
// goparsec grammar yields the same sequence of kinds as toks itself
// (§8's round-trip property, loosened from token-for-token equality to
// kind-for-kind agreement since the two grammars don't share a token
// representation).
func Agrees(toks []token.Token) bool {
	kinds, ok := Lex(Render(toks))
	if !ok || len(kinds) != len(toks) {
		return false
	}
	for i, t := range toks {
		if kinds[i] != kindOf(t) {
			return false
		}
	}
	return true
}
