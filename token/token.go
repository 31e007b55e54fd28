// Package token turns a source buffer into the ordered sequence of lexemes
// the parser consumes (§4.1). A Stream stores its tokens internally in
// reverse order so that consuming "the next token" is a cheap slice-tail
// pop; that storage choice is private and nothing outside this package
// depends on it.
package token

import (
	"strconv"

	"github.com/asteria-lang/asteria/diag"
)

// Kind discriminates the Token tagged union (§3.2).
type Kind uint8

const (
	KindKeyword Kind = iota
	KindPunctuator
	KindIdentifier
	KindInteger
	KindReal
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindPunctuator:
		return "punctuator"
	case KindIdentifier:
		return "identifier"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Token is one lexeme with its source position and byte length (§3.2).
type Token struct {
	Kind Kind

	Keyword string // valid when Kind == KindKeyword
	Punct   string // valid when Kind == KindPunctuator
	Ident   string // valid when Kind == KindIdentifier
	Int     int64  // valid when Kind == KindInteger
	Real    float64
	Str     string

	Sloc   diag.Loc
	Length int
}

// IsKeyword reports whether this token is the keyword kw.
func (t Token) IsKeyword(kw string) bool { return t.Kind == KindKeyword && t.Keyword == kw }

// IsPunct reports whether this token is the punctuator p.
func (t Token) IsPunct(p string) bool { return t.Kind == KindPunctuator && t.Punct == p }

// String renders the token's literal text, used for diagnostics.
func (t Token) String() string {
	switch t.Kind {
	case KindKeyword:
		return t.Keyword
	case KindPunctuator:
		return t.Punct
	case KindIdentifier:
		return t.Ident
	case KindInteger:
		return strconv.FormatInt(t.Int, 10)
	case KindReal:
		return strconv.FormatFloat(t.Real, 'g', -1, 64)
	case KindString:
		return t.Str
	default:
		return "<?>"
	}
}
