package token

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/asteria-lang/asteria/diag"
	"github.com/asteria-lang/asteria/options"
)

// Stream is the ordered sequence of Tokens produced by Tokenize. Tokens are
// stored reversed internally so Pop is an O(1) tail-slice operation; this
// is a private storage choice, not part of the public contract.
type Stream struct {
	rev []Token // tokens in reverse source order; rev[len-1] is "next"
}

// Len reports how many tokens remain unconsumed.
func (s *Stream) Len() int { return len(s.rev) }

// Empty reports whether the stream has been fully consumed.
func (s *Stream) Empty() bool { return len(s.rev) == 0 }

// Peek returns the next token without consuming it.
func (s *Stream) Peek() (Token, bool) {
	if len(s.rev) == 0 {
		return Token{}, false
	}
	return s.rev[len(s.rev)-1], true
}

// PeekN returns the token n positions ahead (0 == next) without consuming.
func (s *Stream) PeekN(n int) (Token, bool) {
	idx := len(s.rev) - 1 - n
	if idx < 0 {
		return Token{}, false
	}
	return s.rev[idx], true
}

// Pop consumes and returns the next token.
func (s *Stream) Pop() (Token, bool) {
	if len(s.rev) == 0 {
		return Token{}, false
	}
	idx := len(s.rev) - 1
	t := s.rev[idx]
	s.rev = s.rev[:idx]
	return t, true
}

// lexer holds the mutable scan state for one Tokenize call.
type lexer struct {
	file string
	src  string
	pos  int // byte offset
	line int32
	col  int32
	opts options.Compiler

	toks []Token

	// lastValue tracks whether the previously emitted token can terminate
	// a value-producing expression, which governs whether a following
	// '+'/'-' is a sign glued to a numeric literal or a binary operator
	// (§4.1: "optional sign ... only when not following a value-producing
	// token").
	lastValue bool
}

// Tokenize lexes src (named file, for diagnostics) into a Stream (§4.1).
func Tokenize(file string, src []byte, opts options.Compiler) (*Stream, error) {
	return TokenizeFrom(file, 1, src, opts)
}

// TokenizeFrom is Tokenize with a caller-supplied starting line, used by
// the embedder's Reload (§6.6) when a char stream is spliced into a
// larger source (e.g. a REPL replaying history above the current line).
func TokenizeFrom(file string, startingLine int32, src []byte, opts options.Compiler) (*Stream, error) {
	if startingLine <= 0 {
		startingLine = 1
	}
	lx := &lexer{file: file, src: string(src), line: startingLine, col: 1, opts: opts}

	if strings.HasPrefix(lx.src, "#!") {
		// Shebang: ignored if it is the very first line.
		if nl := strings.IndexByte(lx.src, '\n'); nl >= 0 {
			lx.advance(nl + 1)
		} else {
			lx.advance(len(lx.src))
		}
	}

	for {
		if err := lx.skipTrivia(); err != nil {
			return nil, err
		}
		if lx.pos >= len(lx.src) {
			break
		}
		if err := lx.scanOne(); err != nil {
			return nil, err
		}
	}

	rev := make([]Token, len(lx.toks))
	for i, t := range lx.toks {
		rev[len(lx.toks)-1-i] = t
	}
	return &Stream{rev: rev}, nil
}

func (lx *lexer) here() diag.Loc { return diag.Loc{File: lx.file, Line: lx.line, Column: lx.col} }

// advance moves the cursor forward n bytes, updating line/column.
func (lx *lexer) advance(n int) {
	for i := 0; i < n && lx.pos < len(lx.src); i++ {
		if lx.src[lx.pos] == '\n' {
			lx.line++
			lx.col = 1
		} else {
			lx.col++
		}
		lx.pos++
	}
}

func (lx *lexer) rest() string { return lx.src[lx.pos:] }

// skipTrivia discards whitespace and comments; NUL bytes and invalid UTF-8
// are rejected here too since every byte of source passes through this
// scan eventually.
func (lx *lexer) skipTrivia() error {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == 0:
			return &diag.ParserError{Code: diag.CodeNullCharacterDisallowed, Loc: lx.here()}
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f':
			lx.advance(1)
		case c == '/' && strings.HasPrefix(lx.rest(), "//"):
			if nl := strings.IndexByte(lx.rest(), '\n'); nl >= 0 {
				lx.advance(nl)
			} else {
				lx.advance(len(lx.rest()))
			}
		case c == '/' && strings.HasPrefix(lx.rest(), "/*"):
			start := lx.here()
			lx.advance(2)
			end := strings.Index(lx.rest(), "*/")
			if end < 0 {
				return &diag.ParserError{Code: diag.CodeBlockCommentUnclosed, Loc: start}
			}
			lx.advance(end + 2)
		default:
			if c >= 0x80 {
				r, size := utf8.DecodeRuneInString(lx.rest())
				if r == utf8.RuneError && size <= 1 {
					return &diag.ParserError{Code: diag.CodeUTF8SequenceInvalid, Loc: lx.here()}
				}
			}
			return nil
		}
	}
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentCont(c byte) bool { return isIdentStart(c) || (c >= '0' && c <= '9') }
func isDigit(c byte) bool     { return c >= '0' && c <= '9' }

// scanOne scans exactly one token at the current position.
func (lx *lexer) scanOne() error {
	start := lx.here()
	c := lx.src[lx.pos]

	switch {
	case isDigit(c):
		return lx.scanNumber(start)
	case (c == '+' || c == '-') && !lx.lastValue && lx.pos+1 < len(lx.src) && isDigit(lx.src[lx.pos+1]):
		return lx.scanNumber(start)
	case isIdentStart(c):
		return lx.scanIdentifier(start)
	case c == '"':
		return lx.scanString(start, '"', true)
	case c == '\'':
		return lx.scanString(start, '\'', lx.opts.EscapableSingleQuotes)
	default:
		return lx.scanPunctuator(start)
	}
}

func (lx *lexer) emit(t Token, length int) {
	t.Sloc = diag.Loc{File: lx.file, Line: lx.line, Column: lx.col}
	t.Length = length
	lx.toks = append(lx.toks, t)
	lx.advance(length)
	switch t.Kind {
	case KindIdentifier, KindInteger, KindReal, KindString:
		lx.lastValue = true
	case KindKeyword:
		lx.lastValue = t.Keyword == "true" || t.Keyword == "false" || t.Keyword == "null"
	case KindPunctuator:
		switch t.Punct {
		case ")", "]", "}", "++", "--":
			lx.lastValue = true
		default:
			lx.lastValue = false
		}
	}
}

func (lx *lexer) scanIdentifier(start diag.Loc) error {
	i := lx.pos + 1
	for i < len(lx.src) && isIdentCont(lx.src[i]) {
		i++
	}
	text := lx.src[lx.pos:i]
	length := i - lx.pos
	if !lx.opts.KeywordsAsIdentifiers && IsKeyword(text) {
		lx.emit(Token{Kind: KindKeyword, Keyword: text}, length)
	} else {
		lx.emit(Token{Kind: KindIdentifier, Ident: text}, length)
	}
	_ = start
	return nil
}

func (lx *lexer) scanPunctuator(start diag.Loc) error {
	p := matchPunctuator(lx.rest())
	if p == "" {
		return &diag.ParserError{Code: diag.CodeTokenCharacterUnrecognized, Loc: start}
	}
	spelled := p
	if spelled == "…" {
		spelled = "..."
	}
	lx.emit(Token{Kind: KindPunctuator, Punct: spelled}, len(p))
	return nil
}

func (lx *lexer) scanString(start diag.Loc, quote byte, escapes bool) error {
	var sb strings.Builder
	i := lx.pos + 1
	for {
		if i >= len(lx.src) {
			return &diag.ParserError{Code: diag.CodeStringLiteralUnclosed, Loc: start}
		}
		c := lx.src[i]
		if c == quote {
			i++
			break
		}
		if c == '\n' {
			return &diag.ParserError{Code: diag.CodeStringLiteralUnclosed, Loc: start}
		}
		if c == '\\' && escapes {
			decoded, consumed, err := decodeEscape(lx.src[i:], lx.file, lx.line, lx.col)
			if err != nil {
				return err
			}
			sb.WriteString(decoded)
			i += consumed
			continue
		}
		sb.WriteByte(c)
		i++
	}

	// Adjacent string literals concatenate (§4.1).
	length := i - lx.pos
	lx.emit(Token{Kind: KindString, Str: sb.String()}, length)

	for {
		save, saveLine, saveCol := lx.pos, lx.line, lx.col
		if err := lx.skipTrivia(); err != nil {
			lx.pos, lx.line, lx.col = save, saveLine, saveCol
			return nil
		}
		if lx.pos < len(lx.src) && (lx.src[lx.pos] == '"' || lx.src[lx.pos] == '\'') {
			nextStart := lx.here()
			nextQuote := lx.src[lx.pos]
			nextEscapes := nextQuote == '"' || lx.opts.EscapableSingleQuotes
			if err := lx.scanString(nextStart, nextQuote, nextEscapes); err != nil {
				return err
			}
			appended, _ := lx.popLast()
			prior, _ := lx.popLast()
			lx.toks = append(lx.toks, Token{Kind: KindString, Str: prior.Str + appended.Str, Sloc: prior.Sloc, Length: prior.Length + appended.Length})
			continue
		}
		lx.pos, lx.line, lx.col = save, saveLine, saveCol
		break
	}
	return nil
}

func (lx *lexer) popLast() (Token, bool) {
	if len(lx.toks) == 0 {
		return Token{}, false
	}
	t := lx.toks[len(lx.toks)-1]
	lx.toks = lx.toks[:len(lx.toks)-1]
	return t, true
}

// decodeEscape decodes one `\...` escape sequence starting at s[0]=='\\' and
// returns its UTF-8 replacement plus the number of source bytes consumed.
func decodeEscape(s string, file string, line, col int32) (string, int, error) {
	loc := diag.Loc{File: file, Line: line, Column: col}
	if len(s) < 2 {
		return "", 0, &diag.ParserError{Code: diag.CodeEscapeSequenceIncomplete, Loc: loc}
	}
	switch s[1] {
	case 'a':
		return "\a", 2, nil
	case 'b':
		return "\b", 2, nil
	case 'f':
		return "\f", 2, nil
	case 'n':
		return "\n", 2, nil
	case 'r':
		return "\r", 2, nil
	case 't':
		return "\t", 2, nil
	case 'v':
		return "\v", 2, nil
	case '0', 'Z':
		return "\x00", 2, nil
	case 'e':
		return "\x1b", 2, nil
	case '\\':
		return "\\", 2, nil
	case '\'':
		return "'", 2, nil
	case '"':
		return "\"", 2, nil
	case '?':
		return "?", 2, nil
	case '/':
		return "/", 2, nil
	case 'x':
		return decodeHexEscape(s, loc, 'x', 2, 2)
	case 'u':
		return decodeHexEscape(s, loc, 'u', 4, 4)
	case 'U':
		return decodeHexEscape(s, loc, 'U', 6, 6)
	default:
		return "", 0, &diag.ParserError{Code: diag.CodeEscapeSequenceUnknown, Loc: loc}
	}
}

func decodeHexEscape(s string, loc diag.Loc, kind byte, digits, maxDigits int) (string, int, error) {
	if len(s) < 2+digits {
		return "", 0, &diag.ParserError{Code: diag.CodeEscapeSequenceIncomplete, Loc: loc}
	}
	hex := s[2 : 2+digits]
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "", 0, &diag.ParserError{Code: diag.CodeEscapeSequenceInvalidHex, Loc: loc}
	}
	if kind == 'x' {
		return string([]byte{byte(v)}), 2 + digits, nil
	}
	if v > utf8.MaxRune || (v >= 0xD800 && v <= 0xDFFF) {
		return "", 0, &diag.ParserError{Code: diag.CodeEscapeUTFCodePointInvalid, Loc: loc}
	}
	_ = maxDigits
	return string(rune(v)), 2 + digits, nil
}
