package token

import (
	"math"
	"strconv"
	"strings"

	"github.com/asteria-lang/asteria/diag"
)

// scanNumber scans a numeric literal (§4.1): an optional sign (only reached
// here when the caller already decided the sign is glued to a literal, not
// an operator), an optional base prefix, a mantissa with optional radix
// point, an optional exponent, and optional digit separators.
func (lx *lexer) scanNumber(start diag.Loc) error {
	text := lx.src
	i := lx.pos
	sign := byte(0)
	if text[i] == '+' || text[i] == '-' {
		sign = text[i]
		i++
	}

	base := 10
	if i+1 < len(text) && text[i] == '0' && (text[i+1] == 'b' || text[i+1] == 'B') {
		base = 2
		i += 2
	} else if i+1 < len(text) && text[i] == '0' && (text[i+1] == 'x' || text[i+1] == 'X') {
		base = 16
		i += 2
	}

	digitOK := func(c byte) bool {
		switch base {
		case 2:
			return c == '0' || c == '1'
		case 16:
			return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		default:
			return isDigit(c)
		}
	}
	expChar, expCharUpper := byte('e'), byte('E')
	if base == 16 {
		expChar, expCharUpper = 'p', 'P'
	}

	hasPoint, hasExponent, sawDigit := false, false, false
	for i < len(text) {
		c := text[i]
		switch {
		case digitOK(c):
			sawDigit = true
			i++
		case c == '`':
			i++ // digit separator, stripped later
		case c == '.' && !hasPoint && !hasExponent:
			hasPoint = true
			i++
		case (c == expChar || c == expCharUpper) && !hasExponent && sawDigit:
			hasExponent = true
			i++
			if i < len(text) && (text[i] == '+' || text[i] == '-') {
				i++
			}
		default:
			goto done
		}
	}
done:
	length := i - lx.pos
	raw := text[lx.pos:i]
	if !sawDigit {
		return &diag.ParserError{Code: diag.CodeNumericLiteralInvalid, Loc: start}
	}
	// Reject a bare trailing identifier glued to the literal (e.g. "123abc"),
	// which is a suffix the language does not define (§4.1).
	if i < len(text) && isIdentStart(text[i]) {
		return &diag.ParserError{Code: diag.CodeNumericLiteralSuffixInvalid, Loc: start}
	}

	body := raw
	if sign != 0 {
		body = body[1:]
	}
	cleaned := strings.ReplaceAll(body, "`", "")

	if !hasPoint && !hasExponent && !lx.opts.IntegersAsReals {
		v, code := parseInteger(cleaned, base, sign)
		if code != diag.CodeUnknown {
			return &diag.ParserError{Code: code, Loc: start}
		}
		lx.emit(Token{Kind: KindInteger, Int: v}, length)
		return nil
	}

	f, code := parseReal(cleaned, base, sign, hasExponent)
	if code != diag.CodeUnknown {
		return &diag.ParserError{Code: code, Loc: start}
	}
	lx.emit(Token{Kind: KindReal, Real: f}, length)
	return nil
}

func parseInteger(body string, base int, sign byte) (int64, diag.ErrorCode) {
	var prefix string
	switch base {
	case 2:
		prefix = body[2:]
	case 16:
		prefix = body[2:]
	default:
		prefix = body
	}

	u, err := strconv.ParseUint(prefix, base, 64)
	if err != nil {
		return 0, diag.CodeIntegerLiteralOverflow
	}

	// A positive decimal literal whose bit pattern exceeds int64's range
	// parses without truncation but would silently reinterpret as negative;
	// the original flags this as a distinct "inexact" condition rather than
	// an outright overflow (only base-10 literals are ambiguous this way,
	// since hex/binary literals are conventionally written as raw bit
	// patterns).
	if base == 10 && sign != '-' && u > uint64(math.MaxInt64) {
		return 0, diag.CodeIntegerLiteralInexact
	}

	v := int64(u)
	if sign == '-' {
		if u > uint64(math.MaxInt64)+1 {
			return 0, diag.CodeIntegerLiteralOverflow
		}
		v = -v
	}
	return v, diag.CodeUnknown
}

func parseReal(body string, base int, sign byte, hasExponent bool) (float64, diag.ErrorCode) {
	text := body
	if base == 16 && !hasExponent {
		text += "p0" // Go's hex-float syntax requires an explicit exponent.
	}
	if sign == '-' {
		text = "-" + text
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			if math.IsInf(f, 0) {
				return 0, diag.CodeRealLiteralOverflow
			}
			return 0, diag.CodeRealLiteralUnderflow
		}
		return 0, diag.CodeNumericLiteralInvalid
	}
	if f == 0 && hasNonZeroDigit(body) {
		return 0, diag.CodeRealLiteralUnderflow
	}
	return f, diag.CodeUnknown
}

func hasNonZeroDigit(s string) bool {
	for _, c := range s {
		if c >= '1' && c <= '9' {
			return true
		}
		if c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' {
			return true
		}
	}
	return false
}
