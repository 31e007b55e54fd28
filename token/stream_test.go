package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asteria-lang/asteria/options"
	"github.com/asteria-lang/asteria/token"
)

func TestTokenizeBasics(t *testing.T) {
	src := `func fact(n) { return n <= 1 ? 1 : n * fact(n-1); }`
	stream, err := token.Tokenize("fact.as", []byte(src), options.Default())
	require.NoError(t, err)
	require.False(t, stream.Empty())

	first, ok := stream.Peek()
	require.True(t, ok)
	require.Equal(t, token.KindKeyword, first.Kind)
	require.Equal(t, "func", first.Keyword)
}

func TestTokenizeNumericLiterals(t *testing.T) {
	stream, err := token.Tokenize("n.as", []byte("0x1A 0b101 1.5e3 3628800"), options.Default())
	require.NoError(t, err)

	tok, _ := stream.Pop()
	require.Equal(t, token.KindInteger, tok.Kind)
	require.EqualValues(t, 26, tok.Int)

	tok, _ = stream.Pop()
	require.Equal(t, token.KindInteger, tok.Kind)
	require.EqualValues(t, 5, tok.Int)

	tok, _ = stream.Pop()
	require.Equal(t, token.KindReal, tok.Kind)
	require.InDelta(t, 1500.0, tok.Real, 0.0001)

	tok, _ = stream.Pop()
	require.Equal(t, token.KindInteger, tok.Kind)
	require.EqualValues(t, 3628800, tok.Int)
}

func TestTokenizeStringEscapesAndConcat(t *testing.T) {
	stream, err := token.Tokenize("s.as", []byte(`"ab\ncd" "ef"`), options.Default())
	require.NoError(t, err)
	tok, ok := stream.Pop()
	require.True(t, ok)
	require.Equal(t, token.KindString, tok.Kind)
	require.Equal(t, "ab\ncdef", tok.Str)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := token.Tokenize("s.as", []byte(`"unterminated`), options.Default())
	require.Error(t, err)
}

func TestTokenizeSignVsOperator(t *testing.T) {
	stream, err := token.Tokenize("s.as", []byte("1 - 2"), options.Default())
	require.NoError(t, err)
	_, _ = stream.Pop() // 1
	tok, _ := stream.Pop()
	require.Equal(t, token.KindPunctuator, tok.Kind)
	require.Equal(t, "-", tok.Punct)

	stream2, err := token.Tokenize("s.as", []byte("= -2"), options.Default())
	require.NoError(t, err)
	_, _ = stream2.Pop() // =
	tok2, _ := stream2.Pop()
	require.Equal(t, token.KindInteger, tok2.Kind)
	require.EqualValues(t, -2, tok2.Int)
}
