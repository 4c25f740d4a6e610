// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/creachadair/jasync/internal/escape"

	"go4.org/mem"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	Integer              // number: integer with no fraction or exponent
	Float                // number with fraction and/or exponent
	Quoted               // quoted string
	True                 // constant: true
	False                // constant: false
	NullTok              // constant: null
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Float:   "number",
	Quoted:  "string",
	True:    "true",
	False:   "false",
	NullTok: "null",
}

func (t Token) String() string {
	if int(t) >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[t]
}

// A Scanner reads lexical tokens from an in-memory JSON text. Each call to
// Next advances the scanner to the next token, and reports whether one was
// found.
type Scanner struct {
	src mem.RO
	tok Token
	err error

	pos, end int // start and end offsets of current token

	// Line tracking for Location, advanced only as far as it is used.
	lineOff   int // offset through which newlines have been counted
	line      int // newlines before lineOff
	lineStart int // offset of the start of the line containing lineOff
}

// NewScanner constructs a new lexical scanner that consumes input from text.
func NewScanner(text string) *Scanner { return &Scanner{src: mem.S(text)} }

// Next advances s to the next token of the input, and reports whether a token
// is available. It returns false at the end of the input or on a lexical
// error; use Err to distinguish these.
func (s *Scanner) Next() bool {
	s.err = nil
	s.tok = Invalid
	s.end = skipSpace(s.src, s.end)
	s.pos = s.end
	if s.end >= s.src.Len() {
		return false
	}

	ch := s.src.At(s.end)
	if t, ok := selfDelim(ch); ok {
		s.end++
		s.tok = t
		return true
	}
	switch {
	case isNumStart(ch):
		return s.scanNumber()
	case ch == '"':
		return s.scanString()
	case ch == 't':
		return s.scanName(True, "true")
	case ch == 'f':
		return s.scanName(False, "false")
	case ch == 'n':
		return s.scanName(NullTok, "null")
	}
	return s.failf("unexpected %q", ch)
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the error from the last call to Next, or nil.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token.
func (s *Scanner) Text() string { return s.src.Slice(s.pos, s.end).StringCopy() }

// Span returns the start and end offsets of the current token.
func (s *Scanner) Span() (pos, end int) { return s.pos, s.end }

// Value decodes the current token as a scalar value. It reports an error if
// the current token is not a string, number, or constant.
func (s *Scanner) Value() (Value, error) {
	raw := s.src.Slice(s.pos, s.end)
	switch s.tok {
	case Quoted:
		dec, err := escape.Unquote(raw.Slice(1, raw.Len()-1))
		if err != nil {
			return nil, err
		}
		return String(dec), nil
	case Integer, Float:
		f, err := strconv.ParseFloat(raw.StringCopy(), 64)
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case True:
		return Bool(true), nil
	case False:
		return Bool(false), nil
	case NullTok:
		return Null{}, nil
	}
	return nil, fmt.Errorf("%v is not a value", s.tok)
}

func (s *Scanner) scanString() bool {
	n := escape.End(s.src.SliceFrom(s.end))
	if n < 0 {
		return s.failf("unterminated string")
	}
	body := s.src.Slice(s.end+1, s.end+n-1)
	for i := 0; i < body.Len(); i++ {
		if ch := body.At(i); ch < ' ' {
			s.end += i + 1
			return s.failf("unescaped control %q", ch)
		} else if ch != '\\' {
			continue
		}
		i++
		switch ch := body.At(i); ch {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		case 'u':
			if i+4 >= body.Len() || !isHex4(body.Slice(i+1, i+5)) {
				s.end += i + 1
				return s.failf("invalid Unicode escape")
			}
			i += 4
		default:
			s.end += i + 1
			return s.failf("invalid %q after escape", ch)
		}
	}
	s.end += n
	s.tok = Quoted
	return true
}

func (s *Scanner) scanNumber() bool {
	end, tok, problem := numberEnd(s.src, s.end)
	s.end = end
	if problem != "" {
		return s.failf("%s", problem)
	}
	s.tok = tok
	return true
}

// numberEnd reports the end offset and token type of the JSON number that
// begins at offset i of src. If the number is malformed, end is the offset
// where the problem was found and problem describes it.
func numberEnd(src mem.RO, i int) (end int, tok Token, problem string) {
	if src.At(i) == '-' {
		i++
	}

	// If there is a leading sign, we need at least one digit.
	j := readWhile(src, i, isDigit)
	if j == i {
		return j, Invalid, "want digit"
	}

	// Check for extra leading zeroes, which are disallowed by the JSON spec.
	// That is: 0.12 is OK, 01.2 is not.
	if src.At(i) == '0' && j-i > 1 {
		return j, Invalid, "extra leading zeroes"
	}

	tok = Integer

	// If a decimal point follows, consume a fractional part.
	if j < src.Len() && src.At(j) == '.' {
		k := readWhile(src, j+1, isDigit)
		if k == j+1 {
			return k, Invalid, "no digits after decimal point"
		}
		j = k
		tok = Float
	}

	// If an exponent follows, consume it.
	if j < src.Len() && (src.At(j) == 'e' || src.At(j) == 'E') {
		j++
		if j < src.Len() && (src.At(j) == '+' || src.At(j) == '-') {
			j++
		}
		k := readWhile(src, j, isDigit)
		if k == j {
			return k, Invalid, "missing exponent digits"
		}
		j = k
		tok = Float
	}
	return j, tok, ""
}

func (s *Scanner) scanName(tok Token, want string) bool {
	j := readWhile(s.src, s.end, isNameByte)
	got := s.src.Slice(s.end, j)
	s.end = j
	if !got.EqualString(want) {
		return s.failf("unknown constant %q", got.StringCopy())
	}
	s.tok = tok
	return true
}

func (s *Scanner) failf(msg string, args ...any) bool {
	s.tok = Invalid
	s.err = syntaxErrorf(s.end, msg, args...)
	return false
}

// readWhile returns the offset of the first byte of src at or after i that
// does not satisfy f, or src.Len() if there is none.
func readWhile(src mem.RO, i int, f func(byte) bool) int {
	for i < src.Len() && f(src.At(i)) {
		i++
	}
	return i
}

// skipSpace returns the offset of the first non-whitespace byte of src at or
// after i, or src.Len() if there is none.
func skipSpace(src mem.RO, i int) int { return readWhile(src, i, isSpace) }

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch byte) bool { return ch == '-' || isDigit(ch) }
func isDigit(ch byte) bool    { return '0' <= ch && ch <= '9' }
func isNameByte(ch byte) bool { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isHex4(data mem.RO) bool {
	for i := 0; i < data.Len(); i++ {
		if !isHexDigit(data.At(i)) {
			return false
		}
	}
	return data.Len() == 4
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch byte) (Token, bool) {
	i := strings.IndexByte("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
