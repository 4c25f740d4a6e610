// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync

import (
	"fmt"
	"strconv"

	"github.com/creachadair/jasync/internal/escape"

	"go4.org/mem"
)

// A Result is the outcome of one parsing step: a value, and the unconsumed
// remainder of the text the step was given. Rest begins immediately after
// the last byte consumed for Value.
type Result struct {
	Value Value
	Rest  string
}

// typeCheck inspects the first significant byte of text and extracts a
// scalar value, or initiates a container.
//
// For an array or object, the result is an empty container of that type and
// Rest begins at its opening bracket, which is left for the chunk scanner or
// the builder. Leading whitespace is skipped in all cases.
//
// Offsets in errors are relative to text.
func typeCheck(text string) (Result, error) {
	i := skipSpace(mem.S(text), 0)
	if i == len(text) {
		return Result{}, &SyntaxError{Offset: i, err: ErrUnexpectedEnd}
	}
	rest := text[i:]
	var res Result
	var err error
	switch rest[0] {
	case '{':
		return Result{Value: Object{}, Rest: rest}, nil
	case '[':
		return Result{Value: Array{}, Rest: rest}, nil
	case 't':
		res, err = skipLiteral(rest, Bool(true), len("true"))
	case 'f':
		res, err = skipLiteral(rest, Bool(false), len("false"))
	case 'n':
		res, err = skipLiteral(rest, Null{}, len("null"))
	case '"':
		res, err = extractString(rest)
	default:
		res, err = extractNumber(rest)
	}
	return res, shiftError(err, i)
}

// skipLiteral returns v and skips the first n bytes of text. The spelling of
// the constant is not checked: the first byte already determined which
// constant it is.
func skipLiteral(text string, v Value, n int) (Result, error) {
	if len(text) < n {
		return Result{}, &SyntaxError{
			Offset: len(text),
			err:    fmt.Errorf("%w: truncated %s", ErrMalformedLiteral, v.JSON()),
		}
	}
	return Result{Value: v, Rest: text[n:]}, nil
}

// extractString consumes the quoted string at the front of text.
func extractString(text string) (Result, error) {
	n := escape.End(mem.S(text))
	if n < 0 {
		return Result{}, &SyntaxError{
			Offset: 0,
			err:    fmt.Errorf("%w: no closing quote", ErrMalformedString),
		}
	}
	dec, err := escape.Unquote(mem.S(text[1 : n-1]))
	if err != nil {
		return Result{}, &SyntaxError{Offset: 0, err: fmt.Errorf("%w: %w", ErrMalformedString, err)}
	}
	return Result{Value: String(dec), Rest: text[n:]}, nil
}

// extractNumber consumes the longest run of number bytes at the front of
// text and converts it to a number. The whole run must be a valid JSON
// number.
func extractNumber(text string) (Result, error) {
	n := readWhile(mem.S(text), 0, isNumByte)
	if n == 0 {
		return Result{}, &SyntaxError{
			Offset: 0,
			err:    fmt.Errorf("%w: unexpected %q", ErrMalformedNumber, text[0]),
		}
	}
	end, _, problem := numberEnd(mem.S(text[:n]), 0)
	if problem == "" && end < n {
		problem = fmt.Sprintf("unexpected %q", text[end])
	}
	if problem != "" {
		return Result{}, &SyntaxError{
			Offset: 0,
			err:    fmt.Errorf("%w: invalid number %q: %s", ErrMalformedNumber, text[:n], problem),
		}
	}
	f, err := strconv.ParseFloat(text[:n], 64)
	if err != nil {
		return Result{}, &SyntaxError{
			Offset: 0,
			err:    fmt.Errorf("%w: invalid number %q", ErrMalformedNumber, text[:n]),
		}
	}
	return Result{Value: Number(f), Rest: text[n:]}, nil
}

// isNumByte reports whether ch may appear in a JSON number.
func isNumByte(ch byte) bool {
	return isDigit(ch) || ch == '-' || ch == '+' || ch == '.' || ch == 'e' || ch == 'E'
}
