// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync

import (
	"fmt"
)

// ScanChunk attempts to consume the complete array or object at the front of
// text, which must begin with its opening bracket, by examining at most
// maxSize bytes. If the container closes within that budget, its text is
// decoded in one step and the result reports the value and the remainder of
// text after the closing bracket.
//
// If the container does not close within maxSize bytes, ScanChunk reports
// ErrBudgetExceeded. If text ends before the budget is spent and the
// container is still open, it reports ErrUnexpectedEnd. A container that
// closes but is not valid JSON reports ErrMalformedLiteral.
//
// Only brackets of the same kind as the opener are counted, and brackets
// inside strings are ignored. A backslash inside a string escapes the byte
// that follows it; outside a string it has no special meaning.
func ScanChunk(text string, maxSize int) (Result, error) {
	if text == "" {
		return Result{}, &SyntaxError{Offset: 0, err: ErrUnexpectedEnd}
	}
	var opener, closer byte
	switch text[0] {
	case '[':
		opener, closer = '[', ']'
	case '{':
		opener, closer = '{', '}'
	default:
		return Result{}, syntaxErrorf(0, "%w: %q does not open a container", ErrMalformedLiteral, text[0])
	}

	depth := 0
	inString := false
	limit := min(maxSize, len(text))
	for i := 0; i < limit; i++ {
		ch := text[i]
		if inString {
			switch ch {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case opener:
			depth++
		case closer:
			depth--
		case '"':
			inString = true
		}
		if depth == 0 {
			cut := i + 1
			v, err := DecodeLiteral(text[:cut])
			if err != nil {
				return Result{}, err
			}
			return Result{Value: v, Rest: text[cut:]}, nil
		}
	}
	if limit < maxSize {
		return Result{}, &SyntaxError{
			Offset: len(text),
			err:    fmt.Errorf("%w: unclosed %q", ErrUnexpectedEnd, opener),
		}
	}
	return Result{}, ErrBudgetExceeded
}
