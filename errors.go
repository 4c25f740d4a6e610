// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync

import (
	"errors"
	"fmt"
)

// Errors reported by the parser. Use errors.Is to check for them; the
// concrete error returned by a parse is usually a *SyntaxError wrapping one
// of these values.
var (
	// ErrMalformedString means a string literal had no closing quotation
	// mark, or its contents were not a valid JSON string.
	ErrMalformedString = errors.New("malformed string")

	// ErrMalformedNumber means no valid number was found where a value was
	// expected.
	ErrMalformedNumber = errors.New("malformed number")

	// ErrMissingKey means an object member did not begin with a quoted key
	// followed by a colon.
	ErrMissingKey = errors.New("missing object key")

	// ErrMalformedLiteral means a delimited JSON literal was rejected by the
	// literal decoder.
	ErrMalformedLiteral = errors.New("malformed literal")

	// ErrMalformedContainer means an array element or object member was not
	// followed by a comma or the closing bracket.
	ErrMalformedContainer = errors.New("malformed container")

	// ErrUnexpectedEnd means the input ended where more was required.
	ErrUnexpectedEnd = errors.New("unexpected end of input")

	// ErrBudgetExceeded is reported by ScanChunk when a container does not
	// close within the size budget. It is not a parse failure: the parser
	// handles it by building the container incrementally.
	ErrBudgetExceeded = errors.New("size budget exceeded")

	// ErrInvalidBudget means a parser was given a non-positive size budget.
	ErrInvalidBudget = errors.New("size budget must be positive")

	// ErrPending is reported by Deferred.Result before the result is settled.
	ErrPending = errors.New("result is pending")

	// ErrStalled is reported by Loop.Await when the loop has no more tasks to
	// run but the awaited result is still pending.
	ErrStalled = errors.New("loop is idle but result is pending")
)

// SyntaxError is the concrete type of errors reported for invalid input.
type SyntaxError struct {
	Offset int // byte offset in the input where the error was found

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at offset %d: %v", s.Offset, s.err)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// syntaxErrorf constructs a *SyntaxError at the given offset.
func syntaxErrorf(offset int, msg string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: offset, err: fmt.Errorf(msg, args...)}
}

// shiftError adjusts the offset of err by base, if it is a *SyntaxError.
// Offsets reported by the extractors are relative to the text they were
// given, which may be a suffix of the input.
func shiftError(err error, base int) error {
	var serr *SyntaxError
	if errors.As(err, &serr) {
		return &SyntaxError{Offset: serr.Offset + base, err: serr.err}
	}
	return err
}
