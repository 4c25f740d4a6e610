// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DecodeLiteral parses text as exactly one JSON value, optionally surrounded
// by whitespace, and returns the value. The whole of text must be consumed.
//
// DecodeLiteral does not yield: it is the decoder used for containers that
// fit within the size budget. In case of error, the returned error is a
// *SyntaxError wrapping ErrMalformedLiteral.
func DecodeLiteral(text string) (_ Value, err error) {
	d := &literalDecoder{s: NewScanner(text)}
	defer d.recoverParseError(&err)

	d.advance()
	v := d.parseElement()
	if d.s.Next() {
		d.syntaxError(nil, "unexpected %v after value", d.s.Token())
	}
	var serr *SyntaxError
	if errors.As(d.s.Err(), &serr) {
		d.syntaxError(serr, "%v", serr.err)
	}
	return v, nil
}

// A literalDecoder is a recursive-descent parser over the tokens of a Scanner.
// Errors are reported by panicking with a *literalError, which is recovered
// at the top level by DecodeLiteral.
type literalDecoder struct {
	s *Scanner
}

type literalError struct{ *SyntaxError }

func (d *literalDecoder) recoverParseError(errp *error) {
	if perr := recover(); perr != nil {
		if lerr, ok := perr.(literalError); ok {
			*errp = lerr.SyntaxError
			return
		}
		panic(perr)
	}
}

// parseElement consumes a single value of any type.
// Precondition: the current token is the first token of the value.
func (d *literalDecoder) parseElement() Value {
	switch tok := d.s.Token(); tok {
	case LBrace:
		return d.parseMembers()
	case LSquare:
		return d.parseElements()
	case Integer, Float, Quoted, True, False, NullTok:
		v, err := d.s.Value()
		if err != nil {
			d.syntaxError(err, "invalid %v: %v", tok, err)
		}
		return v
	case RBrace, RSquare, Comma, Colon:
		d.syntaxError(nil, "unexpected %v", tok)
	default:
		d.syntaxError(nil, "unknown token %v", tok)
	}
	panic("unreachable")
}

// parseMembers consumes zero or more key:value object members.
// Precondition: token == LBrace.
// Postcondition: token == RBrace.
func (d *literalDecoder) parseMembers() Value {
	var ob objectBuilder
	if d.advance(RBrace, Quoted) == RBrace {
		return Object{}
	}
	for {
		key, err := d.s.Value()
		if err != nil {
			d.syntaxError(err, "invalid key: %v", err)
		}
		d.advance(Colon)
		d.advance()
		ob.set(string(key.(String)), d.parseElement())

		if d.advance(RBrace, Comma) == RBrace {
			return ob.obj
		}
		d.advance(Quoted) // advance to next key
	}
}

// parseElements consumes zero or more comma-separated array values.
// Precondition: token == LSquare.
// Postcondition: token == RSquare.
func (d *literalDecoder) parseElements() Value {
	arr := Array{}
	if d.advance() == RSquare {
		return arr
	}
	arr = append(arr, d.parseElement())
	for d.advance(RSquare, Comma) == Comma {
		d.advance()
		arr = append(arr, d.parseElement())
	}
	return arr
}

func (d *literalDecoder) advance(tokens ...Token) Token {
	if !d.s.Next() {
		var serr *SyntaxError
		if errors.As(d.s.Err(), &serr) {
			d.syntaxError(serr, "%v", serr.err)
		}
		d.syntaxError(ErrUnexpectedEnd, "%v", tokLabel(tokens, "end of input"))
	}
	tok := d.s.Token()
	if len(tokens) != 0 && !slices.Contains(tokens, tok) {
		d.syntaxError(nil, "%v", tokLabel(tokens, tok))
	}
	return tok
}

func (d *literalDecoder) syntaxError(err error, msg string, args ...any) {
	pos, _ := d.s.Span()
	var serr *SyntaxError
	if errors.As(err, &serr) {
		pos = serr.Offset
	}
	panic(literalError{&SyntaxError{
		Offset: pos,
		err:    fmt.Errorf("%w: %s", ErrMalformedLiteral, fmt.Sprintf(msg, args...)),
	}})
}

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got any) string {
	if len(tokens) == 0 {
		return fmt.Sprintf("expected more input, got %v", got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, last)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}
