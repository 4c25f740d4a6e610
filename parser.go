// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync

import (
	"context"
	"errors"
)

// A Parser parses JSON values from text, yielding to a scheduler between the
// elements of containers that are too large to parse in one step.
type Parser struct {
	maxSize int
}

// NewParser constructs a Parser with the given size budget, the maximum
// number of bytes of a container it will scan in one step before it falls
// back to parsing the container one element at a time. The budget must be
// positive.
func NewParser(maxSize int) *Parser { return &Parser{maxSize: maxSize} }

// MaxSize reports the size budget of p.
func (p *Parser) MaxSize() int { return p.maxSize }

// Start begins parsing the JSON value at the front of text, and returns a
// Deferred for its result. The Rest of the result is the text following the
// value, which is not checked.
//
// If the value can be parsed without yielding, because it is a scalar or a
// container that fits within the budget, the Deferred is ready when Start
// returns. The same is true if the input is found to be invalid before any
// step is scheduled. Otherwise the remaining steps are scheduled on s, and
// the Deferred settles when the last of them runs.
//
// Start panics if s is nil and the parse needs to schedule a step.
func (p *Parser) Start(text string, s Scheduler) *Deferred {
	if p.maxSize <= 0 {
		return settledDeferred(s, Result{}, ErrInvalidBudget)
	}
	res, err := getValue(text, p.maxSize)
	if !errors.Is(err, ErrBudgetExceeded) {
		return settledDeferred(s, res, err)
	}
	if s == nil {
		panic("jasync: nil scheduler for a container that exceeds the budget")
	}
	d := newDeferred(s)
	t := newTask(text, res.Rest, res.Value.Kind(), p.maxSize, s, d)
	s.Schedule(t.step)
	return d
}

// Parse parses the JSON value at the front of text by running a private Loop
// until the result is ready or ctx ends.
func (p *Parser) Parse(ctx context.Context, text string) (Result, error) {
	var loop Loop
	return loop.Await(ctx, p.Start(text, &loop))
}

// Parse is shorthand for NewParser(maxSize).Parse(context.Background(), text).
func Parse(text string, maxSize int) (Result, error) {
	return NewParser(maxSize).Parse(context.Background(), text)
}

// getValue parses the value at the front of text, if it can do so without
// yielding.
//
// If the value is a container that does not close within maxSize bytes,
// getValue reports ErrBudgetExceeded with a result holding an empty container
// of the right kind, whose Rest begins at the opening bracket. Offsets in
// other errors are relative to text.
func getValue(text string, maxSize int) (Result, error) {
	res, err := typeCheck(text)
	if err != nil {
		return Result{}, err
	}
	if k := res.Value.Kind(); k != ArrayKind && k != ObjectKind {
		return res, nil
	}
	chunk, err := ScanChunk(res.Rest, maxSize)
	if errors.Is(err, ErrBudgetExceeded) {
		return res, err
	} else if err != nil {
		return Result{}, shiftError(err, len(text)-len(res.Rest))
	}
	return chunk, nil
}
