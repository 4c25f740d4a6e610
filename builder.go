// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync

import (
	"errors"
	"fmt"

	"github.com/creachadair/jasync/internal/escape"
	"github.com/creachadair/mds/stack"

	"go4.org/mem"
)

// A frame is a container under construction by a task.
type frame struct {
	kind    Kind // ArrayKind or ObjectKind
	started bool // the opening bracket has been consumed
	arr     Array
	obj     objectBuilder
	key     string // key of the member whose value is awaited
}

func (f *frame) add(v Value) {
	if f.kind == ArrayKind {
		f.arr = append(f.arr, v)
	} else {
		f.obj.set(f.key, v)
	}
}

func (f *frame) value() Value {
	if f.kind == ArrayKind {
		if f.arr == nil {
			return Array{}
		}
		return f.arr
	}
	if f.obj.obj == nil {
		return Object{}
	}
	return f.obj.obj
}

func (f *frame) closer() byte {
	if f.kind == ArrayKind {
		return ']'
	}
	return '}'
}

// A task builds a container that did not fit within the size budget, one
// element per scheduled step. Nested containers that also exceed the budget
// are pushed as frames on an explicit stack rather than parsed by recursion,
// so the depth of the input does not affect the Go stack.
type task struct {
	input   string // the complete input, for error offsets
	rest    string // unconsumed input
	maxSize int
	frames  *stack.Stack[*frame]
	carry   Value // a finished nested container not yet stored in its parent

	sched Scheduler
	out   *Deferred
}

// newTask constructs a task to build the container whose opening bracket is
// at the front of rest, a suffix of input.
func newTask(input, rest string, kind Kind, maxSize int, s Scheduler, out *Deferred) *task {
	t := &task{
		input:   input,
		rest:    rest,
		maxSize: maxSize,
		frames:  stack.New[*frame](),
		sched:   s,
		out:     out,
	}
	t.frames.Push(&frame{kind: kind})
	return t
}

// step performs one unit of work and then either settles the output or
// schedules the next step.
func (t *task) step() {
	v, done, err := t.advance()
	if err != nil {
		t.out.settle(Result{}, err)
	} else if done {
		t.out.settle(Result{Value: v, Rest: t.rest}, nil)
	} else {
		t.sched.Schedule(t.step)
	}
}

// advance performs one unit of work on the innermost open container: it
// stores a finished nested container, or parses and stores one element, or
// opens a nested container that does not fit the budget. It reports the
// completed outermost value and true when the task is finished.
//
// Precondition: t.rest begins with the opening bracket of the innermost
// frame if it is not yet started, or else with the comma that precedes its
// next element.
func (t *task) advance() (Value, bool, error) {
	if v := t.carry; v != nil {
		t.carry = nil
		return t.store(v)
	}

	f := t.frames.Top()
	t.rest = t.rest[1:] // the opening bracket or comma
	if !f.started {
		f.started = true
		i := skipSpace(mem.S(t.rest), 0)
		if i < len(t.rest) && t.rest[i] == f.closer() {
			t.rest = t.rest[i+1:]
			return t.close()
		}
	}
	if f.kind == ObjectKind {
		key, err := t.parseKey()
		if err != nil {
			return nil, false, err
		}
		f.key = key
	}

	base := t.offset()
	res, err := getValue(t.rest, t.maxSize)
	if errors.Is(err, ErrBudgetExceeded) {
		t.rest = res.Rest
		t.frames.Push(&frame{kind: res.Value.Kind()})
		return nil, false, nil
	} else if err != nil {
		return nil, false, shiftError(err, base)
	}
	t.rest = res.Rest
	return t.store(res.Value)
}

// store adds v to the innermost frame and consumes the whitespace after it.
// If the frame is complete, its closing bracket is consumed and the frame is
// closed.
func (t *task) store(v Value) (Value, bool, error) {
	f := t.frames.Top()
	f.add(v)

	i := skipSpace(mem.S(t.rest), 0)
	switch {
	case i == len(t.rest):
		return nil, false, &SyntaxError{
			Offset: len(t.input),
			err:    fmt.Errorf("%w: unclosed %s", ErrUnexpectedEnd, f.kind),
		}
	case t.rest[i] == ',':
		t.rest = t.rest[i:]
		return nil, false, nil
	case t.rest[i] == f.closer():
		t.rest = t.rest[i+1:]
		return t.close()
	}
	return nil, false, &SyntaxError{
		Offset: t.offset() + i,
		err:    fmt.Errorf("%w: got %q, want %q or %q", ErrMalformedContainer, t.rest[i], ',', f.closer()),
	}
}

// close pops the innermost frame. If it was the outermost, the task is done;
// otherwise its value is carried to the next step to be stored in its
// parent.
func (t *task) close() (Value, bool, error) {
	f, _ := t.frames.Pop()
	v := f.value()
	if t.frames.IsEmpty() {
		return v, true, nil
	}
	t.carry = v
	return nil, false, nil
}

// parseKey consumes a quoted object key and the colon that follows it.
func (t *task) parseKey() (string, error) {
	src := mem.S(t.rest)
	i := skipSpace(src, 0)
	n := escape.End(src.SliceFrom(i))
	if n < 0 {
		return "", t.missingKey(i, "no quoted key")
	}
	dec, err := escape.Unquote(src.Slice(i+1, i+n-1))
	if err != nil {
		return "", t.missingKey(i, "invalid key: %v", err)
	}
	j := skipSpace(src, i+n)
	if j == len(t.rest) || t.rest[j] != ':' {
		return "", t.missingKey(j, "no colon after key")
	}
	t.rest = t.rest[j+1:]
	return string(dec), nil
}

func (t *task) missingKey(i int, msg string, args ...any) error {
	return &SyntaxError{
		Offset: t.offset() + i,
		err:    fmt.Errorf("%w: %s", ErrMissingKey, fmt.Sprintf(msg, args...)),
	}
}

// offset reports the offset of t.rest in the input.
func (t *task) offset() int { return len(t.input) - len(t.rest) }
