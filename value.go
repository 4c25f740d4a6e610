// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the JSON type of a Value.
type Kind byte

// Constants defining the valid Kind values.
const (
	NullKind   Kind = iota // null
	BoolKind               // true, false
	NumberKind             // number
	StringKind             // string
	ArrayKind              // array
	ObjectKind             // object
)

var kindStr = [...]string{
	NullKind:   "null",
	BoolKind:   "bool",
	NumberKind: "number",
	StringKind: "string",
	ArrayKind:  "array",
	ObjectKind: "object",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return "invalid kind"
	}
	return kindStr[k]
}

// A Value is an arbitrary JSON value. The concrete type is one of Null, Bool,
// Number, String, Array, or Object.
type Value interface {
	// Kind reports the JSON type of the value.
	Kind() Kind

	// JSON renders the value as compact JSON text.
	JSON() string
}

// Null represents the null constant.
type Null struct{}

func (Null) Kind() Kind     { return NullKind }
func (Null) JSON() string   { return "null" }
func (Null) String() string { return "null" }

// A Bool is a Boolean constant, true or false.
type Bool bool

func (Bool) Kind() Kind { return BoolKind }

func (b Bool) JSON() string { return strconv.FormatBool(bool(b)) }

// A Number is a numeric value.
type Number float64

func (Number) Kind() Kind { return NumberKind }

// JSON renders n in its shortest round-trip form. Integral values below 1e21
// are written without an exponent. Non-finite values have no JSON form and
// are written as null.
func (n Number) JSON() string {
	f := float64(n)
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return "null"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// A String is a string value. It holds the decoded text, without quotation
// marks or escapes.
type String string

func (String) Kind() Kind { return StringKind }

func (s String) JSON() string { return Quote(string(s)) }

// An Array is a sequence of values.
type Array []Value

func (Array) Kind() Kind { return ArrayKind }

func (a Array) JSON() string {
	if len(a) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(a[0].JSON())
	for _, elt := range a[1:] {
		sb.WriteByte(',')
		sb.WriteString(elt.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a Array) String() string { return fmt.Sprintf("Array(len=%d)", len(a)) }

// An Object is a collection of key-value members, in the order their keys
// first appeared in the input. Keys are unique: when the input repeats a key,
// the later value replaces the earlier one in its original position.
type Object []*Member

func (Object) Kind() Kind { return ObjectKind }

func (o Object) JSON() string {
	if len(o) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	sb.WriteString(o[0].JSON())
	for _, m := range o[1:] {
		sb.WriteByte(',')
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (o Object) String() string { return fmt.Sprintf("Object(len=%d)", len(o)) }

// Find returns the member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	for _, m := range o {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// JSON renders m as "key":value.
func (m Member) JSON() string { return Quote(m.Key) + ":" + m.Value.JSON() }

// An objectBuilder accumulates the members of an object with replace-in-place
// semantics for repeated keys.
type objectBuilder struct {
	obj Object
	idx map[string]int
}

func (b *objectBuilder) set(key string, v Value) {
	if i, ok := b.idx[key]; ok {
		b.obj[i].Value = v
		return
	}
	if b.idx == nil {
		b.idx = make(map[string]int)
	}
	b.idx[key] = len(b.obj)
	b.obj = append(b.obj, &Member{Key: key, Value: v})
}

// Path traverses a sequential path through the structure of a value starting
// at v, where path elements are either strings (denoting object keys) or
// integers (denoting offsets into arrays). If the path is valid, the element
// reached is returned. In case of error, v is returned along with the error.
//
// Negative array indices count backward from the end of the array (-1 is
// last, -2 second last, etc.).
func Path(v Value, path ...any) (Value, error) {
	cur := v
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			o, ok := cur.(Object)
			if !ok {
				return v, fmt.Errorf("cannot traverse %v with %q", kindOf(cur), t)
			}
			m := o.Find(t)
			if m == nil {
				return v, fmt.Errorf("key %q not found", t)
			}
			cur = m.Value
		case int:
			a, ok := cur.(Array)
			if !ok {
				return v, fmt.Errorf("cannot traverse %v with %d", kindOf(cur), t)
			}
			i := t
			if i < 0 {
				i += len(a)
			}
			if i < 0 || i >= len(a) {
				return v, fmt.Errorf("array index %d out of bounds (n=%d)", t, len(a))
			}
			cur = a[i]
		default:
			return v, fmt.Errorf("invalid path element %T", elt)
		}
	}
	return cur, nil
}

func kindOf(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}
