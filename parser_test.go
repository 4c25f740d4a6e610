// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/jasync"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
	"github.com/tailscale/hujson"
)

var budgets = []int{1, 2, 5, 100, 10000}

// testValues are values whose canonical text is used as parser input.
var testValues = []jasync.Value{
	jasync.Null{},
	jasync.Bool(true),
	jasync.Bool(false),
	num(0),
	num(-17),
	num(3.25e-7),
	num(1e21),
	num(123456789),
	str(""),
	str("plain"),
	str("quote \" backslash \\ slash / tab \t newline \n"),
	str("brackets [{,}] and colons :"),
	str("snow ☃ and \U0001F600"),
	arr{},
	obj{},
	arr{arr{arr{}}, obj{}},
	arr{num(1), num(2), num(3), num(4), num(5)},
	obj{
		field("name", str("jasync")),
		field("tags", arr{str("a"), str("b,c"), str("[x]"), str(`"}"`)}),
		field("nested", obj{field("deep", arr{arr{arr{}}, obj{}, arr{jasync.Null{}}})}),
		field("nums", arr{num(0), num(-1.5), num(1e21), num(3.25e-7), num(123456789)}),
		field("flags", arr{jasync.Bool(true), jasync.Bool(false), jasync.Null{}}),
		field("", str("")),
		field("esc\"aped", obj{field("k", str("v"))}),
	},
}

func TestRoundTrip(t *testing.T) {
	for _, want := range testValues {
		input := want.JSON()
		for _, budget := range budgets {
			got, err := jasync.Parse(input, budget)
			if err != nil {
				t.Errorf("Parse(%#q, %d): unexpected error: %v", input, budget, err)
				continue
			}
			if diff := cmp.Diff(want, got.Value); diff != "" {
				t.Errorf("Parse(%#q, %d) (-want, +got):\n%s", input, budget, diff)
			}
			if got.Rest != "" {
				t.Errorf("Parse(%#q, %d) rest: got %#q, want empty", input, budget, got.Rest)
			}
		}
	}
}

func TestBudgetInvariance(t *testing.T) {
	inputs := []string{
		`{"a":"x[y]z","b":1}`,
		`{"a":"}","b":[{"c":"]"}]}`,
		`["a\"b", "c\\", "\\\"", "\"[\""]`,
		`{"a":1,"b":2,"a":[3]}`,
		`[[[[[[[[1]]]]]]],[[[[2]]]]]`,
		`[1e3, -2.5E-2, 0.5, -0]`,
		"{\n  \"list\": [\n    1,\n    2\n  ],\n  \"obj\" : { }\n}",
		`[ ]`,
	}
	for _, input := range inputs {
		want, err := jasync.DecodeLiteral(input)
		if err != nil {
			t.Fatalf("DecodeLiteral(%#q): %v", input, err)
		}
		for _, budget := range budgets {
			got, err := jasync.Parse(input, budget)
			if err != nil {
				t.Errorf("Parse(%#q, %d): unexpected error: %v", input, budget, err)
				continue
			}
			if diff := cmp.Diff(want, got.Value); diff != "" {
				t.Errorf("Parse(%#q, %d) (-want, +got):\n%s", input, budget, diff)
			}
		}
	}
}

func TestBudgetInvarianceInvalidNumbers(t *testing.T) {
	// Numbers outside the JSON grammar fail whether or not the container
	// fits the budget.
	inputs := []string{`[01]`, `[.5]`, `[+1]`, `[1.]`, `[1e]`, `[-]`, `[1,-01.5]`}
	for _, input := range inputs {
		for _, budget := range budgets {
			got, err := jasync.Parse(input, budget)
			if err == nil {
				t.Errorf("Parse(%#q, %d): got %v, want error", input, budget, got.Value)
			} else if !errors.Is(err, jasync.ErrMalformedNumber) && !errors.Is(err, jasync.ErrMalformedLiteral) {
				t.Errorf("Parse(%#q, %d): got %v, want malformed number or literal", input, budget, err)
			}
		}
	}
}

func TestPrettyInput(t *testing.T) {
	for _, v := range testValues {
		compact := v.JSON()
		pretty, err := hujson.Format([]byte(compact))
		if err != nil {
			t.Fatalf("Format %#q: %v", compact, err)
		}
		pretty, err = hujson.Standardize(pretty)
		if err != nil {
			t.Fatalf("Standardize %#q: %v", pretty, err)
		}
		for _, budget := range budgets {
			got, err := jasync.Parse(string(pretty), budget)
			if err != nil {
				t.Errorf("Parse(%#q, %d): unexpected error: %v", pretty, budget, err)
				continue
			}
			if diff := cmp.Diff(v, got.Value); diff != "" {
				t.Errorf("Parse(%#q, %d) (-want, +got):\n%s", pretty, budget, diff)
			}
			if strings.TrimSpace(got.Rest) != "" {
				t.Errorf("Parse(%#q, %d) rest: got %#q, want whitespace", pretty, budget, got.Rest)
			}
		}
	}
}

func TestRemainder(t *testing.T) {
	tests := []struct {
		input string
		want  jasync.Value
		rest  string
	}{
		{`42 trailing`, num(42), ` trailing`},
		{`"s"x`, str("s"), `x`},
		{`true,false`, jasync.Bool(true), `,false`},
		{`[1,2] tail`, arr{num(1), num(2)}, ` tail`},
		{`{"a":[]}{"b":2}`, obj{field("a", arr{})}, `{"b":2}`},
		{`  null  `, jasync.Null{}, `  `},
	}
	for _, test := range tests {
		for _, budget := range budgets {
			got, err := jasync.Parse(test.input, budget)
			if err != nil {
				t.Errorf("Parse(%#q, %d): unexpected error: %v", test.input, budget, err)
				continue
			}
			if diff := cmp.Diff(test.want, got.Value); diff != "" {
				t.Errorf("Parse(%#q, %d) (-want, +got):\n%s", test.input, budget, diff)
			}
			if got.Rest != test.rest {
				t.Errorf("Parse(%#q, %d) rest: got %#q, want %#q", test.input, budget, got.Rest, test.rest)
			}
		}
	}
}

func TestForcedFallback(t *testing.T) {
	const input = `[1,2,3,4,5]`
	want := arr{num(1), num(2), num(3), num(4), num(5)}

	t.Run("Sync", func(t *testing.T) {
		var loop jasync.Loop
		d := jasync.NewParser(1000).Start(input, &loop)
		if !d.Ready() {
			t.Fatal("Result is pending, want ready")
		}
		if n := loop.Len(); n != 0 {
			t.Errorf("Loop has %d tasks, want 0", n)
		}
		got, err := d.Result()
		if err != nil {
			t.Fatalf("Result: unexpected error: %v", err)
		}
		if diff := cmp.Diff(want, got.Value); diff != "" {
			t.Errorf("Result (-want, +got):\n%s", diff)
		}
	})

	t.Run("Async", func(t *testing.T) {
		var loop jasync.Loop
		d := jasync.NewParser(2).Start(input, &loop)
		if d.Ready() {
			t.Fatal("Result is ready, want pending")
		}
		if _, err := d.Result(); !errors.Is(err, jasync.ErrPending) {
			t.Errorf("Result: got %v, want %v", err, jasync.ErrPending)
		}

		// One step per element.
		if n := loop.Run(); n != 5 {
			t.Errorf("Run: ran %d tasks, want 5", n)
		}
		got, err := d.Result()
		if err != nil {
			t.Fatalf("Result: unexpected error: %v", err)
		}
		if diff := cmp.Diff(want, got.Value); diff != "" {
			t.Errorf("Result (-want, +got):\n%s", diff)
		}
	})
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input  string
		budget int
		want   error
		sync   bool // the error is reported before any step is scheduled
	}{
		{`"unterminated`, 10, jasync.ErrMalformedString, true},
		{`{"a":`, 100, jasync.ErrUnexpectedEnd, true},
		{`{"a":`, 2, jasync.ErrUnexpectedEnd, false},
		{`{"a"`, 2, jasync.ErrMissingKey, false},
		{`{1:2}`, 2, jasync.ErrMissingKey, false},
		{`{"a":1,}`, 2, jasync.ErrMissingKey, false},
		{`{1:2}`, 100, jasync.ErrMalformedLiteral, true},
		{`[1 2]`, 2, jasync.ErrMalformedContainer, false},
		{`{"a":1]`, 2, jasync.ErrMalformedContainer, false},
		{`[1,]`, 2, jasync.ErrMalformedNumber, false},
		{`@`, 10, jasync.ErrMalformedNumber, true},
		{``, 10, jasync.ErrUnexpectedEnd, true},
		{`tr`, 10, jasync.ErrMalformedLiteral, true},
		{`[1,2]`, 0, jasync.ErrInvalidBudget, true},
		{`["a\q"]`, 2, jasync.ErrMalformedString, false},
		{`["a\q"]`, 100, jasync.ErrMalformedLiteral, true},
		{`[1,2`, 2, jasync.ErrUnexpectedEnd, false},
		{`[1,2`, 100, jasync.ErrUnexpectedEnd, true},
		{`[[1,2],[3,}]]`, 3, jasync.ErrMalformedNumber, false},
	}
	for _, test := range tests {
		var loop jasync.Loop
		d := jasync.NewParser(test.budget).Start(test.input, &loop)
		if d.Ready() != test.sync {
			t.Errorf("Start(%#q, %d): ready is %v, want %v", test.input, test.budget, d.Ready(), test.sync)
		}
		got, err := loop.Await(context.Background(), d)
		if !errors.Is(err, test.want) {
			t.Errorf("Start(%#q, %d): got (%v, %v), want %v", test.input, test.budget, got.Value, err, test.want)
		}
	}
}

func TestErrorOffset(t *testing.T) {
	tests := []struct {
		input  string
		budget int
		pos    int
	}{
		{`[1 2]`, 2, 3},
		{`  "abc`, 10, 2},
		{`{"a":1, 2:3}`, 1, 8},
		{`[[1],[2,@]]`, 1, 8},
		{`{"k":[1,2,3],"x":01x}`, 4, 17},
		{`{"k":[1,2,3],"x":1x}`, 4, 18},
	}
	for _, test := range tests {
		_, err := jasync.Parse(test.input, test.budget)
		var serr *jasync.SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("Parse(%#q, %d): got %v, want *SyntaxError", test.input, test.budget, err)
		} else if serr.Offset != test.pos {
			t.Errorf("Parse(%#q, %d): error at offset %d, want %d (%v)", test.input, test.budget, serr.Offset, test.pos, err)
		}
	}
}

func TestDeepNesting(t *testing.T) {
	const depth = 100000
	input := strings.Repeat("[", depth) + strings.Repeat("]", depth)

	got, err := jasync.Parse(input, 1)
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	var n int
	for v := got.Value; ; n++ {
		a, ok := v.(jasync.Array)
		if !ok {
			t.Fatalf("At depth %d: got %T, want array", n, v)
		}
		if len(a) == 0 {
			break
		}
		v = a[0]
	}
	if n != depth-1 {
		t.Errorf("Got nesting depth %d, want %d", n+1, depth)
	}
}

func TestInterleave(t *testing.T) {
	var loop jasync.Loop
	p := jasync.NewParser(1)

	var order []string
	record := func(tag string) func(jasync.Result, error) {
		return func(r jasync.Result, err error) {
			if err != nil {
				t.Errorf("Parse %s failed: %v", tag, err)
			}
			order = append(order, tag)
		}
	}

	// The long parse starts first, but yields between elements so the short
	// one can finish ahead of it.
	long := p.Start(`[1,2,3,4,5,6,7,8,9,10]`, &loop)
	short := p.Start(`[1]`, &loop)
	long.Then(record("long"))
	short.Then(record("short"))

	loop.Run()
	if diff := cmp.Diff([]string{"short", "long"}, order); diff != "" {
		t.Errorf("Completion order (-want, +got):\n%s", diff)
	}
}

func TestParserParse(t *testing.T) {
	p := jasync.NewParser(3)
	if got := p.MaxSize(); got != 3 {
		t.Errorf("MaxSize: got %d, want 3", got)
	}
	got, err := p.Parse(context.Background(), `{"a":[1,{"b":[2,3]}]} rest`)
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	want := obj{field("a", arr{num(1), obj{field("b", arr{num(2), num(3)})}})}
	if diff := cmp.Diff(want, got.Value); diff != "" {
		t.Errorf("Parse (-want, +got):\n%s", diff)
	}
	if got.Rest != " rest" {
		t.Errorf("Parse rest: got %#q, want %#q", got.Rest, " rest")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Parse(ctx, `[1,2,3,4,5,6]`); !errors.Is(err, context.Canceled) {
		t.Errorf("Parse with cancelled context: got %v, want %v", err, context.Canceled)
	}
	if got, err := p.Parse(ctx, `7`); err != nil || got.Value != num(7) {
		t.Errorf("Parse of a scalar: got (%v, %v), want 7", got.Value, err)
	}
}

func TestNilScheduler(t *testing.T) {
	// Results that are ready at once do not need a scheduler.
	d := jasync.NewParser(100).Start(`[1,2]`, nil)
	var ran bool
	d.Then(func(jasync.Result, error) { ran = true })
	if !ran {
		t.Error("Then did not run inline without a scheduler")
	}

	mtest.MustPanic(t, func() { jasync.NewParser(1).Start(`[1,2]`, nil) })
}
