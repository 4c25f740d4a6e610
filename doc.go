// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jasync implements an incremental JSON parser for cooperative
// single-threaded programs.
//
// A large JSON array or object can take a long time to parse. A program that
// runs many tasks on one thread, such as an event loop, cannot afford to stop
// for that long. A Parser bounds the work it does in one step and yields to
// the program's Scheduler between steps.
//
// # Parsing
//
// Construct a Parser with a size budget, and call its Start method with the
// input text and a Scheduler. Start returns a Deferred that reports the
// parsed value and the text following it:
//
//	var loop jasync.Loop
//	d := jasync.NewParser(4096).Start(input, &loop)
//	d.Then(func(r jasync.Result, err error) {
//	   if err != nil {
//	      log.Fatalf("Parse failed: %v", err)
//	   }
//	   log.Printf("Value: %s", r.Value.JSON())
//	})
//	loop.Run()
//
// Scalars, and containers that close within the budget, are parsed in one
// step, and the Deferred is ready when Start returns. A container that does
// not close within the budget is built one element at a time, with one step
// scheduled per element. Elements are themselves parsed the same way, so a
// nested container that fits the budget is parsed in one step while a large
// one is built incrementally in turn.
//
// The budget is a number of bytes. It applies afresh to each container: it
// bounds how far ahead the parser scans for the end of a container, not the
// total work of a parse.
//
// For the common case of driving a parse to completion from the current
// goroutine, use the Parse function or the Parse method of a Parser:
//
//	r, err := jasync.Parse(input, 4096)
//
// # Results
//
// The parser consumes one JSON value from the front of its input. Any text
// after the value is returned in the Rest field of the Result, and is not
// checked. Whitespace before a value is skipped, but whitespace after the
// top-level value is left in Rest.
//
// Values are represented by the concrete types Null, Bool, Number, String,
// Array, and Object. Object members keep the order in which their keys first
// appear in the input.
//
// # Errors
//
// A parse that fails before it yields reports its error through a Deferred
// that is already ready when Start returns. A parse that fails after it
// yields reports its error when the Deferred settles. Errors for invalid input
// have concrete type *SyntaxError and wrap one of the Err values of this
// package, which may be checked with errors.Is.
//
// A parse cannot be cancelled once started. A caller that abandons a
// Deferred leaves the remaining steps in its scheduler.
package jasync
