// Package binding is the boundary between an untyped host and the typed
// functions in package native.
//
// Every value arriving from the host goes through Int32 (or is ignored, for
// zero-arity exports) before native code runs, and every native result or
// error leaves through Call. Two failure classes are distinguishable by code:
//
//	NumberExpected   an argument is not a representable i32 (raised before any arithmetic)
//	IntegerOverflow  the exact sum does not fit in an i32
//
// The package holds no state. Exports builds a fresh table on every call and
// all functions are safe for concurrent use.
package binding
