// Package native holds the two pure operations exposed across the binding
// boundary. Nothing here knows about hosts, wire formats or coercion; callers
// hand in already-typed values.
package native

import (
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
)

// Greeting is the constant returned by Hello.
const Greeting = "Hello there"

// Sum returns a+b, or an *errors.OverflowError when the exact sum does not fit
// in an int32. The result is never wrapped or saturated.
func Sum(a, b int32) (int32, error) {
	s, ok := checkedAdd(a, b)
	if !ok {
		return 0, &domainerrors.OverflowError{Op: "sum", A: a, B: b}
	}
	return s, nil
}

// Hello returns the fixed greeting.
func Hello() string {
	return Greeting
}

// checkedAdd adds with two's complement wraparound and reports whether the
// wrapped value is the exact sum. Overflow happened iff both operands share a
// sign and the result does not.
func checkedAdd(a, b int32) (int32, bool) {
	s := a + b
	if (a >= 0) == (b >= 0) && (s >= 0) != (a >= 0) {
		return s, false
	}
	return s, true
}
