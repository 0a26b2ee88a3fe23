// Package wireformat defines the numeric ABI shared by the WASM host and guest.
// These encodings must remain stable and backward compatible as they define
// the ABI contract of the sum and hello exports.
package wireformat

import (
	"fmt"

	"github.com/reglet-dev/native-starter/domain/entities"
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
)

// Status is the outcome carried in the high half of a packed sum result.
type Status uint32

const (
	// StatusOK means the low half holds the exact sum.
	StatusOK Status = iota
	// StatusTypeMismatch means an argument was not a representable i32.
	StatusTypeMismatch
	// StatusOverflow means the exact sum does not fit in an i32.
	StatusOverflow

	// StatusInternal means the callee failed for a reason outside the
	// sum contract, e.g. a recovered guest panic.
	StatusInternal Status = 0xFFFFFFFF
)

// String returns the error code associated with the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusTypeMismatch:
		return domainerrors.CodeNumberExpected
	case StatusOverflow:
		return domainerrors.CodeIntegerOverflow
	default:
		return domainerrors.CodeGenericFailure
	}
}

// PackSumResult packs a sum result into a single i64.
// Upper 32 bits: status, lower 32 bits: the value as two's complement.
func PackSumResult(value int32, status Status) uint64 {
	return (uint64(status) << 32) | uint64(uint32(value))
}

// UnpackSumResult unpacks a value packed with PackSumResult.
func UnpackSumResult(packed uint64) (value int32, status Status) {
	status = Status(packed >> 32) //nolint:gosec // G115: Packed format stores 32-bit values
	value = int32(uint32(packed)) //nolint:gosec // G115: Packed format stores 32-bit values
	return value, status
}

// StatusFromError maps a domain error to its ABI status.
func StatusFromError(err error) Status {
	switch domainerrors.Code(err) {
	case "":
		return StatusOK
	case domainerrors.CodeNumberExpected:
		return StatusTypeMismatch
	case domainerrors.CodeIntegerOverflow:
		return StatusOverflow
	default:
		return StatusInternal
	}
}

// Err rebuilds the domain error for a status. a and b are the arguments the
// caller sent and are only used to fill in error fields.
func (s Status) Err(a, b int32) error {
	switch s {
	case StatusOK:
		return nil
	case StatusTypeMismatch:
		return &domainerrors.TypeMismatchError{
			Export:   "sum",
			Expected: entities.KindI32,
			Got:      "out of range integer",
		}
	case StatusOverflow:
		return &domainerrors.OverflowError{Op: "sum", A: a, B: b}
	default:
		return &entities.ErrorDetail{
			Type:    "internal",
			Code:    domainerrors.CodeGenericFailure,
			Message: fmt.Sprintf("unknown sum status %d", uint32(s)),
		}
	}
}

// PackPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func PackPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// UnpackPtrLen unpacks a pointer and length from a packed i64.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}

// InI32Range reports whether a raw i64 argument is representable as an i32.
func InI32Range(v int64) bool {
	return v >= -1<<31 && v <= 1<<31-1
}
