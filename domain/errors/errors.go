// Package errors provides the error taxonomy of the binding boundary.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/native-starter/domain/entities"
)

// Machine-checkable error codes carried across the boundary.
const (
	// CodeNumberExpected identifies an argument that is not a representable i32.
	CodeNumberExpected = "NumberExpected"
	// CodeIntegerOverflow identifies a checked arithmetic overflow.
	CodeIntegerOverflow = "IntegerOverflow"
	// CodeNotFound identifies a call to an export that does not exist.
	CodeNotFound = "NotFound"
	// CodeGenericFailure identifies any other failure.
	CodeGenericFailure = "GenericFailure"
)

// OverflowMessage is the stable message of a sum overflow.
const OverflowMessage = "Integer overflow in sum operation"

// Sentinels for errors.Is matching. The concrete types below match them.
var (
	ErrTypeMismatch  = stdErrors.New("type mismatch")
	ErrOverflow      = stdErrors.New("integer overflow")
	ErrUnknownExport = stdErrors.New("unknown export")
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail. New error types only need to implement this
// interface without modifying ToErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to the structured ErrorDetail sent to the host.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
		Code:    CodeGenericFailure,
	}
}

// Code returns the machine-checkable code of err, or "" for nil.
func Code(err error) string {
	if err == nil {
		return ""
	}
	return ToErrorDetail(err).Code
}

// FromErrorDetail rebuilds a domain error from a wire ErrorDetail so callers on
// the far side of a channel can still use errors.Is / errors.As.
func FromErrorDetail(d *entities.ErrorDetail) error {
	if d == nil {
		return nil
	}
	switch d.Code {
	case CodeNumberExpected:
		e := &TypeMismatchError{Expected: entities.KindI32}
		if d.Details != nil {
			if v, ok := d.Details["export"].(string); ok {
				e.Export = v
			}
			if v, ok := d.Details["index"].(float64); ok {
				e.Index = int(v)
			}
			if v, ok := d.Details["got"].(string); ok {
				e.Got = v
			}
		}
		return e
	case CodeIntegerOverflow:
		return &OverflowError{Op: "sum"}
	case CodeNotFound:
		name, _ := d.Details["name"].(string)
		return &UnknownExportError{Name: name}
	default:
		return d
	}
}

// TypeMismatchError reports an argument that cannot be coerced to the
// expected primitive type. It is raised before any computation happens.
type TypeMismatchError struct {
	Export   string
	Got      string
	Expected entities.ValueKind
	Index    int
}

func (e *TypeMismatchError) Error() string {
	if e.Export != "" {
		return fmt.Sprintf("%s: argument %d: expected %s, got %s", e.Export, e.Index, e.Expected, e.Got)
	}
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
}

// Is matches ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// ToErrorDetail implements DetailedError.
func (e *TypeMismatchError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "type_mismatch",
		Code:    CodeNumberExpected,
		Details: map[string]any{
			"export":   e.Export,
			"index":    e.Index,
			"expected": string(e.Expected),
			"got":      e.Got,
		},
	}
}

// OverflowError reports a checked arithmetic result outside the i32 range.
type OverflowError struct {
	Op string
	A  int32
	B  int32
}

func (e *OverflowError) Error() string {
	return OverflowMessage
}

// Is matches ErrOverflow.
func (e *OverflowError) Is(target error) bool {
	return target == ErrOverflow
}

// ToErrorDetail implements DetailedError.
func (e *OverflowError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "overflow",
		Code:    CodeIntegerOverflow,
		Details: map[string]any{"op": e.Op},
	}
}

// UnknownExportError reports a call to a name the module does not export.
type UnknownExportError struct {
	Name string
}

func (e *UnknownExportError) Error() string {
	return fmt.Sprintf("unknown export: %q", e.Name)
}

// Is matches ErrUnknownExport.
func (e *UnknownExportError) Is(target error) bool {
	return target == ErrUnknownExport
}

// ToErrorDetail implements DetailedError.
func (e *UnknownExportError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "not_found",
		Code:    CodeNotFound,
		Details: map[string]any{"name": e.Name},
	}
}

// WireFormatError represents a wire format encoding/decoding error.
type WireFormatError struct {
	Err       error
	Operation string
	Type      string
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("wire format %s failed for %s: %v", e.Operation, e.Type, e.Err)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WireFormatError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "wire_format"}
}
