package binding

import (
	"context"
	"errors"

	"github.com/reglet-dev/native-starter/domain/entities"
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
	"github.com/reglet-dev/native-starter/native"
)

// Host-visible export names.
const (
	ExportSum   = "sum"
	ExportHello = "hello"
)

// InvokeFunc runs an export with already-received host arguments.
type InvokeFunc func(ctx context.Context, args []any) (any, error)

// Export describes one function reachable from the host.
type Export struct {
	Invoke      InvokeFunc
	Name        string
	Description string
	Result      entities.ValueKind
	Params      []entities.ValueKind
}

// Arity returns the number of declared parameters.
func (e Export) Arity() int {
	return len(e.Params)
}

// Manifest returns the wire description of the export.
func (e Export) Manifest() entities.ExportManifest {
	params := make([]entities.ValueKind, len(e.Params))
	copy(params, e.Params)
	return entities.ExportManifest{
		Name:        e.Name,
		Description: e.Description,
		Params:      params,
		Result:      e.Result,
		Arity:       e.Arity(),
	}
}

// Exports returns the export table. The table is rebuilt on each call, so
// callers may modify the returned slice freely.
func Exports() []Export {
	return []Export{
		{
			Name:        ExportSum,
			Description: "Adds two 32-bit integers with overflow checking",
			Params:      []entities.ValueKind{entities.KindI32, entities.KindI32},
			Result:      entities.KindI32,
			Invoke:      invokeSum,
		},
		{
			Name:        ExportHello,
			Description: "Returns a greeting message",
			Result:      entities.KindString,
			Invoke:      invokeHello,
		},
	}
}

// Lookup returns the export with the given name.
func Lookup(name string) (Export, bool) {
	for _, e := range Exports() {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}

// Call invokes the named export with host arguments. Missing arguments are
// treated as absent values; arguments past the arity are ignored.
func Call(ctx context.Context, name string, args ...any) (any, error) {
	exp, ok := Lookup(name)
	if !ok {
		return nil, &domainerrors.UnknownExportError{Name: name}
	}
	return exp.Invoke(ctx, args)
}

// Sum is the typed entry point for the sum export.
func Sum(a, b any) (int32, error) {
	x, y, err := SumOperands(a, b)
	if err != nil {
		return 0, err
	}
	return native.Sum(x, y)
}

// SumOperands coerces both sum arguments, left to right, without adding
// them. Callers that forward the operands elsewhere use it to reject bad
// values before they leave the process.
func SumOperands(a, b any) (int32, int32, error) {
	x, err := arg(ExportSum, 0, a)
	if err != nil {
		return 0, 0, err
	}
	y, err := arg(ExportSum, 1, b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// Hello is the typed entry point for the hello export.
func Hello() string {
	return native.Hello()
}

func invokeSum(_ context.Context, args []any) (any, error) {
	a, b := argAt(args, 0), argAt(args, 1)
	v, err := Sum(a, b)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func invokeHello(_ context.Context, _ []any) (any, error) {
	return Hello(), nil
}

func argAt(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// arg coerces a single argument and stamps the export name and position on a
// type mismatch.
func arg(export string, index int, v any) (int32, error) {
	n, err := Int32(v)
	if err != nil {
		var tm *domainerrors.TypeMismatchError
		if errors.As(err, &tm) {
			tm.Export = export
			tm.Index = index
		}
		return 0, err
	}
	return n, nil
}
