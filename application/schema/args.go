package schema

import (
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/native-starter/binding"
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
)

// SumArgs is the argument tuple of sum, named positionally: a is argument 0
// and b is argument 1.
type SumArgs struct {
	A int32 `json:"a" jsonschema:"title=a,description=First addend,minimum=-2147483648,maximum=2147483647"`
	B int32 `json:"b" jsonschema:"title=b,description=Second addend,minimum=-2147483648,maximum=2147483647"`
}

// HelloArgs is the empty argument tuple of hello.
type HelloArgs struct{}

// ArgsModel returns the struct describing an export's arguments.
func ArgsModel(export string) (any, bool) {
	switch export {
	case binding.ExportSum:
		return SumArgs{}, true
	case binding.ExportHello:
		return HelloArgs{}, true
	default:
		return nil, false
	}
}

// ArgsSchema returns the JSON schema of an export's arguments.
func ArgsSchema(export string) (json.RawMessage, error) {
	model, ok := ArgsModel(export)
	if !ok {
		return nil, &domainerrors.UnknownExportError{Name: export}
	}
	data, err := GenerateSchema(model)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", export, err)
	}
	return data, nil
}

// ArgsObject names positional arguments after the fields of the export's
// args model so they can be checked against ArgsSchema.
func ArgsObject(export string, args []any) (map[string]any, error) {
	var names []string
	switch export {
	case binding.ExportSum:
		names = []string{"a", "b"}
	case binding.ExportHello:
	default:
		return nil, &domainerrors.UnknownExportError{Name: export}
	}

	obj := make(map[string]any, len(names))
	for i, name := range names {
		if i < len(args) && args[i] != nil {
			obj[name] = args[i]
		}
	}
	return obj, nil
}
