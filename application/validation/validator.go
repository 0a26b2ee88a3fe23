// Package validation checks manifests and configuration structs.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/native-starter/domain/entities"
	"github.com/reglet-dev/native-starter/domain/ports"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// validate is shared; validator caches struct metadata per type.
var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(exportArity, entities.ExportManifest{})
	return v
}

// exportArity requires arity to match the declared params.
func exportArity(sl validator.StructLevel) {
	e, ok := sl.Current().Interface().(entities.ExportManifest)
	if !ok {
		return
	}
	if e.Arity != len(e.Params) {
		sl.ReportError(e.Arity, "arity", "Arity", "arity_matches_params", fmt.Sprint(len(e.Params)))
	}
}

// ManifestValidator validates manifests with struct tags, the arity rule,
// unique export names, and compilable argument schemas.
type ManifestValidator struct{}

// NewManifestValidator creates a new validator.
func NewManifestValidator() ports.ManifestValidator {
	return &ManifestValidator{}
}

// Validate checks the manifest and collects every problem found.
func (v *ManifestValidator) Validate(manifest *entities.Manifest) (*entities.ValidationResult, error) {
	if manifest == nil {
		return nil, errors.New("manifest is nil")
	}
	result := &entities.ValidationResult{Valid: true}

	if err := validate.Struct(manifest); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("manifest validation failed: %w", err)
		}
		for _, fe := range verrs {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   fieldPath(fe.Namespace()),
				Message: describeFieldError(fe),
			})
		}
	}

	seen := make(map[string]bool, len(manifest.Exports))
	for i, e := range manifest.Exports {
		if e.Name != "" && seen[e.Name] {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   fmt.Sprintf("exports[%d].name", i),
				Message: fmt.Sprintf("duplicate export %q", e.Name),
			})
		}
		seen[e.Name] = true

		if len(e.ArgsSchema) > 0 {
			if _, err := CompileSchema(e.Name, e.ArgsSchema); err != nil {
				result.Errors = append(result.Errors, entities.ValidationError{
					Field:   fmt.Sprintf("exports[%d].args_schema", i),
					Message: err.Error(),
				})
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// CompileSchema compiles a JSON schema document.
func CompileSchema(name string, schema json.RawMessage) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	url := name + ".schema.json"
	if err := compiler.AddResource(url, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("invalid schema for %s: %w", name, err)
	}
	sch, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("invalid schema for %s: %w", name, err)
	}
	return sch, nil
}

// ValidateArgs checks a named argument object against an export's schema.
func ValidateArgs(name string, schema json.RawMessage, args map[string]any) error {
	sch, err := CompileSchema(name, schema)
	if err != nil {
		return err
	}
	// Round-trip through JSON so Go numeric types become the json.Number
	// values the schema library understands.
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("arguments for %s: %w", name, err)
	}
	return nil
}

// ValidateStruct runs the tag validators on any struct, e.g. CLI config.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "gte":
		return "must be >= " + fe.Param()
	case "arity_matches_params":
		return fmt.Sprintf("must equal the number of params (%s), got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
