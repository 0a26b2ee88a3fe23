package entities

import "encoding/json"

// ValueKind names a primitive type that can cross the boundary.
type ValueKind string

const (
	// KindI32 is a 32-bit signed integer.
	KindI32 ValueKind = "i32"
	// KindString is UTF-8 text.
	KindString ValueKind = "string"
)

// ExportManifest describes one host-visible function.
type ExportManifest struct {
	// ArgsSchema is the JSON schema of the argument tuple, if any.
	ArgsSchema json.RawMessage `json:"args_schema,omitempty" yaml:"-"`

	Name        string      `json:"name" yaml:"name" validate:"required"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Result      ValueKind   `json:"result" yaml:"result" validate:"required,oneof=i32 string"`
	Params      []ValueKind `json:"params" yaml:"params" validate:"dive,oneof=i32 string"`
	Arity       int         `json:"arity" yaml:"arity" validate:"gte=0"`
}

// Manifest describes a native module and its exports.
type Manifest struct {
	Name        string           `json:"name" yaml:"name" validate:"required"`
	Version     string           `json:"version" yaml:"version" validate:"required"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Exports     []ExportManifest `json:"exports" yaml:"exports" validate:"required,min=1,dive"`
}

// Export returns the export with the given name.
func (m *Manifest) Export(name string) (ExportManifest, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return ExportManifest{}, false
}
