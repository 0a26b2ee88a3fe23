// Package manifest assembles the manifest that describes the native exports.
package manifest

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/native-starter/application/schema"
	"github.com/reglet-dev/native-starter/application/validation"
	"github.com/reglet-dev/native-starter/binding"
	"github.com/reglet-dev/native-starter/domain/entities"
)

// Defaults used when no option overrides them.
const (
	DefaultName        = "native"
	DefaultVersion     = "1.0.0"
	DefaultDescription = "Overflow-checked i32 addition and a constant greeting"
)

type buildConfig struct {
	name        string
	version     string
	description string
	schemas     bool
}

// Option configures Build.
type Option func(*buildConfig)

// WithName overrides the manifest name.
func WithName(name string) Option {
	return func(c *buildConfig) { c.name = name }
}

// WithVersion overrides the manifest version.
func WithVersion(version string) Option {
	return func(c *buildConfig) { c.version = version }
}

// WithoutSchemas leaves args_schema empty, which keeps the manifest small
// for guests that only need the signatures.
func WithoutSchemas() Option {
	return func(c *buildConfig) { c.schemas = false }
}

// Build describes every binding export and validates the result.
func Build(opts ...Option) (*entities.Manifest, error) {
	cfg := buildConfig{
		name:        DefaultName,
		version:     DefaultVersion,
		description: DefaultDescription,
		schemas:     true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &entities.Manifest{
		Name:        cfg.name,
		Version:     cfg.version,
		Description: cfg.description,
	}
	for _, exp := range binding.Exports() {
		em := exp.Manifest()
		if cfg.schemas {
			s, err := schema.ArgsSchema(exp.Name)
			if err != nil {
				return nil, err
			}
			em.ArgsSchema = s
		}
		m.Exports = append(m.Exports, em)
	}

	if err := Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate runs the manifest validator and folds its findings into one error.
func Validate(m *entities.Manifest) error {
	res, err := validation.NewManifestValidator().Validate(m)
	if err != nil {
		return err
	}
	if res.Valid {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("manifest validation failed:")
	for _, e := range res.Errors {
		fmt.Fprintf(&sb, "\n- %s: %s", e.Field, e.Message)
	}
	return fmt.Errorf("%s", sb.String())
}
