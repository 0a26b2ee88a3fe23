package host

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/native-starter/application/validation"
	"github.com/reglet-dev/native-starter/domain/entities"
	"github.com/reglet-dev/native-starter/domain/ports"
	"github.com/reglet-dev/native-starter/infrastructure/parser"
)

type loaderConfig struct {
	parser    ports.ManifestParser
	validator ports.ManifestValidator
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		parser:    parser.NewYamlManifestParser(),
		validator: validation.NewManifestValidator(),
	}
}

// Loader parses and validates manifest documents shipped next to plugins.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser sets a custom manifest parser.
func WithParser(p ports.ManifestParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithValidator sets a custom manifest validator.
func WithValidator(v ports.ManifestValidator) LoaderOption {
	return func(c *loaderConfig) {
		c.validator = v
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{config: cfg}
}

// LoadManifest parses and validates a manifest.
func (l *Loader) LoadManifest(raw []byte) (*entities.Manifest, error) {
	m, err := l.config.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if l.config.validator != nil {
		res, err := l.config.validator.Validate(m)
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if !res.Valid {
			var sb strings.Builder
			sb.WriteString("manifest validation failed:")
			for _, e := range res.Errors {
				fmt.Fprintf(&sb, "\n- %s: %s", e.Field, e.Message)
			}
			return nil, fmt.Errorf("%s", sb.String())
		}
	}

	return m, nil
}

// Compatible reports the exports a plugin manifest declares with signatures
// different from the ones this host expects.
func Compatible(want, got *entities.Manifest) error {
	var problems []string
	for _, w := range want.Exports {
		g, ok := got.Export(w.Name)
		if !ok {
			problems = append(problems, fmt.Sprintf("missing export %q", w.Name))
			continue
		}
		if g.Result != w.Result || !sameKinds(g.Params, w.Params) {
			problems = append(problems, fmt.Sprintf("export %q: have (%v) -> %s, want (%v) -> %s",
				w.Name, g.Params, g.Result, w.Params, w.Result))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("incompatible plugin %s: %s", got.Name, strings.Join(problems, "; "))
	}
	return nil
}

func sameKinds(a, b []entities.ValueKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
