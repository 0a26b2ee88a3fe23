// Package parser decodes manifest documents.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/native-starter/domain/entities"
	"github.com/reglet-dev/native-starter/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlManifestParser implements ManifestParser for YAML. JSON documents are
// decoded with encoding/json so that args_schema survives verbatim.
type YamlManifestParser struct{}

// NewYamlManifestParser creates a new YamlManifestParser.
func NewYamlManifestParser() ports.ManifestParser {
	return &YamlManifestParser{}
}

// Parse unmarshals YAML or JSON bytes into a Manifest. Unknown fields are
// rejected.
func (p *YamlManifestParser) Parse(data []byte) (*entities.Manifest, error) {
	var manifest entities.Manifest

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&manifest); err != nil {
			return nil, fmt.Errorf("failed to decode JSON manifest: %w", err)
		}
		return &manifest, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to decode YAML manifest: %w", err)
	}
	return &manifest, nil
}
