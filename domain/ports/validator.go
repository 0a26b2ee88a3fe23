package ports

import "github.com/reglet-dev/native-starter/domain/entities"

// ManifestValidator checks a manifest for structural problems.
type ManifestValidator interface {
	// Validate reports every problem found. The error is reserved for
	// failures of the validator itself.
	Validate(manifest *entities.Manifest) (*entities.ValidationResult, error)
}
