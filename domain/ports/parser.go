package ports

import "github.com/reglet-dev/native-starter/domain/entities"

// ManifestParser decodes a manifest document.
type ManifestParser interface {
	// Parse unmarshals raw bytes into a Manifest.
	Parse(data []byte) (*entities.Manifest, error)
}
