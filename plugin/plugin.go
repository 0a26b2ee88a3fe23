// Package plugin is the guest side of a native plugin. Imported into a
// wasip1 reactor it exports sum, hello and describe over the numeric ABI,
// plus allocate/deallocate from internal/abi.
package plugin

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/reglet-dev/native-starter/application/manifest"
	"github.com/reglet-dev/native-starter/binding"
)

var describeOnce = sync.OnceValues(func() ([]byte, error) {
	m, err := manifest.Build()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return data, nil
})

// Describe returns the JSON manifest the describe export hands to the host.
// It is built once per instance.
func Describe() ([]byte, error) {
	return describeOnce()
}

// Greeting returns the bytes of the hello export.
func Greeting() []byte {
	return []byte(binding.Hello())
}
