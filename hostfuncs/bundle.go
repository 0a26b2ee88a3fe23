package hostfuncs

import (
	"github.com/reglet-dev/native-starter/binding"
)

// DefaultMaxRequestSize limits the size of incoming requests (1MB).
// This prevents a guest from triggering OOM by claiming huge request sizes.
const DefaultMaxRequestSize = 1 * 1024 * 1024

// HostFuncBundle is a pre-configured set of related host functions.
// Bundles allow registering multiple handlers at once.
type HostFuncBundle interface {
	// Handlers returns a map of handler names to ByteHandler functions.
	Handlers() map[string]ByteHandler
}

// staticBundle implements HostFuncBundle with a fixed set of handlers.
type staticBundle struct {
	handlers map[string]ByteHandler
}

func (b *staticBundle) Handlers() map[string]ByteHandler {
	return b.handlers
}

// NativeBundle returns a bundle with one handler per binding export:
// sum, hello.
func NativeBundle() HostFuncBundle {
	exports := binding.Exports()
	handlers := make(map[string]ByteHandler, len(exports))
	for _, exp := range exports {
		handlers[exp.Name] = NewExportHandler(exp)
	}
	return &staticBundle{handlers: handlers}
}

// WithBundle registers all handlers from a bundle.
func WithBundle(bundle HostFuncBundle) RegistryOption {
	return func(b *registryBuilder) {
		for name, handler := range bundle.Handlers() {
			if err := b.addHandler(name, handler); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}
