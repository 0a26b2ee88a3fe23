package ports

import "context"

// Native is anything that can run the two native exports: the in-process
// binding, the JSON host function channel, or a loaded WASM plugin.
// Arguments are untyped host values; each implementation coerces them at
// its own boundary.
type Native interface {
	Sum(ctx context.Context, a, b any) (int32, error)
	Hello(ctx context.Context) (string, error)
}
