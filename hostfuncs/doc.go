// Package hostfuncs exposes the native exports over a JSON byte channel.
//
// Each export is a ByteHandler: JSON CallRequest in, JSON CallResponse out.
// Domain failures (type mismatch, overflow) travel inside the response with
// their machine-checkable code; a Go error is only returned for failures of
// the channel itself. The package has no WASM runtime dependencies, so any
// host (wazero, a CLI, a test) can drive it.
package hostfuncs
