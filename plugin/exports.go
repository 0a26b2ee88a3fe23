//go:build wasip1

package plugin

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/reglet-dev/native-starter/binding"
	"github.com/reglet-dev/native-starter/internal/abi"
	"github.com/reglet-dev/native-starter/internal/wasmcontext"
	_ "github.com/reglet-dev/native-starter/log" // route slog to the host
	"github.com/reglet-dev/native-starter/wireformat"
)

//go:wasmexport sum
func sum(a, b int64) (packed uint64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("plugin: sum panicked", "panic", r, "stack", string(debug.Stack()))
			packed = wireformat.PackSumResult(0, wireformat.StatusInternal)
		}
	}()
	packed = binding.SumPacked(a, b)
	if _, status := wireformat.UnpackSumResult(packed); status != wireformat.StatusOK {
		slog.Debug("plugin: sum rejected", "a", a, "b", b, "status", status.String())
	}
	return packed
}

//go:wasmexport hello
func hello() uint64 {
	return exportBytes("hello", func() ([]byte, error) {
		return Greeting(), nil
	})
}

//go:wasmexport describe
func describe() uint64 {
	return exportBytes("describe", Describe)
}

// exportBytes runs f with panic recovery and returns its bytes packed in
// pinned guest memory. Failures return 0, which the host reports as a null
// response.
func exportBytes(name string, f func() ([]byte, error)) (packed uint64) {
	wasmcontext.SetCurrentContext(context.Background())
	defer wasmcontext.ResetContext()

	defer func() {
		if r := recover(); r != nil {
			abi.FreeAllTracked()
			slog.Error("plugin: export panicked", "export", name, "panic", r, "stack", string(debug.Stack()))
			packed = 0
		}
	}()

	data, err := f()
	if err != nil {
		slog.Error("plugin: export failed", "export", name, "error", err)
		return 0
	}
	return abi.PtrFromBytes(data)
}
