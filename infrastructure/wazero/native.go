package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/native-starter/binding"
	"github.com/reglet-dev/native-starter/native"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// NativeModule is the module name guests import the numeric exports from.
const NativeModule = "native"

// RegisterNative exports sum and hello on the "native" host module using the
// numeric ABI:
//
//	sum(a i64, b i64) -> i64    packed (status, value), see wireformat.PackSumResult
//	hello() -> i64              packed ptr+len of the greeting in caller memory
//
// sum takes i64 so that values outside the i32 range reach the host and are
// reported as StatusTypeMismatch instead of being truncated by the guest.
func RegisterNative(ctx context.Context, runtime wazero.Runtime, opts ...AdapterOption) error {
	cfg := newAdapterConfig(append([]AdapterOption{WithModuleName(NativeModule)}, opts...))
	logger := cfg.Logger

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = binding.SumPacked(int64(stack[0]), int64(stack[1])) //nolint:gosec // G115: i64 params are two's complement
		}), []api.ValueType{api.ValueTypeI64, api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
		WithParameterNames("a", "b").
		Export(binding.ExportSum)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			stack[0] = writeResponse(ctx, mod, []byte(native.Hello()), logger.With("function", binding.ExportHello))
		}), nil, []api.ValueType{api.ValueTypeI64}).
		Export(binding.ExportHello)

	for _, ch := range cfg.CustomHandlers {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("failed to instantiate host module %q: %w", cfg.ModuleName, err)
	}
	slog.DebugContext(ctx, "wazero: native module registered", "module", cfg.ModuleName)
	return nil
}
