// Package wazero exposes the native exports to WebAssembly guests running on
// the wazero runtime.
//
// Two host modules are provided:
//
//   - "native" (RegisterNative): the numeric ABI. sum takes two i64 and
//     returns a packed status/value i64; hello returns a packed ptr+len of
//     the greeting written into the caller's memory.
//   - "native_host" (RegisterWithRuntime): every handler of a
//     hostfuncs.HandlerRegistry behind the packed ptr+len JSON ABI, plus
//     custom handlers such as log_message.
//
// # Basic Usage
//
//	registry, err := hostfuncs.NewDefaultRegistry()
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//	if err := wazero.RegisterNative(ctx, runtime); err != nil {
//	    return err
//	}
//	err = wazero.RegisterWithRuntime(ctx, runtime, registry,
//	    wazero.WithCustomHandler(wazero.LogMessageHandler(logger)),
//	)
//
// Both modules need the guest to export "allocate" for any result that does
// not fit in an i64.
package wazero
