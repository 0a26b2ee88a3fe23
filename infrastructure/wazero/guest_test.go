package wazero

import (
	"context"
	"testing"

	"github.com/reglet-dev/native-starter/wireformat"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// guestImport is one host function a test guest imports. The guest
// re-exports it as "call_<Name>" with the same signature.
type guestImport struct {
	Module  string
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Guest memory layout: requests are written below heapBase, allocate always
// returns heapBase.
const (
	requestOffset = 16
	heapBase      = 1024
)

var (
	importNativeSum   = guestImport{Module: NativeModule, Name: "sum", Params: []api.ValueType{api.ValueTypeI64, api.ValueTypeI64}, Results: []api.ValueType{api.ValueTypeI64}}
	importNativeHello = guestImport{Module: NativeModule, Name: "hello", Results: []api.ValueType{api.ValueTypeI64}}
)

func importHostJSON(name string) guestImport {
	return guestImport{Module: DefaultHostModule, Name: name, Params: []api.ValueType{api.ValueTypeI64}, Results: []api.ValueType{api.ValueTypeI64}}
}

var importLogMessage = guestImport{Module: DefaultHostModule, Name: LogMessageFunction, Params: []api.ValueType{api.ValueTypeI64}}

// guestBinary encodes a wasm module that imports every function in imports
// and exports a trampoline for each. With memory set it also exports one
// page of "memory" and "allocate(i32) -> i32".
func guestBinary(imports []guestImport, memory bool) []byte {
	n := uint32(len(imports))

	var types [][]byte
	for _, imp := range imports {
		types = append(types, funcType(imp.Params, imp.Results))
	}
	if memory {
		types = append(types, funcType([]api.ValueType{api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}))
	}

	var importEntries [][]byte
	for i, imp := range imports {
		entry := append(wasmName(imp.Module), wasmName(imp.Name)...)
		entry = append(entry, 0x00) // func
		entry = append(entry, uleb(uint32(i))...)
		importEntries = append(importEntries, entry)
	}

	var funcs, exports, bodies [][]byte
	for i, imp := range imports {
		funcs = append(funcs, uleb(uint32(i)))
		exports = append(exports, exportEntry("call_"+imp.Name, 0x00, n+uint32(i)))

		var body []byte
		for p := range imp.Params {
			body = append(body, 0x20) // local.get
			body = append(body, uleb(uint32(p))...)
		}
		body = append(body, 0x10) // call
		body = append(body, uleb(uint32(i))...)
		bodies = append(bodies, codeEntry(body))
	}

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, section(1, vec(types))...)
	out = append(out, section(2, vec(importEntries))...)

	if !memory {
		out = append(out, section(3, vec(funcs))...)
		out = append(out, section(7, vec(exports))...)
		return append(out, section(10, vec(bodies))...)
	}

	funcs = append(funcs, uleb(n)) // allocate uses the last type
	exports = append(exports,
		exportEntry("allocate", 0x00, 2*n),
		exportEntry("memory", 0x02, 0),
	)
	// i32.const 1024: every allocation reuses the same buffer.
	bodies = append(bodies, codeEntry([]byte{0x41, 0x80, 0x08}))

	// One page, no maximum.
	memories := [][]byte{{0x00, 0x01}}

	out = append(out, section(3, vec(funcs))...)
	out = append(out, section(5, vec(memories))...)
	out = append(out, section(7, vec(exports))...)
	return append(out, section(10, vec(bodies))...)
}

// instantiateGuest compiles and instantiates a test guest named "guest".
func instantiateGuest(t *testing.T, rt wazero.Runtime, imports []guestImport, memory bool) api.Module {
	t.Helper()
	ctx := context.Background()
	mod, err := rt.InstantiateWithConfig(ctx, guestBinary(imports, memory), wazero.NewModuleConfig().WithName("guest"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mod.Close(ctx) })
	return mod
}

// readPacked copies the guest bytes a packed ptr+len points at.
func readPacked(t *testing.T, mod api.Module, packed uint64) []byte {
	t.Helper()
	require.NotZero(t, packed, "host returned a null response")
	ptr, length := wireformat.UnpackPtrLen(packed)
	data, ok := mod.Memory().Read(ptr, length)
	require.True(t, ok, "response out of bounds: ptr=%d len=%d", ptr, length)
	return append([]byte(nil), data...)
}

// writeRequest places data at requestOffset and returns its packed location.
func writeRequest(t *testing.T, mod api.Module, data []byte) uint64 {
	t.Helper()
	require.Less(t, requestOffset+len(data), heapBase)
	require.True(t, mod.Memory().Write(requestOffset, data))
	return wireformat.PackPtrLen(requestOffset, uint32(len(data)))
}

func funcType(params, results []api.ValueType) []byte {
	out := []byte{0x60}
	out = append(out, uleb(uint32(len(params)))...)
	out = append(out, params...)
	out = append(out, uleb(uint32(len(results)))...)
	return append(out, results...)
}

func exportEntry(name string, kind byte, index uint32) []byte {
	out := append(wasmName(name), kind)
	return append(out, uleb(index)...)
}

func codeEntry(instrs []byte) []byte {
	body := append([]byte{0x00}, instrs...) // no locals
	body = append(body, 0x0b)
	return append(uleb(uint32(len(body))), body...)
}

func section(id byte, payload []byte) []byte {
	return append(append([]byte{id}, uleb(uint32(len(payload)))...), payload...)
}

func vec(items [][]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func wasmName(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
