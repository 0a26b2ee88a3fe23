package wazero

import (
	"context"
	"math"
	"testing"

	"github.com/reglet-dev/native-starter/wireformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"
)

func newNativeGuest(t *testing.T) api.Module {
	t.Helper()
	rt := newRuntime(t)
	require.NoError(t, RegisterNative(context.Background(), rt))
	return instantiateGuest(t, rt, []guestImport{importNativeSum, importNativeHello}, true)
}

func callNativeSum(t *testing.T, fn api.Function, a, b int64) (int32, wireformat.Status) {
	t.Helper()
	results, err := fn.Call(context.Background(), api.EncodeI64(a), api.EncodeI64(b))
	require.NoError(t, err)
	require.Len(t, results, 1)
	return wireformat.UnpackSumResult(results[0])
}

func TestRegisterNative_Sum(t *testing.T) {
	sum := newNativeGuest(t).ExportedFunction("call_sum")
	require.NotNil(t, sum)

	tests := []struct {
		name       string
		a, b       int64
		wantValue  int32
		wantStatus wireformat.Status
	}{
		{name: "small", a: 2, b: 3, wantValue: 5},
		{name: "negative", a: -7, b: 2, wantValue: -5},
		{name: "max plus zero", a: math.MaxInt32, b: 0, wantValue: math.MaxInt32},
		{name: "min plus zero", a: math.MinInt32, b: 0, wantValue: math.MinInt32},
		{name: "max minus one plus one", a: math.MaxInt32 - 1, b: 1, wantValue: math.MaxInt32},
		{name: "min plus one minus one", a: math.MinInt32 + 1, b: -1, wantValue: math.MinInt32},
		{name: "overflow", a: math.MaxInt32, b: 1, wantStatus: wireformat.StatusOverflow},
		{name: "underflow", a: math.MinInt32, b: -1, wantStatus: wireformat.StatusOverflow},
		{name: "a out of range", a: math.MaxInt32 + 1, b: 0, wantStatus: wireformat.StatusTypeMismatch},
		{name: "b out of range", a: 0, b: math.MinInt32 - 1, wantStatus: wireformat.StatusTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, status := callNativeSum(t, sum, tt.a, tt.b)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestRegisterNative_SumSequential(t *testing.T) {
	sum := newNativeGuest(t).ExportedFunction("call_sum")

	for i := int64(0); i < 10000; i++ {
		value, status := callNativeSum(t, sum, i, 1)
		require.Equal(t, wireformat.StatusOK, status)
		require.Equal(t, int32(i+1), value)
	}
}

func TestRegisterNative_Hello(t *testing.T) {
	mod := newNativeGuest(t)

	for range 3 {
		results, err := mod.ExportedFunction("call_hello").Call(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Hello there", string(readPacked(t, mod, results[0])))
	}
}

func TestRegisterNative_Signatures(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t)
	require.NoError(t, RegisterNative(ctx, rt))

	defs := rt.Module(NativeModule).ExportedFunctionDefinitions()
	require.Contains(t, defs, "sum")
	require.Contains(t, defs, "hello")

	assert.Equal(t, []api.ValueType{api.ValueTypeI64, api.ValueTypeI64}, defs["sum"].ParamTypes())
	assert.Equal(t, []api.ValueType{api.ValueTypeI64}, defs["sum"].ResultTypes())
	assert.Equal(t, []string{"a", "b"}, defs["sum"].ParamNames())

	assert.Empty(t, defs["hello"].ParamTypes())
	assert.Equal(t, []api.ValueType{api.ValueTypeI64}, defs["hello"].ResultTypes())
}

func TestRegisterNative_HelloWithoutAllocate(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t)
	require.NoError(t, RegisterNative(ctx, rt))

	mod := instantiateGuest(t, rt, []guestImport{importNativeHello}, false)
	results, err := mod.ExportedFunction("call_hello").Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), results[0])
}

func TestRegisterNative_CustomModuleName(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t)
	require.NoError(t, RegisterNative(ctx, rt, WithModuleName("native_v2")))

	assert.Nil(t, rt.Module(NativeModule))
	assert.NotNil(t, rt.Module("native_v2"))
}

func TestRegisterNative_GuestImportMismatch(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t)
	require.NoError(t, RegisterNative(ctx, rt))

	// A guest compiled against sum(i32, i32) cannot link to the i64 ABI.
	narrow := guestImport{Module: NativeModule, Name: "sum", Params: []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, Results: []api.ValueType{api.ValueTypeI64}}
	_, err := rt.Instantiate(ctx, guestBinary([]guestImport{narrow}, false))
	require.Error(t, err)
}
