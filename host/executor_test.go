package host

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/reglet-dev/native-starter/application/manifest"
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
	wazeroadapter "github.com/reglet-dev/native-starter/infrastructure/wazero"
	"github.com/reglet-dev/native-starter/native"
	"github.com/reglet-dev/native-starter/wireformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"
)

func TestNewExecutor(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx, WithMemoryLimitPages(64))
	require.NoError(t, err)
	require.NotNil(t, e)

	assert.NotNil(t, e.runtime.Module("native"))
	assert.NotNil(t, e.runtime.Module("native_host"))
	assert.NotNil(t, e.runtime.Module("wasi_snapshot_preview1"))

	assert.NoError(t, e.Close(ctx))
}

func TestExecutor_LoadPlugin_InvalidBytes(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx)
	require.NoError(t, err)
	defer e.Close(ctx)

	_, err = e.LoadPlugin(ctx, []byte("not wasm"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile module")
}

func TestExecutor_LoadPlugin_MissingExports(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx)
	require.NoError(t, err)
	defer e.Close(ctx)

	// The smallest valid module: magic and version, no sections.
	empty := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	_, err = e.LoadPlugin(ctx, empty, WithPluginName("empty"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `plugin empty does not export "sum"`)
}

// fakeGuest stands in for a loaded plugin module. It implements the guest
// side of the ABI in Go over a flat byte slice.
type fakeGuest struct {
	funcs  map[string]api.Function
	mem    *fakeMemory
	closed bool
}

type fakeFunction struct {
	api.Function
	call func(ctx context.Context, params ...uint64) ([]uint64, error)
}

func (f *fakeFunction) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f.call(ctx, params...)
}

type fakeMemory struct {
	api.Memory
	buf  []byte
	next uint32
	live map[uint32]bool
}

func (m *fakeMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	if uint64(offset)+uint64(byteCount) > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[offset : offset+byteCount], true
}

func (m *fakeMemory) put(data []byte) uint64 {
	ptr := m.next
	copy(m.buf[ptr:], data)
	m.next += uint32(len(data))
	m.live[ptr] = true
	return wireformat.PackPtrLen(ptr, uint32(len(data)))
}

func (g *fakeGuest) ExportedFunction(name string) api.Function {
	if f, ok := g.funcs[name]; ok {
		return f
	}
	return nil
}

func (g *fakeGuest) Memory() api.Memory { return g.mem }

func (g *fakeGuest) Close(context.Context) error {
	g.closed = true
	return nil
}

func fn(call func(ctx context.Context, params ...uint64) ([]uint64, error)) api.Function {
	return &fakeFunction{call: call}
}

func newFakeGuest(t *testing.T) *fakeGuest {
	t.Helper()
	mem := &fakeMemory{buf: make([]byte, 1<<16), next: 16, live: map[uint32]bool{}}
	g := &fakeGuest{mem: mem}

	describe, err := manifest.Build()
	require.NoError(t, err)
	describeJSON, err := json.Marshal(describe)
	require.NoError(t, err)

	g.funcs = map[string]api.Function{
		"sum": fn(func(_ context.Context, p ...uint64) ([]uint64, error) {
			a, b := int32(api.DecodeI32(p[0])), int32(api.DecodeI32(p[1]))
			v, err := native.Sum(a, b)
			return []uint64{wireformat.PackSumResult(v, wireformat.StatusFromError(err))}, nil
		}),
		"hello": fn(func(context.Context, ...uint64) ([]uint64, error) {
			return []uint64{mem.put([]byte(native.Hello()))}, nil
		}),
		"describe": fn(func(context.Context, ...uint64) ([]uint64, error) {
			return []uint64{mem.put(describeJSON)}, nil
		}),
		"allocate": fn(func(context.Context, ...uint64) ([]uint64, error) {
			return []uint64{0}, nil
		}),
		"deallocate": fn(func(_ context.Context, p ...uint64) ([]uint64, error) {
			delete(mem.live, uint32(p[0]))
			return nil, nil
		}),
	}
	return g
}

func TestPluginInstance_Sum(t *testing.T) {
	p := &PluginInstance{module: newFakeGuest(t), name: "fake"}
	ctx := context.Background()

	tests := []struct {
		a, b any
		name string
		want int32
	}{
		{name: "ints", a: 2, b: 3, want: 5},
		{name: "json numbers", a: json.Number("40"), b: json.Number("2"), want: 42},
		{name: "max plus zero", a: math.MaxInt32, b: 0, want: math.MaxInt32},
		{name: "min plus one minus one", a: math.MinInt32 + 1, b: -1, want: math.MinInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Sum(ctx, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPluginInstance_Sum_Overflow(t *testing.T) {
	p := &PluginInstance{module: newFakeGuest(t)}

	_, err := p.Sum(context.Background(), math.MaxInt32, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrOverflow)
	assert.Equal(t, "Integer overflow in sum operation", err.Error())
}

func TestPluginInstance_Sum_RejectedBeforeGuest(t *testing.T) {
	g := newFakeGuest(t)
	called := false
	g.funcs["sum"] = fn(func(context.Context, ...uint64) ([]uint64, error) {
		called = true
		return []uint64{0}, nil
	})
	p := &PluginInstance{module: g}

	_, err := p.Sum(context.Background(), "5", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrTypeMismatch)
	assert.False(t, called)
}

func TestPluginInstance_Sum_Trap(t *testing.T) {
	g := newFakeGuest(t)
	g.funcs["sum"] = fn(func(context.Context, ...uint64) ([]uint64, error) {
		return nil, errors.New("wasm error: unreachable")
	})
	p := &PluginInstance{module: g, name: "trapper"}

	_, err := p.Sum(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin trapper: sum failed")
	assert.Contains(t, err.Error(), "unreachable")
}

func TestPluginInstance_Hello(t *testing.T) {
	g := newFakeGuest(t)
	p := &PluginInstance{module: g}

	got, err := p.Hello(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello there", got)
	assert.Empty(t, g.mem.live, "guest buffer should be released")
}

func TestPluginInstance_Hello_NullResponse(t *testing.T) {
	g := newFakeGuest(t)
	g.funcs["hello"] = fn(func(context.Context, ...uint64) ([]uint64, error) {
		return []uint64{0}, nil
	})
	p := &PluginInstance{module: g}

	_, err := p.Hello(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null response")
}

func TestPluginInstance_Hello_OutOfBounds(t *testing.T) {
	g := newFakeGuest(t)
	g.funcs["hello"] = fn(func(context.Context, ...uint64) ([]uint64, error) {
		return []uint64{wireformat.PackPtrLen(1<<16-2, 10)}, nil
	})
	p := &PluginInstance{module: g}

	_, err := p.Hello(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of bounds")
}

func TestPluginInstance_Describe(t *testing.T) {
	p := &PluginInstance{module: newFakeGuest(t)}

	m, err := p.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "native", m.Name)
	sum, ok := m.Export("sum")
	require.True(t, ok)
	assert.Equal(t, 2, sum.Arity)
}

func TestPluginInstance_Describe_Invalid(t *testing.T) {
	g := newFakeGuest(t)
	g.funcs["describe"] = fn(func(context.Context, ...uint64) ([]uint64, error) {
		return []uint64{g.mem.put([]byte(`{"name":"x","exports":[]}`))}, nil
	})
	p := &PluginInstance{module: g}

	_, err := p.Describe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest validation failed")
}

func TestPluginInstance_CheckExports(t *testing.T) {
	g := newFakeGuest(t)
	p := &PluginInstance{module: g, name: "fake"}
	require.NoError(t, p.checkExports())

	delete(g.funcs, "deallocate")
	err := p.checkExports()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"deallocate"`)
}

func TestPluginInstance_Close(t *testing.T) {
	g := newFakeGuest(t)
	p := &PluginInstance{module: g}
	require.NoError(t, p.Close(context.Background()))
	assert.True(t, g.closed)
}

func TestPluginInstance_CallCarriesPluginName(t *testing.T) {
	g := newFakeGuest(t)
	var seen string
	g.funcs["hello"] = fn(func(ctx context.Context, _ ...uint64) ([]uint64, error) {
		seen, _ = wazeroadapter.PluginNameFromContext(ctx)
		return []uint64{g.mem.put([]byte("hi"))}, nil
	})

	p := &PluginInstance{module: g, name: "named"}
	_, err := p.Hello(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "named", seen)
}
