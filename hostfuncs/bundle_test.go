package hostfuncs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeBundle(t *testing.T) {
	handlers := NativeBundle().Handlers()

	assert.Len(t, handlers, 2)
	assert.Contains(t, handlers, "sum")
	assert.Contains(t, handlers, "hello")
}

func TestNativeBundle_HandlersAreIndependent(t *testing.T) {
	first := NativeBundle().Handlers()
	delete(first, "sum")

	second := NativeBundle().Handlers()
	assert.Contains(t, second, "sum")
}

func TestWithBundle(t *testing.T) {
	reg, err := NewRegistry(WithBundle(NativeBundle()))
	require.NoError(t, err)

	resp, err := reg.Invoke(context.Background(), "sum", []byte(`{"args":[2147483647,1]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"message":"Integer overflow in sum operation","type":"overflow","code":"IntegerOverflow","details":{"op":"sum"}}}`, string(resp))
}
