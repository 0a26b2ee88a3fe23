package wazero

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	nativelog "github.com/reglet-dev/native-starter/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"
)

func TestLogMessageHandler_Signature(t *testing.T) {
	h := LogMessageHandler(nil)
	assert.Equal(t, "log_message", h.Name)
	assert.Equal(t, []api.ValueType{api.ValueTypeI64}, h.ParamTypes)
	assert.Empty(t, h.ResultTypes)
	assert.NotNil(t, h.Handler)
}

func TestEmitGuestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	msg := nativelog.LogMessageWire{
		Timestamp: time.Now(),
		Level:     "WARN",
		Message:   "sum rejected",
		Attrs: []nativelog.LogAttrWire{
			{Key: "index", Type: "int64", Value: "1"},
		},
	}
	msg.Context.RequestID = "req-7"
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	emitGuestLog(context.Background(), logger, "native.wasm", data)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="sum rejected"`)
	assert.Contains(t, out, "plugin=native.wasm")
	assert.Contains(t, out, "request_id=req-7")
	assert.Contains(t, out, "index=1")
}

func TestEmitGuestLog_BelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	emitGuestLog(context.Background(), logger, "p", []byte(`{"level":"DEBUG","message":"noise"}`))
	assert.Empty(t, buf.String())
}

func TestEmitGuestLog_Malformed(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	emitGuestLog(context.Background(), logger, "p", []byte(`{not json`))
	assert.Contains(t, buf.String(), "malformed guest log record")
}

func TestPluginName(t *testing.T) {
	ctx := context.Background()
	_, ok := PluginNameFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, PluginName(ctx, nil))

	ctx = WithPluginName(ctx, "native.wasm")
	name, ok := PluginNameFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "native.wasm", name)
	assert.Equal(t, "native.wasm", PluginName(ctx, nil))
}
