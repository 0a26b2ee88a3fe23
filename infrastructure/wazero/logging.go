package wazero

import (
	"context"
	"encoding/json"
	"log/slog"

	nativelog "github.com/reglet-dev/native-starter/log"
	"github.com/reglet-dev/native-starter/wireformat"
	"github.com/tetratelabs/wazero/api"
)

// LogMessageFunction is the export name guests send log records to.
const LogMessageFunction = "log_message"

// LogMessageHandler returns the log_message custom handler. It takes one
// packed ptr+len pointing at a JSON log.LogMessageWire and returns nothing.
// Records are re-emitted through logger with the guest module name attached.
func LogMessageHandler(logger *slog.Logger) CustomHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return CustomHandler{
		Name: LogMessageFunction,
		Handler: api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			mem := mod.Memory()
			if mem == nil {
				return
			}
			ptr, length := wireformat.UnpackPtrLen(stack[0])
			data, ok := mem.Read(ptr, length)
			if !ok {
				logger.WarnContext(ctx, "wazero: log_message out of bounds", "module", mod.Name())
				return
			}
			emitGuestLog(ctx, logger, PluginName(ctx, mod), data)
		}),
		ParamTypes:  []api.ValueType{api.ValueTypeI64},
		ResultTypes: []api.ValueType{},
	}
}

// emitGuestLog decodes one wire record and logs it. Undecodable records are
// logged raw at warn level rather than dropped.
func emitGuestLog(ctx context.Context, logger *slog.Logger, plugin string, data []byte) {
	var msg nativelog.LogMessageWire
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.WarnContext(ctx, "wazero: malformed guest log record", "plugin", plugin, "error", err, "raw", string(data))
		return
	}

	level := msg.SlogLevel()
	if !logger.Enabled(ctx, level) {
		return
	}

	attrs := append([]slog.Attr{slog.String("plugin", plugin)}, msg.SlogAttrs()...)
	logger.LogAttrs(ctx, level, msg.Message, attrs...)
}
