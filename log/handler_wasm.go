//go:build wasip1

package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/reglet-dev/native-starter/internal/abi"
)

//go:wasmimport native_host log_message
//nolint:revive // intentional snake_case to match WASM import convention
func host_log_message(messagePacked uint64)

// Handle serializes the record and sends it to the host.
func (h *WasmLogHandler) Handle(ctx context.Context, record slog.Record) error {
	msg := h.toWire(ctx, record)

	data, err := json.Marshal(msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: failed to marshal record for host: %v, original: %s\n", err, record.Message)
		return nil
	}

	packed := abi.PtrFromBytes(data)
	host_log_message(packed)
	abi.DeallocatePacked(packed)
	return nil
}

func init() {
	slog.SetDefault(slog.New(NewHandler()))
}
