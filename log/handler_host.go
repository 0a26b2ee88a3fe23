//go:build !wasip1

package log

import (
	"context"
	"log/slog"
)

// Handle writes the record through a text handler on the configured output.
func (h *WasmLogHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.text.Handle(ctx, record)
}
