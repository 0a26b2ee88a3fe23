// Package log provides a slog handler for native plugins. Inside a wasip1
// guest it forwards records to the host's log_message function; elsewhere it
// writes text records to stderr.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/reglet-dev/native-starter/internal/wasmcontext"
)

// WasmLogHandler implements slog.Handler for plugin code.
type WasmLogHandler struct {
	text   slog.Handler
	prefix string
	attrs  []LogAttrWire
	opts   handlerConfig
}

// HandlerOption configures the WasmLogHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	output    io.Writer
	level     slog.Leveler
	addSource bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level:  slog.LevelInfo,
		output: os.Stderr,
	}
}

// WithLevel sets the minimum level reported. Records below it are dropped
// before they reach the host.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithOutput sets where records go when no host is present.
func WithOutput(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		c.output = w
	}
}

// NewHandler creates a new WasmLogHandler with the given options.
func NewHandler(opts ...HandlerOption) *WasmLogHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &WasmLogHandler{
		opts: cfg,
		text: slog.NewTextHandler(cfg.output, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.addSource,
		}),
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *WasmLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *WasmLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := h.clone()
	next.text = h.text.WithAttrs(attrs)
	for _, a := range attrs {
		next.attrs = flattenAttr(next.attrs, h.prefix, a)
	}
	return next
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *WasmLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.text = h.text.WithGroup(name)
	next.prefix = h.prefix + name + "."
	return next
}

func (h *WasmLogHandler) clone() *WasmLogHandler {
	next := *h
	next.attrs = append([]LogAttrWire(nil), h.attrs...)
	return &next
}

// toWire converts a record to its wire form, including handler attrs.
func (h *WasmLogHandler) toWire(ctx context.Context, record slog.Record) LogMessageWire {
	msg := LogMessageWire{Context: wasmcontext.ContextToWire(ctx)}
	msg.Level = record.Level.String()
	msg.Message = record.Message
	msg.Timestamp = record.Time
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	msg.Attrs = append(msg.Attrs, h.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		msg.Attrs = flattenAttr(msg.Attrs, h.prefix, a)
		return true
	})
	if h.opts.addSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			msg.Attrs = append(msg.Attrs, LogAttrWire{
				Key:   slog.SourceKey,
				Type:  "string",
				Value: src.File + ":" + strconv.Itoa(src.Line),
			})
		}
	}
	return msg
}

// flattenAttr appends a, expanding groups into dotted keys.
func flattenAttr(out []LogAttrWire, prefix string, a slog.Attr) []LogAttrWire {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			out = flattenAttr(out, p, ga)
		}
		return out
	}
	if a.Equal(slog.Attr{}) {
		return out
	}
	w := toLogAttrWire(a)
	w.Key = prefix + w.Key
	return append(out, w)
}
