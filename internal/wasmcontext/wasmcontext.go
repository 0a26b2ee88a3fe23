// Package wasmcontext tracks the context of the export currently running in
// the guest and converts it to the wire form sent along with host calls.
package wasmcontext

import (
	stdcontext "context"
	"sync"
	"time"

	"github.com/reglet-dev/native-starter/domain/entities"
)

type contextKey string

// RequestIDKey is the context key for request ID.
const RequestIDKey contextKey = "request_id"

// The guest runs one export at a time, so a single slot is enough.
var current = struct {
	ctx stdcontext.Context
	sync.RWMutex
}{
	ctx: stdcontext.Background(),
}

// SetCurrentContext sets the context for the export being executed.
func SetCurrentContext(ctx stdcontext.Context) {
	current.Lock()
	defer current.Unlock()
	current.ctx = ctx
}

// GetCurrentContext returns the context of the running export, or
// context.Background() when none is set.
func GetCurrentContext() stdcontext.Context {
	current.RLock()
	defer current.RUnlock()
	if current.ctx == nil {
		return stdcontext.Background()
	}
	return current.ctx
}

// ResetContext restores the background context. Exports defer it.
func ResetContext() {
	SetCurrentContext(stdcontext.Background())
}

// WithRequestID returns a copy of ctx carrying the given request ID.
func WithRequestID(ctx stdcontext.Context, id string) stdcontext.Context {
	return stdcontext.WithValue(ctx, RequestIDKey, id)
}

// ContextToWire extracts deadline, cancellation and request ID from ctx.
func ContextToWire(ctx stdcontext.Context) entities.ContextWire {
	wire := entities.ContextWire{}

	if deadline, ok := ctx.Deadline(); ok {
		wire.Deadline = &deadline
		if timeout := time.Until(deadline); timeout > 0 {
			wire.TimeoutMs = timeout.Milliseconds()
		}
	}

	select {
	case <-ctx.Done():
		wire.Canceled = true
	default:
	}

	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		wire.RequestID = id
	}
	return wire
}
