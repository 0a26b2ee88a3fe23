package hostfuncs

import (
	"context"
	"time"
)

// HostContext wraps a context.Context with per-call information that
// middleware needs: which function is being invoked and when the call entered
// the channel.
type HostContext interface {
	context.Context

	// FunctionName returns the name of the host function being invoked.
	FunctionName() string

	// Started returns the time the call entered the registry.
	Started() time.Time
}

type hostContext struct {
	context.Context
	started  time.Time
	funcName string
}

// NewHostContext creates a new HostContext wrapping the given context.
func NewHostContext(ctx context.Context, funcName string) HostContext {
	return &hostContext{
		Context:  ctx,
		funcName: funcName,
		started:  time.Now(),
	}
}

func (c *hostContext) FunctionName() string {
	return c.funcName
}

func (c *hostContext) Started() time.Time {
	return c.started
}

// HostContextFrom returns ctx unchanged when it already is a HostContext for
// funcName, and a fresh HostContext otherwise.
func HostContextFrom(ctx context.Context, funcName string) HostContext {
	if hc, ok := ctx.(HostContext); ok && hc.FunctionName() == funcName {
		return hc
	}
	return NewHostContext(ctx, funcName)
}

// FunctionNameFrom returns the function name carried by ctx, if any.
func FunctionNameFrom(ctx context.Context) (string, bool) {
	hc, ok := ctx.(HostContext)
	if !ok {
		return "", false
	}
	return hc.FunctionName(), true
}
