package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reglet-dev/native-starter/hostfuncs"
	wazeroadapter "github.com/reglet-dev/native-starter/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Executor manages the wazero runtime that native plugins run in.
type Executor struct {
	runtime          wazero.Runtime
	registry         *hostfuncs.HandlerRegistry
	logger           *slog.Logger
	memoryLimitPages uint32
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.registry == nil {
		reg, err := hostfuncs.NewDefaultRegistry(
			hostfuncs.WithMiddleware(hostfuncs.LoggingMiddleware(e.logger)),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		e.registry = reg
	}

	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if e.memoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(e.memoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	e.runtime = rt

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	if err := e.registerHostFunctions(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

func (e *Executor) registerHostFunctions(ctx context.Context) error {
	if err := wazeroadapter.RegisterNative(ctx, e.runtime, wazeroadapter.WithLogger(e.logger)); err != nil {
		return err
	}
	return wazeroadapter.RegisterWithRuntime(ctx, e.runtime, e.registry,
		wazeroadapter.WithLogger(e.logger),
		wazeroadapter.WithCustomHandler(wazeroadapter.LogMessageHandler(e.logger)),
	)
}

// Close releases the runtime and every plugin loaded into it.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// LoadPlugin compiles and instantiates a plugin, runs its reactor
// initializer, and checks that it exports the native ABI.
func (e *Executor) LoadPlugin(ctx context.Context, wasmBytes []byte, opts ...PluginOption) (*PluginInstance, error) {
	var pc pluginConfig
	for _, opt := range opts {
		opt(&pc)
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName(pc.name).
		WithStartFunctions() // reactor: _initialize is called below
	mod, err := e.runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	p := &PluginInstance{module: mod, name: pc.name}
	if err := p.checkExports(); err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}

	e.logger.DebugContext(ctx, "host: plugin loaded", "plugin", pc.name)
	return p, nil
}

// PluginInstance represents an instantiated plugin. Calls are serialized
// because a wazero module instance is not safe for concurrent use.
type PluginInstance struct {
	module moduleAPI
	name   string
	mu     sync.Mutex
}

// Close releases the plugin instance.
func (p *PluginInstance) Close(ctx context.Context) error {
	return p.module.Close(ctx)
}
