package host

import (
	"log/slog"

	"github.com/reglet-dev/native-starter/hostfuncs"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithHostFunctions configures the executor with a host function registry.
func WithHostFunctions(registry *hostfuncs.HandlerRegistry) Option {
	return func(e *Executor) {
		e.registry = registry
	}
}

// WithLogger sets the logger for executor events and guest log records.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMemoryLimitPages caps guest linear memory, in 64KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(e *Executor) {
		e.memoryLimitPages = pages
	}
}

// PluginOption configures a single LoadPlugin call.
type PluginOption func(*pluginConfig)

type pluginConfig struct {
	name string
}

// WithPluginName sets the module name the plugin is instantiated under.
// Names must be unique within an executor.
func WithPluginName(name string) PluginOption {
	return func(c *pluginConfig) {
		c.name = name
	}
}
