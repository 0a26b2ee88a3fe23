package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/reglet-dev/native-starter/application/validation"
	"github.com/reglet-dev/native-starter/binding"
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
	"github.com/reglet-dev/native-starter/domain/ports"
	"github.com/reglet-dev/native-starter/hostfuncs"
	"github.com/spf13/cobra"
)

// app is the state shared by all subcommands once flags are parsed.
type app struct {
	logger     *slog.Logger
	configPath string
	logLevel   string
	backend    string
	stderr     io.Writer
	cfg        Config
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "nativectl",
		Short: "Call the native sum and hello exports",
		Long: `nativectl calls the native exports across a chosen boundary.

Arguments are read as JSON literals, so 7 is a number and "7" or abc are
strings that the boundary rejects. Put -- before negative numbers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "call path: inprocess, channel")

	root.AddCommand(
		newSumCmd(a),
		newHelloCmd(a),
		newExportsCmd(),
		newCheckCmd(),
		newManifestCmd(),
		newBenchCmd(a),
		newPluginCmd(a),
	)
	return root
}

// setup loads the config file, applies flag overrides, and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = a.backend
	}
	if err := validation.ValidateStruct(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// registry builds the host function registry every channel call goes
// through. Extra middleware runs innermost.
func (a *app) registry(extra ...hostfuncs.Middleware) (*hostfuncs.HandlerRegistry, error) {
	mw := append([]hostfuncs.Middleware{
		hostfuncs.PanicRecoveryMiddleware(),
		hostfuncs.MaxRequestSizeMiddleware(a.cfg.MaxRequestSize),
		hostfuncs.LoggingMiddleware(a.logger),
	}, extra...)
	return hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(mw...),
		hostfuncs.WithBundle(hostfuncs.NativeBundle()),
	)
}

// native returns the configured backend.
func (a *app) native() (ports.Native, error) {
	switch a.cfg.Backend {
	case BackendChannel:
		reg, err := a.registry()
		if err != nil {
			return nil, err
		}
		return hostfuncs.NewClient(reg), nil
	default:
		return binding.InProcess{}, nil
	}
}

// execute runs nativectl and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stderr: stderr, logger: slog.Default()}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, formatError(err))
		return 1
	}
	return 0
}

// formatError renders err as "Error [CODE]: message".
func formatError(err error) string {
	d := domainerrors.ToErrorDetail(err)
	return fmt.Sprintf("Error [%s]: %s", d.Code, d.Message)
}
