package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/reglet-dev/native-starter/application/manifest"
	"github.com/reglet-dev/native-starter/application/schema"
	"github.com/reglet-dev/native-starter/application/validation"
	"github.com/reglet-dev/native-starter/binding"
	"github.com/reglet-dev/native-starter/host"
	"github.com/reglet-dev/native-starter/hostfuncs"
	"github.com/reglet-dev/native-starter/infrastructure/metrics"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSumCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sum A B",
		Short: "Add two 32-bit integers with overflow checking",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.native()
			if err != nil {
				return err
			}
			v, err := n.Sum(cmd.Context(), binding.ParseArg(args[0]), binding.ParseArg(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newHelloCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hello",
		Short: "Print the greeting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.native()
			if err != nil {
				return err
			}
			s, err := n.Hello(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newExportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exports",
		Short: "List the host-visible exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, e := range binding.Exports() {
				params := make([]string, len(e.Params))
				for i, p := range e.Params {
					params[i] = string(p)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%d (%s) -> %s\t%s\n",
					e.Name, e.Arity(), strings.Join(params, ", "), e.Result, e.Description)
			}
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check EXPORT [ARG...]",
		Short: "Check arguments against an export's schema without calling it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			doc, err := schema.ArgsSchema(name)
			if err != nil {
				return err
			}

			values := make([]any, len(args)-1)
			for i, a := range args[1:] {
				values[i] = binding.ParseArg(a)
			}
			obj, err := schema.ArgsObject(name, values)
			if err != nil {
				return err
			}
			if err := validation.ValidateArgs(name, doc, obj); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "arguments for %s are valid\n", name)
			return nil
		},
	}
}

func newManifestCmd() *cobra.Command {
	var (
		file   string
		format string
	)
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the export manifest, or check a plugin manifest against it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			want, err := manifest.Build()
			if err != nil {
				return err
			}

			if file == "" {
				return printManifest(cmd, want, format)
			}

			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read manifest: %w", err)
			}
			got, err := host.NewLoader().LoadManifest(raw)
			if err != nil {
				return err
			}
			if err := host.Compatible(want, got); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "manifest %s@%s is valid\n", got.Name, got.Version)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "plugin manifest to validate (YAML or JSON)")
	cmd.Flags().StringVarP(&format, "output", "o", "json", "output format: json, yaml")
	return cmd
}

func printManifest(cmd *cobra.Command, m any, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal manifest: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to marshal manifest: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q (use json or yaml)", format)
	}
	return nil
}

func newBenchCmd(a *app) *cobra.Command {
	var (
		n           int
		showMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run sequential sum calls through the host function channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("n") {
				n = a.cfg.BenchCalls
			}
			if n < 1 {
				return fmt.Errorf("--n must be at least 1, got %d", n)
			}

			m, err := metrics.New()
			if err != nil {
				return err
			}
			reg, err := a.registry(m.Middleware())
			if err != nil {
				return err
			}
			client := hostfuncs.NewClient(reg)

			ctx := cmd.Context()
			start := time.Now()
			for i := range n {
				// Domain errors are counted by the metrics middleware.
				_, _ = client.Sum(ctx, i, 1)
			}
			elapsed := time.Since(start)

			ok, err := m.Calls(binding.ExportSum, metrics.OutcomeOK)
			if err != nil {
				return err
			}
			failed, err := m.Calls(binding.ExportSum, metrics.OutcomeError)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "calls:    %.0f\n", ok+failed)
			fmt.Fprintf(out, "errors:   %.0f\n", failed)
			fmt.Fprintf(out, "total:    %s\n", elapsed)
			fmt.Fprintf(out, "per call: %s\n", elapsed/time.Duration(n))
			if showMetrics {
				return m.WriteText(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 10000, "number of calls")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print prometheus metrics after the run")
	return cmd
}

func newPluginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plugin PATH sum A B | plugin PATH hello | plugin PATH describe",
		Short: "Call the exports of a compiled native plugin",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, op := args[0], args[1]
			switch {
			case op != binding.ExportSum && op != binding.ExportHello && op != "describe":
				return fmt.Errorf("unknown plugin operation %q (use sum, hello or describe)", op)
			case op == binding.ExportSum && len(args) != 4:
				return fmt.Errorf("plugin sum takes 2 arguments, got %d", len(args)-2)
			case op != binding.ExportSum && len(args) != 2:
				return fmt.Errorf("plugin %s takes no arguments", op)
			}

			wasm, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read plugin: %w", err)
			}

			ctx := cmd.Context()
			exec, err := host.NewExecutor(ctx,
				host.WithLogger(a.logger),
				host.WithMemoryLimitPages(a.cfg.MemoryLimitPages),
			)
			if err != nil {
				return err
			}
			defer func() { _ = exec.Close(ctx) }()

			p, err := exec.LoadPlugin(ctx, wasm)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close(ctx) }()

			out := cmd.OutOrStdout()
			switch op {
			case binding.ExportSum:
				v, err := p.Sum(ctx, binding.ParseArg(args[2]), binding.ParseArg(args[3]))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, v)
			case binding.ExportHello:
				s, err := p.Hello(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
			default:
				m, err := p.Describe(ctx)
				if err != nil {
					return err
				}
				return printManifest(cmd, m, "json")
			}
			return nil
		},
	}
}
