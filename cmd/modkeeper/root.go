package modkeeper

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/modkeeper/internal/version"
	"github.com/arthur-debert/modkeeper/pkg/config"
	"github.com/arthur-debert/modkeeper/pkg/library"
	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/metrics"
	"github.com/arthur-debert/modkeeper/pkg/style"
	"github.com/arthur-debert/modkeeper/pkg/tracing"
)

// annotationStandalone marks commands that run without opening the library.
const annotationStandalone = "modkeeper/standalone"

// app holds the state shared by every command of one invocation.
type app struct {
	verbosity   int
	configPath  string
	metricsFile string
	traceFile   string

	// libOptions overrides library collaborators; tests inject an
	// in-memory filesystem and a fake catalog here.
	libOptions  library.Options
	interactive bool

	cfg      *config.Config
	lib      *library.Library
	metrics  *metrics.Metrics
	tracing  *tracing.Provider
	renderer style.Renderer
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newApp(library.Options{}, isTerminal()).rootCmd()
}

// Execute runs the command line under ctx and flushes telemetry afterwards.
func Execute(ctx context.Context) error {
	a := newApp(library.Options{}, isTerminal())
	root := a.rootCmd()
	err := root.ExecuteContext(ctx)
	if finishErr := a.finish(context.WithoutCancel(ctx)); err == nil {
		err = finishErr
	}
	return err
}

// RenderError formats err the way the CLI reports failures.
func RenderError(err error) string {
	return style.NewTerminalRenderer(!isTerminal()).RenderError(err)
}

func newApp(opts library.Options, interactive bool) *app {
	return &app{
		libOptions:  opts,
		interactive: interactive,
		renderer:    style.NewTerminalRenderer(!interactive),
	}
}

func (a *app) rootCmd() *cobra.Command {
	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:     "modkeeper",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(a.verbosity)
			log.Debug().Str("command", cmd.CommandPath()).Msg("Command started")
			if cmd.Annotations[annotationStandalone] != "" {
				return nil
			}
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", MsgFlagMetricsFile)
	rootCmd.PersistentFlags().StringVar(&a.traceFile, "trace-file", "", MsgFlagTraceFile)

	rootCmd.AddGroup(&cobra.Group{ID: "library", Title: "LIBRARY:"})
	rootCmd.AddGroup(&cobra.Group{ID: "portal", Title: "MOD PORTAL:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.SetUsageTemplate(MsgUsageTemplate + "\n")

	rootCmd.AddCommand(a.newListCmd())
	rootCmd.AddCommand(a.newAddCmd())
	rootCmd.AddCommand(a.newRemoveCmd())
	rootCmd.AddCommand(a.newEnableCmd(true))
	rootCmd.AddCommand(a.newEnableCmd(false))
	rootCmd.AddCommand(a.newModpackCmd())
	rootCmd.AddCommand(a.newUpdateCmd())
	rootCmd.AddCommand(a.newImportCmd())
	rootCmd.AddCommand(a.newExportCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// setup loads configuration, starts telemetry and opens the library.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf(MsgErrLoadConfig, err)
	}
	a.cfg = cfg
	if a.metricsFile == "" {
		a.metricsFile = cfg.Telemetry.MetricsFile
	}
	if a.traceFile == "" {
		a.traceFile = cfg.Telemetry.TraceFile
	}

	provider, err := tracing.Setup(a.traceFile, version.Version)
	if err != nil {
		return err
	}
	a.tracing = provider

	a.metrics = a.libOptions.Metrics
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	opts := a.libOptions
	opts.Metrics = a.metrics

	lib, err := library.Open(cfg, opts)
	if err != nil {
		return fmt.Errorf(MsgErrOpenLibrary, err)
	}
	a.lib = lib
	return nil
}

// finish flushes spans and writes the metrics textfile. It is safe to call
// when setup never ran.
func (a *app) finish(ctx context.Context) error {
	var firstErr error
	if a.tracing != nil {
		if err := a.tracing.Shutdown(ctx); err != nil {
			firstErr = err
		}
		a.tracing = nil
	}
	if a.metrics != nil && a.metricsFile != "" {
		if err := a.metrics.WriteTextfile(a.metricsFile); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *app) print(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func (a *app) println(w io.Writer, s string) {
	_, _ = fmt.Fprintln(w, s)
}
