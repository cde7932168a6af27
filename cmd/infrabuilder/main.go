package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/toyz/infrabuilder/internal/cli"
	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/gateway"
	"github.com/toyz/infrabuilder/internal/routetable"
	"github.com/toyz/infrabuilder/internal/utils"
)

// Exit codes
const (
	exitOK       = 0
	exitFatal    = 1
	exitConflict = 2
)

// exitError carries a process exit code out of a command. A nil err means the
// command already reported the problem.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// options holds the flag values shared by every command
type options struct {
	configPath  string
	resolver    string
	require     []string
	concurrency int
	strictPaths bool
	verbose     bool
	quiet       bool

	json   bool
	router string
	addr   string

	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &options{stdout: stdout, stderr: stderr}
	root := newRootCommand(opts)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	reporter := cli.NewDiagnosticReporter(opts.verbose)
	reporter.SetOutput(stderr)

	var exit *exitError
	if stderrors.As(err, &exit) {
		if exit.err != nil {
			reporter.ReportError(exit.err)
		}
		return exit.code
	}
	reporter.ReportError(err)
	return exitFatal
}

func newRootCommand(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "infrabuilder",
		Short: "Discover deployable units in a Cargo workspace and assemble their route table",
		Long: `infrabuilder scans a Cargo workspace for units that can be deployed as
serverless functions, reads the #[route(METHOD, "/path")] annotation on each
unit's main function and merges the results into a single route table.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(opts.stdout)
	root.SetErr(opts.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.UsageError("%s: %v", cmd.CommandPath(), err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "configuration file (default <root>/"+cli.ConfigFileName+" when present)")
	flags.StringVar(&opts.resolver, "resolver", "", "dependency resolver: manifest or cargo")
	flags.StringSliceVar(&opts.require, "require", nil, "dependencies a deployable unit must declare (comma separated)")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "number of units processed concurrently")
	flags.BoolVar(&opts.strictPaths, "strict-paths", true, "validate route path syntax and treat equivalent paths as duplicates")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable verbose output and detailed error reporting")
	flags.BoolVar(&opts.quiet, "quiet", false, "only show errors and final results")

	root.AddCommand(newScanCommand(opts), newRoutesCommand(opts), newPreviewCommand(opts))
	return root
}

func newScanCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <root>",
		Short: "List every candidate unit with its deployability verdict",
		Args:  exactlyOneRoot,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.discover(cmd, args[0])
			if err != nil {
				return err
			}

			reporter := cli.NewDiagnosticReporter(env.config.Verbose)
			reporter.SetOutput(opts.stdout)
			cli.WriteScan(opts.stdout, reporter, env.report)
			env.diagnostics.Summary("Scan Complete", cli.SummaryStats(env.report))
			return nil
		},
	}
}

func newRoutesCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes <root>",
		Short: "Print the assembled route table",
		Args:  exactlyOneRoot,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.discover(cmd, args[0])
			if err != nil {
				return err
			}

			table := env.report.Result.Table
			if opts.json {
				err = routetable.WriteJSON(opts.stdout, table)
			} else {
				err = cli.WriteRoutes(opts.stdout, table)
			}
			if err != nil {
				return errors.WrapWithOperation("write", "route table", err)
			}
			return env.checkConflicts(opts.stderr)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "write the route table as a JSON handoff document")
	return cmd
}

func newPreviewCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <root>",
		Short: "Serve the route table locally, answering with the unit each request dispatches to",
		Args:  exactlyOneRoot,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.discover(cmd, args[0])
			if err != nil {
				return err
			}
			if err := env.checkConflicts(opts.stderr); err != nil {
				return err
			}

			if !env.config.Verbose {
				gin.SetMode(gin.ReleaseMode)
			}
			server, err := gateway.New(env.config.Preview.Router)
			if err != nil {
				return err
			}
			if err := gateway.RegisterTable(server, env.report.Result.Table); err != nil {
				return err
			}
			if err := cli.WriteRoutes(opts.stdout, env.report.Result.Table); err != nil {
				return errors.WrapWithOperation("write", "route table", err)
			}

			env.diagnostics.Info("Serving %d routes with %s on %s", env.report.Result.Table.Len(), server.Name(), env.config.Preview.Addr)
			return serve(cmd.Context(), server, env.config.Preview.Addr)
		},
	}
	cmd.Flags().StringVar(&opts.router, "router", "", "router used by the preview: echo, gin or fiber")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "address the preview listens on")
	return cmd
}

// serve runs server until ctx is cancelled
func serve(ctx context.Context, server gateway.Server, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.WrapWithOperation("serve", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return errors.WrapWithOperation("stop", server.Name(), err)
	}
	return nil
}

func exactlyOneRoot(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.UsageError("%s expects exactly one workspace root, got %d arguments", cmd.CommandPath(), len(args))
	}
	return nil
}

// environment is the outcome of a discovery run plus what produced it
type environment struct {
	config      *cli.Config
	diagnostics *utils.DiagnosticSystem
	report      *cli.Report
}

// discover loads configuration for root and runs discovery. Configuration
// priority is defaults, config file, environment, then flags.
func (o *options) discover(cmd *cobra.Command, root string) (*environment, error) {
	abs, err := cli.ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	config, err := o.loadConfig(cmd, abs)
	if err != nil {
		return nil, err
	}

	diagnostics := newDiagnostics(config, o.stderr)
	diagnostics.Header(cmd.Name())
	diagnostics.RootPath(abs)

	report, err := cli.NewDiscovery(config, diagnostics).Run(cmd.Context(), abs)
	if err != nil {
		return nil, err
	}
	for _, skipped := range report.Skipped {
		diagnostics.Warn("Skipped %s: %v", skipped.Path, skipped.Reason)
	}

	return &environment{config: config, diagnostics: diagnostics, report: report}, nil
}

func (o *options) loadConfig(cmd *cobra.Command, root string) (*cli.Config, error) {
	config, err := cli.LoadConfig(root, o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("resolver") {
		config.Resolver = o.resolver
	}
	if flags.Changed("require") {
		config.RequiredDependencies = o.require
	}
	if flags.Changed("concurrency") {
		config.Concurrency = o.concurrency
	}
	if flags.Changed("strict-paths") {
		config.StrictPaths = o.strictPaths
	}
	if flags.Changed("verbose") {
		config.Verbose = o.verbose
	}
	if flags.Changed("quiet") {
		config.Quiet = o.quiet
	}
	if flags.Changed("router") {
		config.Preview.Router = o.router
	}
	if flags.Changed("addr") {
		config.Preview.Addr = o.addr
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func newDiagnostics(config *cli.Config, w io.Writer) *utils.DiagnosticSystem {
	var diagnostics *utils.DiagnosticSystem
	switch {
	case config.Quiet:
		diagnostics = utils.NewQuietDiagnostics()
	case config.Verbose:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	diagnostics.SetOutput(w, w)
	return diagnostics
}

// checkConflicts reports every route conflict and fails the command when there are any
func (e *environment) checkConflicts(w io.Writer) error {
	conflicts := e.report.Result.Conflicts
	if len(conflicts) == 0 {
		return nil
	}

	reporter := cli.NewDiagnosticReporter(e.config.Verbose)
	reporter.SetOutput(w)
	for _, c := range conflicts {
		reporter.ReportConflict(c)
	}
	e.diagnostics.Error("%d conflicting routes", len(conflicts))
	return &exitError{code: exitConflict}
}
