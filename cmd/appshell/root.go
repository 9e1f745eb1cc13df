package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ZebulonRouseFrantzich/appshell/internal/bootstrap"
	"github.com/ZebulonRouseFrantzich/appshell/internal/config"
	"github.com/ZebulonRouseFrantzich/appshell/internal/logging"
	"github.com/ZebulonRouseFrantzich/appshell/internal/platform"
	"github.com/ZebulonRouseFrantzich/appshell/internal/service"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell/luashell"
	"github.com/ZebulonRouseFrantzich/appshell/internal/startup"
)

const usageText = `Open an interactive shell with the application described by CONFIG_URI
loaded. CONFIG_URI has the form "path/to/app.lua#name"; name defaults to
"main".

Variables declared in the configuration file's "appshell" table are added
to the shell. A callable "setup" entry receives the environment before the
shell starts and may change it.`

// options holds the parsed command-line flags.
type options struct {
	shell      string
	setup      string
	startup    string
	keyring    string
	listShells bool
	quiet      bool
	debug      bool
}

// exitError carries a session status out of cobra.
type exitError struct {
	status int
	err    error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// Main runs appshell with args and returns the process exit status. A
// non-nil sh is launched instead of the selected shell.
func Main(args []string, sh shell.Shell) int {
	return run(args, sh, shell.StdIO())
}

func run(args []string, sh shell.Shell, streams shell.IO) int {
	cmd := newRootCmd(sh, streams)
	cmd.SetArgs(args)
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)

	err := cmd.Execute()
	if err == nil {
		return service.StatusOK
	}

	var exit *exitError
	if !errors.As(err, &exit) {
		if !quietRequested(cmd.Flags(), args) {
			fmt.Fprintf(streams.Err, "Error: %v\n", err)
			fmt.Fprint(streams.Err, cmd.UsageString())
		}
		return service.StatusUsage
	}

	// Configuration and selection errors were already reported.
	var cerr *service.ConfigError
	var nf *shell.NotFoundError
	if !errors.As(exit.err, &cerr) && !errors.As(exit.err, &nf) {
		fmt.Fprintf(streams.Err, "Error: %v\n", exit.err)
	}
	return exit.status
}

// quietRequested reports whether -q/--quiet was given. Flag parsing may
// have stopped before reaching it, so the raw arguments are checked too.
func quietRequested(f *pflag.FlagSet, args []string) bool {
	if q, err := f.GetBool("quiet"); err == nil && q {
		return true
	}
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-q", "--quiet", "--quiet=true":
			return true
		}
	}
	return false
}

func newRootCmd(sh shell.Shell, streams shell.IO) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "appshell [flags] CONFIG_URI",
		Short:         "Interactive shell for a configured web application",
		Long:          usageText,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.listShells && len(args) == 0 {
				return errors.New("requires a CONFIG_URI argument")
			}
			uri := ""
			if len(args) == 1 {
				uri = args[0]
			}
			return execute(cmd.Context(), opts, uri, sh, streams)
		},
	}
	cmd.SetVersionTemplate("appshell {{.Version}}\n")

	bindFlags(cmd.Flags(), opts)
	return cmd
}

func bindFlags(f *pflag.FlagSet, opts *options) {
	f.StringVarP(&opts.shell, "shell", "p", "", "preferred shell (readline, yaegi, lua)")
	f.StringVar(&opts.setup, "setup", "", "Lua expression naming a setup function")
	f.StringVar(&opts.startup, "startup", "", "Lua startup script (default $"+startup.EnvStartup+")")
	f.StringVar(&opts.keyring, "startup-keyring", "", "OpenPGP keyring for the startup script (default $"+startup.EnvKeyring+")")
	f.BoolVarP(&opts.listShells, "list-shells", "l", false, "list shells and exit")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress diagnostic output")
	f.BoolVar(&opts.debug, "debug", false, "debug logging (also $"+logging.EnvDebug+")")
}

// execute wires the session and runs it.
func execute(ctx context.Context, opts *options, uri string, sh shell.Shell, streams shell.IO) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := logging.Nop()
	out := func(msg string) { fmt.Fprintln(streams.Err, msg) }
	if opts.quiet {
		out = nil
	} else {
		logger = logging.New(opts.debug)
	}
	defer logging.Sync(logger)

	detector := platform.NewDetector()
	info, err := detector.Detect(ctx)
	if err != nil {
		logger.Debug("platform detection failed", "error", err)
		info = nil
	}

	reg := shell.NewRegistry()
	registerShells(reg, streams, info)
	selector := &shell.Selector{
		Registry: reg,
		Default:  luashell.Factory(streams, luashell.WithPlatform(info)),
	}

	if opts.listShells {
		listShells(streams, selector)
		return nil
	}

	configs := config.NewLoader(detector).WithLogger(logger)
	svc := service.NewShellService(
		configs,
		bootstrap.NewLoader(configs, logger),
		selector,
		startup.New(opts.startup, opts.keyring, logger),
		out,
		logger,
	)

	status, err := svc.Run(ctx, service.Request{
		ConfigURI: uri,
		Shell:     opts.shell,
		SetupExpr: opts.setup,
		Launcher:  sh,
	})
	if err != nil {
		return &exitError{status: status, err: err}
	}
	return nil
}

func listShells(streams shell.IO, selector *shell.Selector) {
	fmt.Fprintln(streams.Out, "Available shells:")
	for _, a := range selector.Available() {
		state := "unavailable"
		if a.Available {
			state = "available"
		}
		fmt.Fprintf(streams.Out, "  %-10s (%s)\n", a.Name, state)
	}
}
