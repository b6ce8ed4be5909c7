package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/config"
	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/log"
	"github.com/raphi011/linear/internal/output"
)

// Command group IDs for organizing help output
const (
	GroupIssues    = "issues"
	GroupWorkspace = "workspace"
	GroupConfig    = "config"
)

// annotationOffline marks commands that never talk to the API and so
// run without an API key.
const annotationOffline = "linear/offline"

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	json    bool
	output  string
	verbose bool
	quiet   bool
	noColor bool

	// format is the effective output format once setup has run.
	format output.Format
}

func newRootCmd() (*cobra.Command, *globalFlags) {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "linear",
		Short: "Command-line client for the Linear issue tracker",
		Long: `linear queries and updates Linear issues from the terminal.

Team keys and project names are resolved to ids through a local cache,
so repeated commands cost at most one extra API call per name per day.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "__complete" || cmd.Name() == "help" {
				return nil
			}
			if err := validateFlags(cmd); err != nil {
				return err
			}
			if !cmd.HasParent() {
				return nil
			}
			ctx, err := setup(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&g.json, "json", false, "Output as JSON (same as -o json)")
	cmd.PersistentFlags().StringVarP(&g.output, "output", "o", "", "Output format: table, json, compact")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log API requests and cache decisions")
	cmd.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "Suppress warnings")
	cmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	cmd.MarkFlagsMutuallyExclusive("json", "output")
	_ = cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(output.Formats, cobra.ShellCompDirectiveNoFileComp))

	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddGroup(
		&cobra.Group{ID: GroupIssues, Title: "Issue Commands:"},
		&cobra.Group{ID: GroupWorkspace, Title: "Workspace Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Issue commands
	cmd.AddCommand(newIssueCmd())
	cmd.AddCommand(newIssuesCmd())

	// Workspace commands
	cmd.AddCommand(newTeamsCmd())
	cmd.AddCommand(newProjectsCmd())
	cmd.AddCommand(newCyclesCmd())
	cmd.AddCommand(newLabelsCmd())

	// Config commands
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newCompletionCmd())

	usageErrors(cmd)

	return cmd, g
}

// setup loads config and attaches the logger, printer, config and, for
// commands that need the API, the client session to ctx.
func setup(ctx context.Context, cmd *cobra.Command, g *globalFlags) (context.Context, error) {
	logger := log.New(os.Stderr, g.verbose, g.quiet)
	ctx = log.WithLogger(ctx, logger)

	// Flag formats apply before config is read so config errors honor --json.
	selected := g.output
	if g.json {
		selected = string(output.FormatJSON)
	}
	if selected != "" {
		f, err := output.ParseFormat(selected)
		if err != nil {
			return ctx, err
		}
		g.format = f
	}

	dir, err := config.Dir()
	if err != nil {
		return ctx, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		// init must be able to repair a broken config file.
		if !isInit(cmd) {
			return ctx, err
		}
		logger.Warnf("%v", err)
	}
	ctx = config.WithConfig(ctx, &cfg)

	if selected == "" {
		g.format, err = output.ParseFormat(cfg.Output)
		if err != nil {
			return ctx, err
		}
	}
	ctx = output.WithPrinter(ctx, output.New(os.Stdout, g.format, g.noColor))

	if isOffline(cmd) {
		return ctx, nil
	}
	s, err := newSession(&cfg, logger)
	if err != nil {
		return ctx, err
	}
	return withSession(ctx, s), nil
}

func isOffline(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationOffline] == "true" {
			return true
		}
	}
	return false
}

func isInit(cmd *cobra.Command) bool {
	return cmd.Name() == "init" && cmd.Parent() != nil && !cmd.Parent().HasParent()
}

func offline() map[string]string {
	return map[string]string{annotationOffline: "true"}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root, g := newRootCmd()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	printError(os.Stderr, err, g.jsonErrors())
	return errs.ExitCode(err)
}

// jsonErrors reports whether errors should be printed as JSON. Errors
// raised before setup picked a format fall back to the raw flags.
func (g *globalFlags) jsonErrors() bool {
	if g.format != "" {
		return g.format == output.FormatJSON
	}
	return g.json || strings.EqualFold(g.output, string(output.FormatJSON))
}
