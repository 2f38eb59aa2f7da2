package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/directus/directus-go/internal/config"
	"github.com/directus/directus-go/internal/debug"
	"github.com/directus/directus-go/internal/dryrun"
	"github.com/directus/directus-go/internal/iocontext"
	"github.com/directus/directus-go/internal/outfmt"
	"github.com/directus/directus-go/internal/resolve"
	"github.com/directus/directus-go/pkg/api"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output   string
	JSON     bool
	Color    string
	Debug    bool
	Quiet    bool
	Query    string
	JQ       string
	Template string
	Compact  bool
	DryRun   bool
	Timeout  time.Duration
	EnvFile  string

	Profile    string
	URL        string
	Token      string
	APIVersion string
	Headers    []string
}

// flags holds the global command flags. It is reset at the start of every
// Execute() call; code outside a command's RunE reads stale values.
var flags = newRootFlags()

func newRootFlags() rootFlags {
	return rootFlags{
		Output:  defaultOutput(),
		Color:   "auto",
		Timeout: api.DefaultTimeout,
	}
}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv("DIRECTUS_OUTPUT")); value != "" {
		return value
	}
	return "text"
}

// loadTemplate returns the template text, reading it from a file when the
// value starts with "@".
func loadTemplate(value string) (string, error) {
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}
	path := strings.TrimSpace(strings.TrimPrefix(value, "@"))
	if path == "" {
		return "", fmt.Errorf("--template @ requires a file path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template %q: %w", path, err)
	}
	return string(data), nil
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	flags = newRootFlags()

	root := &cobra.Command{
		Use:                "directus",
		Short:              "Command line client for the Directus REST API",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if err := config.LoadEnvFile(flags.EnvFile); err != nil {
				return err
			}

			if flags.JSON {
				if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			if flags.Query != "" && flags.JQ != "" && flags.Query != flags.JQ {
				return fmt.Errorf("--jq and --query cannot be used together")
			}
			jqQuery := flags.JQ
			if jqQuery == "" {
				jqQuery = flags.Query
			}
			needsJSON := jqQuery != "" || flags.Template != ""
			if needsJSON && flags.Output != "json" {
				if flagOrAliasChanged(cmd, "output") {
					return fmt.Errorf("--jq/--query/--template require --output json (or --json)")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)

			ioStreams := iocontext.DefaultIO()
			if flags.Quiet && mode == outfmt.Text {
				ioStreams.Out = io.Discard
			}
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			debugEnabled := flags.Debug || debug.FromEnv()
			debug.SetupLogger(ioStreams.ErrOut, debugEnabled)
			ctx = debug.WithDebug(ctx, debugEnabled)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			if jqQuery != "" {
				ctx = outfmt.WithQuery(ctx, jqQuery)
			}
			if flags.Template != "" {
				tmpl, err := loadTemplate(flags.Template)
				if err != nil {
					return err
				}
				ctx = outfmt.WithTemplate(ctx, tmpl)
			}

			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json (env DIRECTUS_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVar(&flags.Color, "color", flags.Color, "Color output: auto|always|never")
	pf.BoolVar(&flags.Debug, "debug", false, "Log requests to stderr (env DIRECTUS_DEBUG)")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.StringVar(&flags.Template, "template", "", "Go template string (or @path) to render JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print the requests that would be sent without sending them")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.StringVar(&flags.EnvFile, "env-file", "", "Load DIRECTUS_* variables from a .env file")
	pf.StringVar(&flags.Profile, "profile", "", "Stored profile to use (env DIRECTUS_PROFILE)")
	pf.StringVar(&flags.URL, "url", "", "Directus instance URL (env DIRECTUS_URL)")
	pf.StringVar(&flags.Token, "token", "", "Access token (env DIRECTUS_TOKEN)")
	pf.StringVar(&flags.APIVersion, "api-version", "", "API version segment, default "+api.DefaultAPIVersion+" (env DIRECTUS_API_VERSION)")
	pf.StringArrayVarP(&flags.Headers, "header", "H", nil, "Extra request header as 'Name: value' (repeatable)")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "debug", "dbg")
	flagAlias(pf, "template", "tpl")
	flagAlias(pf, "timeout", "to")
	flagAlias(pf, "profile", "pf")
	flagAlias(pf, "api-version", "av")
	flagAlias(pf, "env-file", "env")
	flagAlias(pf, "dry-run", "dr")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newCallCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newOpsCmd())
	root.AddCommand(newAPICmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
// targetCmd is the command Cobra resolved before the error (may be root itself).
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			var names []string
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestions := resolve.Suggest(unknown, names, 1); len(suggestions) > 0 {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestions[0])
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		if unknown := extractFlag(msg); unknown != "" {
			seen := make(map[string]bool)
			var flagNames []string
			addFlags := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Hidden {
						return
					}
					name := "--" + f.Name
					if !seen[name] {
						seen[name] = true
						flagNames = append(flagNames, name)
					}
				})
			}
			helpCmd := "directus --help"
			if targetCmd != nil {
				addFlags(targetCmd.Flags())
				addFlags(targetCmd.InheritedFlags())
				if path := strings.TrimSpace(targetCmd.CommandPath()); path != "" {
					helpCmd = path + " --help"
				}
			} else {
				addFlags(root.PersistentFlags())
			}
			if suggestions := resolve.Suggest(unknown, flagNames, 1); len(suggestions) > 0 {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestions[0], helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a long flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		return ""
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	if eq := strings.IndexByte(rest, '='); eq >= 0 {
		rest = rest[:eq]
	}
	return strings.TrimRight(rest, ".,;:!?\"'")
}
