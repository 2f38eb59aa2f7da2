package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/directus/directus-go/internal/config"
	"github.com/directus/directus-go/internal/iocontext"
	"github.com/directus/directus-go/pkg/api"
)

// StatusInfo holds configuration and server status information
type StatusInfo struct {
	Configured      bool   `json:"configured"`
	Authenticated   bool   `json:"authenticated"`
	URL             string `json:"url,omitempty"`
	APIVersion      string `json:"api_version,omitempty"`
	TokenPreview    string `json:"token_preview,omitempty"`
	Profile         string `json:"profile,omitempty"`
	ServerReachable *bool  `json:"server_reachable,omitempty"`
	ServerInfo      any    `json:"server_info,omitempty"`
	User            any    `json:"user,omitempty"`
	UserError       string `json:"user_error,omitempty"`
	CLIVersion      string `json:"cli_version"`
	GoVersion       string `json:"go_version"`
	Platform        string `json:"platform"`
}

func newStatusCmd() *cobra.Command {
	var checkOnly bool
	var offline bool

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show configuration and server status",
		Long: `Display the resolved configuration and, unless --offline is set, ask the
server for its health, its info and the current user. The three requests run
concurrently on one client.`,
		Example: `  # Show current status
  directus status

  # Show status as JSON
  directus status --output json

  # Fail unless the server is reachable and the token is accepted
  directus status --check`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			info := StatusInfo{
				CLIVersion: version,
				GoVersion:  runtime.Version(),
				Platform:   runtime.GOOS + "/" + runtime.GOARCH,
			}

			factory := newClientFactory()
			cfg, err := factory.resolve()
			switch {
			case err == nil:
				info.Configured = true
				info.URL = cfg.URL
				info.APIVersion = apiVersionOrDefault(cfg.APIVersion)
				info.Profile = cfg.Profile
				if cfg.Token != "" {
					info.TokenPreview = maskToken(cfg.Token)
				}
			case errors.Is(err, config.ErrNotConfigured):
				if checkOnly {
					return err
				}
			default:
				return err
			}

			if info.Configured && !offline {
				client, err := factory.newClient(cfg)
				if err != nil {
					return err
				}
				if err := probeServer(cmd, client, cfg.Token != "", &info); err != nil && checkOnly {
					return err
				}
			}

			if checkOnly {
				if info.ServerReachable != nil && !*info.ServerReachable {
					return fmt.Errorf("server at %s is not reachable", info.URL)
				}
				if cfg.Token != "" && !info.Authenticated && info.ServerReachable != nil {
					return fmt.Errorf("access token was rejected: %s", info.UserError)
				}
			}

			if isJSON(cmd) {
				return printJSON(cmd, info)
			}
			return writeStatusText(cmd, info)
		}),
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Exit non-zero unless configured, reachable and authenticated")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the server requests")
	flagAlias(cmd.Flags(), "check", "ck")

	return cmd
}

// probeServer fills the server fields of info. The health check decides
// reachability; a failing getMe only marks the token as rejected.
func probeServer(cmd *cobra.Command, client *api.Client, hasToken bool, info *StatusInfo) error {
	ctx := cmdContext(cmd)

	var (
		reachable  bool
		serverInfo json.RawMessage
		me         *api.Envelope[api.Item]
		meErr      error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := client.HealthCheck(gctx)
		if err != nil {
			return err
		}
		reachable = ok
		return nil
	})
	g.Go(func() error {
		// Server info is best effort; older servers answer 404.
		var env api.RawEnvelope
		if err := client.Call(gctx, "getApi", []string{"server/info"}, nil, &env); err == nil {
			serverInfo = env.Data
		}
		return nil
	})
	if hasToken {
		g.Go(func() error {
			me, meErr = api.Invoke[api.Item](gctx, client, "getMe", nil, nil)
			return nil
		})
	}

	err := g.Wait()
	info.ServerReachable = &reachable
	if err != nil {
		return err
	}
	if len(serverInfo) > 0 {
		info.ServerInfo = serverInfo
	}
	if hasToken {
		if meErr != nil {
			info.UserError = meErr.Error()
		} else {
			info.Authenticated = true
			info.User = me.Data
		}
	}
	return nil
}

func writeStatusText(cmd *cobra.Command, info StatusInfo) error {
	w := tabwriter.NewWriter(iocontext.GetIO(cmd.Context()).Out, 0, 4, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, bold("CLI STATUS"))
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 40))

	if info.Configured {
		_, _ = fmt.Fprintf(w, "URL:\t%s\n", info.URL)
		_, _ = fmt.Fprintf(w, "API Version:\t%s\n", info.APIVersion)
		_, _ = fmt.Fprintf(w, "Profile:\t%s\n", info.Profile)
		if info.TokenPreview != "" {
			_, _ = fmt.Fprintf(w, "Token:\t%s\n", info.TokenPreview)
		} else {
			_, _ = fmt.Fprintf(w, "Token:\t%s\n", yellow("none"))
		}
		if info.ServerReachable != nil {
			if *info.ServerReachable {
				_, _ = fmt.Fprintf(w, "Server:\t%s\n", green("reachable"))
			} else {
				_, _ = fmt.Fprintf(w, "Server:\t%s\n", red("unreachable"))
			}
		}
		switch {
		case info.Authenticated:
			_, _ = fmt.Fprintf(w, "Authenticated:\t%s\n", green("yes"))
			if user, ok := info.User.(api.Item); ok {
				if email, ok := user["email"].(string); ok && email != "" {
					_, _ = fmt.Fprintf(w, "User:\t%s\n", email)
				}
			}
		case info.UserError != "":
			_, _ = fmt.Fprintf(w, "Authenticated:\t%s (%s)\n", red("no"), info.UserError)
		}
	} else {
		_, _ = fmt.Fprintf(w, "Configured:\t%s\n", red("no"))
		_, _ = fmt.Fprintf(w, "Hint:\tRun 'directus auth login' to configure a profile\n")
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "CLI Version:\t%s\n", info.CLIVersion)
	_, _ = fmt.Fprintf(w, "Go Version:\t%s\n", info.GoVersion)
	_, _ = fmt.Fprintf(w, "Platform:\t%s\n", info.Platform)

	return w.Flush()
}
