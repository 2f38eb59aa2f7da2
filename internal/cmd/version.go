package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/directus/directus-go/internal/update"
	"github.com/directus/directus-go/pkg/api"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Example: `  directus version
  directus version --check`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if check {
				return runVersionCheck(cmd)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{
					"version":             version,
					"default_api_version": api.DefaultAPIVersion,
					"go_version":          runtime.Version(),
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "directus-cli version %s\n", version)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	return cmd
}

func runVersionCheck(cmd *cobra.Command) error {
	result, err := update.Check(cmd.Context(), nil, version)
	if err != nil {
		return err
	}
	if isJSON(cmd) {
		return printJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	if !result.UpdateAvailable {
		_, _ = fmt.Fprintf(out, "directus-cli %s is up to date\n", version)
		return nil
	}
	_, _ = fmt.Fprintf(out, "directus-cli %s is available (installed: %s)\n", result.LatestVersion, version)
	if result.UpdateURL != "" {
		_, _ = fmt.Fprintf(out, "  %s\n", result.UpdateURL)
	}
	return nil
}
