package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/directus/directus-go/internal/config"
	"github.com/directus/directus-go/internal/iocontext"
	"github.com/directus/directus-go/internal/outfmt"
	"github.com/directus/directus-go/internal/resolve"
)

type profileEntry struct {
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	APIVersion string `json:"api_version,omitempty"`
	Current    bool   `json:"current"`
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"pr"},
		Short:   "List and switch stored profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			return runProfileList(cmd)
		}),
	}

	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileUseCmd())

	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Example: "directus profile list",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			return runProfileList(cmd)
		}),
	}
}

func runProfileList(cmd *cobra.Command) error {
	names, err := config.ListProfiles()
	if err != nil {
		return err
	}
	current, err := config.CurrentProfile()
	if err != nil {
		return err
	}

	entries := make([]profileEntry, 0, len(names))
	for _, name := range names {
		entry := profileEntry{Name: name, Current: name == current}
		if p, err := config.LoadProfile(name); err == nil {
			entry.URL = p.URL
			entry.APIVersion = p.APIVersion
		}
		entries = append(entries, entry)
	}

	if isJSON(cmd) {
		return printJSON(cmd, entries)
	}

	ioStreams := iocontext.GetIO(cmd.Context())
	f := outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
	if len(entries) == 0 {
		f.Empty("No profiles stored. Run 'directus auth login' to create one.")
		return nil
	}
	f.StartTable([]string{"", "NAME", "URL", "API"})
	for _, e := range entries {
		marker := ""
		if e.Current {
			marker = "*"
		}
		f.Row(marker, e.Name, e.URL, apiVersionOrDefault(e.APIVersion))
	}
	return f.EndTable()
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Aliases: []string{"switch"},
		Short:   "Make a stored profile the current one",
		Example: "directus profile use staging",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			name, err := resolve.Name(args[0], names)
			if err != nil {
				var nf *resolve.NotFoundError
				if errors.As(err, &nf) && len(nf.Suggestions) > 0 {
					return fmt.Errorf("profile %q is not stored\n\nDid you mean %q?", args[0], nf.Suggestions[0])
				}
				return fmt.Errorf("profile %q is not stored: %w", args[0], config.ErrNotConfigured)
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %s.\n", name)
			return nil
		}),
	}
}
