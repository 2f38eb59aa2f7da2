package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
	"github.com/spf13/cobra"

	"github.com/directus/directus-go/internal/config"
	"github.com/directus/directus-go/internal/iocontext"
	"github.com/directus/directus-go/internal/validation"
	"github.com/directus/directus-go/pkg/api"
)

// passwordPrompt reads a password from the terminal. Tests replace it.
var passwordPrompt = keyring.TerminalPrompt

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage authentication credentials",
		Long:    "Log in to a Directus instance and manage the credentials stored in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

// newAuthLoginCmd creates the auth login command
func newAuthLoginCmd() *cobra.Command {
	var (
		email         string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save a profile",
		Long: strings.TrimSpace(`
Authenticate against a Directus instance and save the connection as a profile.

With --email the CLI requests a token from auth/request-token. The password is
read from --password, from stdin with --password-stdin, or from a terminal
prompt. With --token the given static token is saved without a login request.
`),
		Example: strings.TrimSpace(`
  # Log in with email and password
  directus auth login --url https://directus.example.com --email admin@example.com

  # Save a static token to a named profile
  directus auth login --url https://directus.example.com --token TOKEN --profile staging

  # Pipe the password from a secret manager
  pass show directus | directus auth login --url https://directus.example.com --email admin@example.com --password-stdin
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			factory := newClientFactory()

			baseURL := strings.TrimSpace(flags.URL)
			if baseURL == "" {
				baseURL = strings.TrimSpace(os.Getenv("DIRECTUS_URL"))
			}
			if baseURL == "" {
				return fmt.Errorf("--url is required")
			}
			baseURL = strings.TrimSuffix(baseURL, "/")
			if err := validation.ValidateBaseURL(baseURL); err != nil {
				return fmt.Errorf("invalid URL: %w", err)
			}
			if flags.APIVersion != "" {
				if err := config.ValidateAPIVersion(flags.APIVersion); err != nil {
					return err
				}
			}

			profileName := strings.TrimSpace(flags.Profile)
			if profileName == "" {
				profileName = "default"
			}

			headers, err := parseHeaderFlags(flags.Headers)
			if err != nil {
				return err
			}
			profile := config.Profile{
				URL:        baseURL,
				APIVersion: flags.APIVersion,
				Headers:    headers,
			}

			switch {
			case flags.Token != "" && email != "":
				return fmt.Errorf("--token and --email cannot be used together")
			case flags.Token != "":
				profile.AccessToken = flags.Token
			default:
				if email == "" {
					return fmt.Errorf("--email or --token is required")
				}
				if err := validation.ValidateEmail(email); err != nil {
					return fmt.Errorf("invalid email: %w", err)
				}
				pw, err := readPassword(cmd, password, passwordStdin)
				if err != nil {
					return err
				}

				client, err := factory.newClient(config.ClientConfig{
					URL:        baseURL,
					APIVersion: flags.APIVersion,
					Headers:    profile.Headers,
				})
				if err != nil {
					return err
				}
				if _, err := client.Authenticate(cmdContext(cmd), email, pw); err != nil {
					return err
				}
				profile.AccessToken = client.AccessToken()
			}

			if err := config.SaveProfile(profileName, profile); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"profile":      profileName,
					"url":          profile.URL,
					"api_version":  apiVersionOrDefault(profile.APIVersion),
					"access_token": maskToken(profile.AccessToken),
				})
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, green("Authentication credentials saved successfully!"))
			_, _ = fmt.Fprintf(out, "  URL: %s\n", profile.URL)
			_, _ = fmt.Fprintf(out, "  API version: %s\n", apiVersionOrDefault(profile.APIVersion))
			_, _ = fmt.Fprintf(out, "  Profile: %s\n", profileName)
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	flagAlias(cmd.Flags(), "email", "em")
	flagAlias(cmd.Flags(), "password-stdin", "pws")

	return cmd
}

func readPassword(cmd *cobra.Command, password string, fromStdin bool) (string, error) {
	if password != "" && fromStdin {
		return "", fmt.Errorf("--password and --password-stdin cannot be used together")
	}
	if password != "" {
		return password, nil
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	if fromStdin {
		line, err := bufio.NewReader(ioStreams.In).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return "", fmt.Errorf("password from stdin is empty")
		}
		return line, nil
	}
	if !ioStreams.CanPrompt() {
		return "", fmt.Errorf("--password or --password-stdin is required in non-interactive mode")
	}
	return passwordPrompt("Password")
}

func apiVersionOrDefault(v string) string {
	if v == "" {
		return api.DefaultAPIVersion
	}
	return v
}

// newAuthStatusCmd creates the auth status command
func newAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current authentication configuration",
		Long:  "Display the resolved connection settings (the access token is masked).",
		Example: strings.TrimSpace(`
  # Check authentication status
  directus auth status

  # JSON output for scripting
  directus auth status --json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := newClientFactory().resolve()
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"authenticated": false,
							"message":       "Not authenticated. Run 'directus auth login' to configure credentials.",
						})
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), yellow("Not authenticated."))
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'directus auth login' to configure credentials.")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"authenticated": cfg.Token != "",
					"profile":       cfg.Profile,
					"url":           cfg.URL,
					"api_version":   apiVersionOrDefault(cfg.APIVersion),
					"access_token":  maskToken(cfg.Token),
				})
			}

			out := cmd.OutOrStdout()
			if cfg.Token != "" {
				_, _ = fmt.Fprintln(out, green("Authenticated"))
			} else {
				_, _ = fmt.Fprintln(out, yellow("Configured without a token"))
			}
			_, _ = fmt.Fprintf(out, "  URL: %s\n", cfg.URL)
			_, _ = fmt.Fprintf(out, "  API version: %s\n", apiVersionOrDefault(cfg.APIVersion))
			if cfg.Token != "" {
				_, _ = fmt.Fprintf(out, "  Access token: %s\n", maskToken(cfg.Token))
			}
			_, _ = fmt.Fprintf(out, "  Profile: %s\n", cfg.Profile)
			return nil
		}),
	}

	return cmd
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove credentials from keychain",
		Long:  "Delete a stored profile (the current one unless --profile is given).",
		Example: strings.TrimSpace(`
  # Remove the current profile
  directus auth logout

  # Remove a named profile
  directus auth logout --profile staging
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile, err := config.ProfileName(flags.Profile)
			if err != nil {
				return err
			}
			if _, err := config.LoadProfile(profile); err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials found.")
					return nil
				}
				return err
			}

			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed successfully.\n", profile)
			return nil
		}),
	}

	return cmd
}
