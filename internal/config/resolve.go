package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/mod/semver"
)

const (
	envURL        = "DIRECTUS_URL"
	envToken      = "DIRECTUS_TOKEN"
	envAPIVersion = "DIRECTUS_API_VERSION"
	envProfile    = "DIRECTUS_PROFILE"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	Profile    string
	URL        string
	APIVersion string
	Token      string
	Headers    map[string]string
}

// Overrides are values given on the command line. Empty fields are ignored.
type Overrides struct {
	Profile    string
	URL        string
	Token      string
	APIVersion string
	Headers    map[string]string
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables that are already set keep their value.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ProfileName returns the profile selected by the override, DIRECTUS_PROFILE
// or the stored current-profile pointer, in that order.
func ProfileName(override string) (string, error) {
	if name := strings.TrimSpace(override); name != "" {
		return name, nil
	}
	if name := strings.TrimSpace(os.Getenv(envProfile)); name != "" {
		return name, nil
	}
	return CurrentProfile()
}

// ResolveClientConfig merges the stored profile, environment variables and
// command-line overrides, later sources winning. A stored profile is optional
// when DIRECTUS_URL or --url supplies the base URL.
func ResolveClientConfig(ov Overrides) (ClientConfig, error) {
	var cfg ClientConfig

	name, err := ProfileName(ov.Profile)
	if err != nil {
		return ClientConfig{}, err
	}
	cfg.Profile = name

	profile, err := LoadProfile(name)
	switch {
	case err == nil:
		cfg.URL = profile.URL
		cfg.APIVersion = profile.APIVersion
		cfg.Token = profile.AccessToken
		cfg.Headers = copyHeaders(profile.Headers)
	case errors.Is(err, ErrNotConfigured):
	default:
		return ClientConfig{}, err
	}

	if v := strings.TrimSpace(os.Getenv(envURL)); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(envToken)); v != "" {
		cfg.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(envAPIVersion)); v != "" {
		cfg.APIVersion = v
	}

	if ov.URL != "" {
		cfg.URL = ov.URL
	}
	if ov.Token != "" {
		cfg.Token = ov.Token
	}
	if ov.APIVersion != "" {
		cfg.APIVersion = ov.APIVersion
	}
	if len(ov.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(ov.Headers))
		}
		for k, v := range ov.Headers {
			cfg.Headers[k] = v
		}
	}

	cfg.URL = strings.TrimSuffix(strings.TrimSpace(cfg.URL), "/")
	if cfg.URL == "" {
		return ClientConfig{}, ErrNotConfigured
	}
	if cfg.APIVersion != "" {
		if err := ValidateAPIVersion(cfg.APIVersion); err != nil {
			return ClientConfig{}, err
		}
	}
	return cfg, nil
}

// ValidateAPIVersion accepts dotted numeric versions such as "1.1" or "2".
func ValidateAPIVersion(version string) error {
	v := strings.TrimSpace(version)
	if v == "" || strings.HasPrefix(v, "v") || !semver.IsValid("v"+v) || semver.Prerelease("v"+v) != "" || semver.Build("v"+v) != "" {
		return fmt.Errorf("invalid API version %q (expected a number such as 1.1)", version)
	}
	return nil
}

func copyHeaders(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
