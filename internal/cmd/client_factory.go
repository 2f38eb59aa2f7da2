package cmd

import (
	"fmt"
	"time"

	"github.com/directus/directus-go/internal/config"
	"github.com/directus/directus-go/internal/validation"
	"github.com/directus/directus-go/pkg/api"
)

type clientFactory struct {
	timeout   time.Duration
	userAgent string
	overrides config.Overrides
	headers   []string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("directus-cli/%s", version),
		overrides: config.Overrides{
			Profile:    flags.Profile,
			URL:        flags.URL,
			Token:      flags.Token,
			APIVersion: flags.APIVersion,
		},
		headers: flags.Headers,
	}
}

// resolve merges the stored profile, environment and flags.
func (f *clientFactory) resolve() (config.ClientConfig, error) {
	ov := f.overrides
	headers, err := parseHeaderFlags(f.headers)
	if err != nil {
		return config.ClientConfig{}, err
	}
	ov.Headers = headers
	return config.ResolveClientConfig(ov)
}

// parseHeaderFlags turns repeated --header values into a map.
func parseHeaderFlags(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, err := validation.ParseHeader(h)
		if err != nil {
			return nil, fmt.Errorf("invalid --header: %w", err)
		}
		headers[name] = value
	}
	return headers, nil
}

func (f *clientFactory) client() (*api.Client, error) {
	cfg, err := f.resolve()
	if err != nil {
		return nil, err
	}
	return f.newClient(cfg)
}

func (f *clientFactory) newClient(cfg config.ClientConfig) (*api.Client, error) {
	client, err := api.New(api.Options{
		URL:         cfg.URL,
		Version:     cfg.APIVersion,
		AccessToken: cfg.Token,
		Headers:     cfg.Headers,
		UserAgent:   f.userAgent,
	})
	if err != nil {
		return nil, err
	}
	if f.timeout > 0 {
		client.HTTP.Timeout = f.timeout
	}
	return client, nil
}
