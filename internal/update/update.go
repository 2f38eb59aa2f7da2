// Package update looks up the latest published release of the CLI.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// DefaultReleasesURL is the GitHub endpoint for the latest release.
	DefaultReleasesURL = "https://api.github.com/repos/directus/directus-go/releases/latest"
	CheckTimeout       = 5 * time.Second
)

// ReleasesURL is the URL to check for releases. Tests override it.
var ReleasesURL = DefaultReleasesURL

// ErrDevelopmentBuild is returned for builds without a release version.
var ErrDevelopmentBuild = errors.New("development builds cannot be compared with releases")

type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type CheckResult struct {
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version"`
	UpdateURL       string `json:"update_url,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
}

// Check compares currentVersion with the latest release. The request is
// bounded by CheckTimeout even when ctx has no deadline.
func Check(ctx context.Context, client *http.Client, currentVersion string) (*CheckResult, error) {
	if currentVersion == "" || currentVersion == "dev" {
		return nil, ErrDevelopmentBuild
	}
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("release check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release check failed: HTTP %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("release check failed: %w", err)
	}

	return &CheckResult{
		CurrentVersion:  currentVersion,
		LatestVersion:   strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:       release.HTMLURL,
		UpdateAvailable: Newer(release.TagName, currentVersion),
	}, nil
}

// Newer reports whether candidate is a later semantic version than current.
// Unparseable versions never compare as newer.
func Newer(candidate, current string) bool {
	a, b := normalizeVersion(candidate), normalizeVersion(current)
	if !semver.IsValid(a) || !semver.IsValid(b) {
		return false
	}
	return semver.Compare(a, b) > 0
}

func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
