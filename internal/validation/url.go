// Package validation checks user input before it is stored or sent.
//
// Directus is commonly self-hosted, so ValidateBaseURL accepts localhost and
// private addresses. Cloud metadata endpoints are always rejected so a stored
// profile can never point the CLI's bearer token at an instance metadata
// service.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateBaseURL validates a Directus instance URL. It checks that the URL:
//   - Uses http or https scheme
//   - Contains a valid hostname
//   - Carries no query string or fragment
//   - Does not target cloud metadata endpoints
func ValidateBaseURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxURLLength)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsedURL.Scheme)
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must contain a hostname")
	}

	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return fmt.Errorf("base URL must not contain a query string or fragment")
	}

	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return fmt.Errorf("link-local IP addresses are not allowed")
		}
		if ip.IsMulticast() {
			return fmt.Errorf("multicast IP addresses are not allowed")
		}
	}
	return nil
}

// IsLocalhost reports whether the URL's host is a loopback name or address.
func IsLocalhost(rawURL string) bool {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	hostname := strings.ToLower(parsedURL.Hostname())
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	if ip := net.ParseIP(hostname); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// isCloudMetadata checks for cloud metadata endpoints
func isCloudMetadata(hostname string) bool {
	lowercase := strings.ToLower(hostname)
	cloudMetadataEndpoints := []string{
		"169.254.169.254",          // AWS, Azure, GCP, DigitalOcean
		"metadata.google.internal", // GCP
		"metadata",                 // Generic
		"instance-data",            // AWS
		"fd00:ec2::254",            // AWS IPv6
	}

	for _, endpoint := range cloudMetadataEndpoints {
		if lowercase == endpoint {
			return true
		}
	}
	return strings.HasSuffix(lowercase, ".metadata.google.internal")
}
