package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/directus/directus-go/internal/config"
	"github.com/directus/directus-go/pkg/api"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var (
		remoteErr    *api.RemoteError
		transportErr *api.TransportError
		missingErr   *api.MissingParameterError
		mismatchErr  *api.TypeMismatchError
		unknownErr   *api.UnknownOperationError
	)

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No Directus instance configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: directus auth login --url https://directus.example.com\n")
		msg.WriteString("  - Or set DIRECTUS_URL and DIRECTUS_TOKEN\n")

	case errors.As(err, &missingErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", missingErr.Error())
		msg.WriteString("Suggestions:\n")
		if op, ok := api.Lookup(missingErr.Operation); ok {
			fmt.Fprintf(&msg, "  - Usage: directus call %s\n", op.Usage())
		}
		msg.WriteString("  - Run: directus ops to list operations\n")

	case errors.As(err, &mismatchErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", mismatchErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Pass a JSON array, e.g. --data '[{\"title\":\"a\"},{\"title\":\"b\"}]'\n")

	case errors.As(err, &unknownErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: directus ops to list operations\n")

	case errors.As(err, &remoteErr):
		fmt.Fprintf(&msg, "%s\n\n", remoteErr.Error())
		msg.WriteString(suggestionsForStatusCode(remoteErr.StatusCode, remoteErr.Message()))
		if remoteErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", remoteErr.RequestID)
		}

	case errors.As(err, &transportErr) && transportErr.StatusCode != 0:
		fmt.Fprintf(&msg, "Request failed (HTTP %d) with an empty response.\n\n", transportErr.StatusCode)
		msg.WriteString(suggestionsForStatusCode(transportErr.StatusCode, ""))

	case strings.Contains(err.Error(), "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check if the Directus server is running\n")
		msg.WriteString("  - Verify the URL: directus auth status\n")
		msg.WriteString("  - Check your network connection\n")

	case strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the Directus URL spelling\n")
		msg.WriteString("  - Verify your DNS settings\n")

	case strings.Contains(err.Error(), "certificate"):
		msg.WriteString("TLS certificate error.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Verify the server's SSL certificate\n")
		msg.WriteString("  - Ensure you're using https:// correctly\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int, message string) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch code {
	case 200:
		suggestions.WriteString("  - The server answered with success=false\n")
		suggestions.WriteString("  - Check the email and password\n")

	case 400:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --debug to see the full request\n")
		if strings.Contains(strings.ToLower(message), "required") {
			suggestions.WriteString("  - A required field may be missing\n")
		}

	case 401:
		suggestions.WriteString("  - Your access token may be invalid or expired\n")
		suggestions.WriteString("  - Run: directus auth login\n")

	case 403:
		suggestions.WriteString("  - You don't have permission for this action\n")
		suggestions.WriteString("  - Check the privileges of your user group\n")

	case 404:
		suggestions.WriteString("  - The table, row or file doesn't exist\n")
		suggestions.WriteString("  - Check the ID is correct\n")

	case 422:
		suggestions.WriteString("  - Validation failed\n")
		suggestions.WriteString("  - Check your input values\n")

	case 429:
		suggestions.WriteString("  - Too many requests\n")
		suggestions.WriteString("  - Wait and retry in a few seconds\n")

	case 500, 502, 503, 504:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")
		suggestions.WriteString("  - Run: directus status\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
