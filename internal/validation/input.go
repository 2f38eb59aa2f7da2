package validation

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Input length limits to prevent resource exhaustion
const (
	MaxEmailLength = 320     // RFC 5321: 64 chars (local) + 1 (@) + 255 (domain) = 320
	MaxJSONPayload = 1048576 // 1MB for JSON payloads
	MaxURLLength   = 2048    // Standard browser URL limit
)

// ValidateEmail validates the length and format of a login email.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if length := utf8.RuneCountInString(email); length > MaxEmailLength {
		return fmt.Errorf("email exceeds maximum length of %d characters (got %d)", MaxEmailLength, length)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// ValidateJSONPayload validates the size and syntax of a JSON payload.
func ValidateJSONPayload(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("JSON payload cannot be empty")
	}
	if len(payload) > MaxJSONPayload {
		return fmt.Errorf("JSON payload exceeds maximum size of %d bytes (got %d)", MaxJSONPayload, len(payload))
	}
	if !json.Valid(payload) {
		return fmt.Errorf("payload is not valid JSON")
	}
	return nil
}

// ParseHeader splits a "Name: value" or "Name=value" header flag.
func ParseHeader(raw string) (string, string, error) {
	idx := strings.IndexAny(raw, ":=")
	if idx <= 0 {
		return "", "", fmt.Errorf("invalid header %q (expected Name: value)", raw)
	}
	name := strings.TrimSpace(raw[:idx])
	value := strings.TrimSpace(raw[idx+1:])
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("invalid header name %q", name)
	}
	return name, value, nil
}
