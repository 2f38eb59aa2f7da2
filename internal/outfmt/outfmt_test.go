package outfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input       string
		expected    Mode
		expectError bool
	}{
		{"text", Text, false},
		{"", Text, false},
		{"json", JSON, false},
		{"jsonl", Text, true},
		{"JSON", Text, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := Parse(tt.input)
			if tt.expectError != (err != nil) {
				t.Fatalf("Parse(%q) error = %v, expectError %v", tt.input, err, tt.expectError)
			}
			if mode != tt.expected {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, mode, tt.expected)
			}
		})
	}
}

func TestModeContext(t *testing.T) {
	ctx := context.Background()
	if ModeFromContext(ctx) != Text || IsJSON(ctx) {
		t.Error("default mode should be Text")
	}
	if !IsJSON(WithMode(ctx, JSON)) {
		t.Error("expected IsJSON after WithMode(JSON)")
	}
	if Text.String() != "text" || JSON.String() != "json" {
		t.Errorf("unexpected mode names %q %q", Text, JSON)
	}
}

func TestCompactContext(t *testing.T) {
	if IsCompact(context.Background()) {
		t.Error("compact should default to false")
	}
	if !IsCompact(WithCompact(context.Background(), true)) {
		t.Error("expected compact after WithCompact(true)")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]string{"collection": "articles"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "{\n  \"collection\": \"articles\"\n}\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestWriteJSONMaybeCompact_RawMessage(t *testing.T) {
	var buf bytes.Buffer
	raw := json.RawMessage(`{ "data" : { "id" : 1 } }`)
	if err := WriteJSONMaybeCompact(&buf, raw, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "{\"data\":{\"id\":1}}\n" {
		t.Errorf("got %q", buf.String())
	}

	if err := WriteJSONMaybeCompact(&buf, json.RawMessage(`{`), true); err == nil {
		t.Error("expected error for invalid raw JSON")
	}
}

func TestWriteJSON_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONMaybeCompact(&buf, map[string]string{"body": "<p>&</p>"}, true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"body\":\"<p>&</p>\"}\n" {
		t.Errorf("got %q", buf.String())
	}
}
