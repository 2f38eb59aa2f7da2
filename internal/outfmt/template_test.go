package outfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestTemplateContext(t *testing.T) {
	if GetTemplate(context.Background()) != "" {
		t.Error("template should be empty by default")
	}
	ctx := WithTemplate(context.Background(), "{{.title}}")
	if GetTemplate(ctx) != "{{.title}}" {
		t.Error("GetTemplate should return the template set with WithTemplate")
	}
}

func TestWriteTemplate(t *testing.T) {
	body := json.RawMessage(`{"data": [{"id": 1, "title": "a", "tags": ["x", "y"]}, {"id": 2, "title": "b"}], "meta": {"total_count": 2}}`)

	tests := []struct {
		name string
		data any
		tmpl string
		want string
	}{
		{"fields", map[string]any{"id": 3, "title": "hello"}, "{{.id}}: {{.title}}", "3: hello"},
		{"struct via json tags", struct {
			Title string `json:"title"`
		}{"hi"}, "{{.title}}", "hi"},
		{"missing key with guard", map[string]string{"title": "x"}, "{{with .status}}{{.}}{{end}}", ""},
		{"raw body range", body, "{{range .data}}{{.title}} {{end}}", "a b "},
		{"data unwraps envelope", body, "{{len (data .)}}", "2"},
		{"data passes through", []any{1, 2}, "{{len (data .)}}", "2"},
		{"get dotted path", body, `{{get "meta.total_count" .}}/{{get "data.1.title" .}}`, "2/b"},
		{"get out of range", body, `{{with get "data.9.title" .}}{{.}}{{end}}`, ""},
		{"join", body, `{{join "," (get "data.0.tags" .)}}`, "x,y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteTemplate(&buf, tt.data, tt.tmpl); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriteTemplate_JSONFunc(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf, map[string]string{"status": "draft"}, "{{json .}}"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"status": "draft"`) {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteTemplate_Errors(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTemplate(&buf, nil, "{{.title")
	if err == nil || !strings.Contains(err.Error(), "invalid template at line 1") {
		t.Errorf("expected invalid template error with position, got %v", err)
	}
	if err != nil && strings.Contains(err.Error(), "template: output") {
		t.Errorf("text/template prefix should be stripped: %v", err)
	}

	err = WriteTemplate(&buf, map[string]any{"n": 1}, "{{index .n 2}}")
	if err == nil || !strings.Contains(err.Error(), "template execution error at line 1, column") {
		t.Errorf("expected execution error with position, got %v", err)
	}

	err = WriteTemplate(&buf, json.RawMessage(`{not json`), "{{.}}")
	if err == nil || !strings.Contains(err.Error(), "not JSON") {
		t.Errorf("expected decode error, got %v", err)
	}
}
