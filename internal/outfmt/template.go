package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"
)

type templateKey struct{}

// WithTemplate adds a template string to the context
func WithTemplate(ctx context.Context, tmpl string) context.Context {
	return context.WithValue(ctx, templateKey{}, tmpl)
}

// GetTemplate retrieves the template string from context
func GetTemplate(ctx context.Context) string {
	if tmpl, ok := ctx.Value(templateKey{}).(string); ok {
		return tmpl
	}
	return ""
}

// templateFuncs are available to every --template.
//
//	data  unwraps a {"data": ...} envelope, anything else passes through
//	get   walks a dotted path ("meta.total_count", "data.0.title")
//	join  joins a list with a separator
//	json  renders a value as indented JSON
var templateFuncs = template.FuncMap{
	"data": envelopeData,
	"get":  lookupPath,
	"join": joinValues,
	"json": func(v any) (string, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		return string(b), err
	},
}

// WriteTemplate renders v with a text/template. The value is first reduced to
// plain JSON types so raw response bodies and typed structs render alike.
func WriteTemplate(w io.Writer, v any, tmpl string) error {
	t, err := template.New("output").Funcs(templateFuncs).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return templateError("invalid template", err)
	}

	doc, err := plainJSON(v)
	if err != nil {
		return err
	}
	if err := t.Execute(w, doc); err != nil {
		return templateError("template execution error", err)
	}
	return nil
}

func plainJSON(v any) (any, error) {
	raw, err := toJSON(v)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("template input is not JSON: %w", err)
	}
	return doc, nil
}

func envelopeData(v any) any {
	if m, ok := v.(map[string]any); ok {
		if data, ok := m["data"]; ok {
			return data
		}
	}
	return v
}

func lookupPath(path string, v any) any {
	for _, seg := range strings.Split(path, ".") {
		switch cur := v.(type) {
		case map[string]any:
			v = cur[seg]
		case []any:
			var i int
			if _, err := fmt.Sscanf(seg, "%d", &i); err != nil || i < 0 || i >= len(cur) {
				return nil
			}
			v = cur[i]
		default:
			return nil
		}
	}
	return v
}

func joinValues(sep string, v any) string {
	items, ok := v.([]any)
	if !ok {
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprint(item)
	}
	return strings.Join(parts, sep)
}

var templateLocation = regexp.MustCompile(`^template: output:(\d+)(?::(\d+))?: (.*)$`)

// templateError strips text/template's "template: output:L:C:" prefix and
// reports the position in words.
func templateError(kind string, err error) error {
	m := templateLocation.FindStringSubmatch(err.Error())
	if m == nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	if m[2] != "" {
		return fmt.Errorf("%s at line %s, column %s: %s", kind, m[1], m[2], m[3])
	}
	return fmt.Errorf("%s at line %s: %s", kind, m[1], m[3])
}
