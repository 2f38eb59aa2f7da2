package outfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFormatter_Document(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewFormatter(context.Background(), &out, &errOut)

	if err := f.Document(map[string]any{"data": map[string]any{"id": 1}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"id": 1`) {
		t.Errorf("got %q", out.String())
	}
}

func TestFormatter_DocumentWithQueryAndTemplate(t *testing.T) {
	ctx := WithQuery(context.Background(), ".data")
	ctx = WithTemplate(ctx, "{{.title}}")

	var out, errOut bytes.Buffer
	f := NewFormatter(ctx, &out, &errOut)
	if err := f.Document(map[string]any{"data": map[string]any{"title": "hello"}}); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hello" {
		t.Errorf("got %q", out.String())
	}
}

func TestFormatter_DocumentCompact(t *testing.T) {
	ctx := WithCompact(WithQuery(context.Background(), ".data"), true)

	var out, errOut bytes.Buffer
	f := NewFormatter(ctx, &out, &errOut)
	if err := f.Document(map[string]any{"data": map[string]any{"a": 1}}); err != nil {
		t.Fatal(err)
	}
	if out.String() != "{\"a\":1}\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestFormatter_Table(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewFormatter(context.Background(), &out, &errOut)

	if !f.StartTable([]string{"NAME", "METHOD"}) {
		t.Fatal("StartTable should return true in text mode")
	}
	f.Row("getItems", "GET")
	f.Row("createItem", "POST")
	if err := f.EndTable(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out.String())
	}
	if !strings.HasPrefix(lines[1], "getItems") || !strings.HasSuffix(lines[1], "GET") {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestFormatter_StartTable_JSON(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewFormatter(WithMode(context.Background(), JSON), &out, &errOut)
	if f.StartTable([]string{"NAME"}) {
		t.Error("StartTable should return false in JSON mode")
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be written, got %q", out.String())
	}
}

func TestFormatter_Empty(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewFormatter(context.Background(), &out, &errOut)
	f.Empty("No profiles found")
	if errOut.String() != "No profiles found\n" || out.Len() != 0 {
		t.Errorf("out=%q errOut=%q", out.String(), errOut.String())
	}
}
