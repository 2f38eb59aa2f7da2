package iocontext

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestDefaultIO(t *testing.T) {
	io := DefaultIO()
	if io.Out == nil || io.ErrOut == nil || io.In == nil {
		t.Error("DefaultIO should return non-nil streams")
	}
}

func TestWithIO(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	io := &IO{Out: out, ErrOut: errOut}
	ctx := WithIO(context.Background(), io)

	got := GetIO(ctx)
	if got.Out != out {
		t.Error("GetIO should return the IO set with WithIO")
	}
}

func TestGetIO_DefaultsWhenNotSet(t *testing.T) {
	if io := GetIO(context.Background()); io == nil {
		t.Error("GetIO should return default IO when not set")
	}
	//nolint:staticcheck // nil context is tolerated
	if io := GetIO(nil); io == nil {
		t.Error("GetIO should return default IO for a nil context")
	}
}

func TestCanPrompt_InjectedReader(t *testing.T) {
	io := &IO{In: strings.NewReader("secret\n")}
	if io.CanPrompt() {
		t.Error("an injected reader is never a terminal")
	}
}
