package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExecute_Help(t *testing.T) {
	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"--help"}); err != nil {
			t.Errorf("Execute() with --help failed: %v", err)
		}
	})
	for _, want := range []string{"Directus REST API", "call", "batch", "--api-version", "--header"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q", want)
		}
	}
	if strings.Contains(output, "--cj") {
		t.Error("flag aliases should be hidden from help")
	}
}

func TestExecute_UnknownCommandSuggests(t *testing.T) {
	clearDirectusEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"statsu"})
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(stderr, `Did you mean "status"?`) {
		t.Errorf("expected suggestion, got: %s", stderr)
	}
	if code := ExitCode(err); code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
}

func TestExecute_UnknownFlagSuggests(t *testing.T) {
	clearDirectusEnv(t)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"ops", "--jsno"})
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(stderr, `Did you mean "--json"?`) {
		t.Errorf("expected flag suggestion, got: %s", stderr)
	}
	if !strings.Contains(stderr, "directus ops --help") {
		t.Errorf("expected help hint, got: %s", stderr)
	}
}

func TestExecute_JSONConflictsWithOutput(t *testing.T) {
	clearDirectusEnv(t)

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"version", "--json", "--output", "text"})
	})
	if err == nil || !strings.Contains(err.Error(), "--json conflicts with --output text") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestExecute_QueryAndJQConflict(t *testing.T) {
	clearDirectusEnv(t)

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"version", "--jq", ".a", "--query", ".b"})
	})
	if err == nil || !strings.Contains(err.Error(), "cannot be used together") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestExecute_QueryRequiresJSONOutput(t *testing.T) {
	clearDirectusEnv(t)

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"version", "--output", "text", "--jq", ".version"})
	})
	if err == nil || !strings.Contains(err.Error(), "require --output json") {
		t.Fatalf("expected output error, got %v", err)
	}
}

func TestExecute_QueryImpliesJSON(t *testing.T) {
	clearDirectusEnv(t)

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version", "-q", ".version"}); err != nil {
			t.Fatalf("version failed: %v", err)
		}
	})
	if strings.TrimSpace(output) != `"dev"` {
		t.Errorf("output = %q", output)
	}
}

func TestExecute_Template(t *testing.T) {
	clearDirectusEnv(t)

	path := filepath.Join(t.TempDir(), "v.tmpl")
	if err := os.WriteFile(path, []byte("v={{.version}}"), 0o600); err != nil {
		t.Fatal(err)
	}

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version", "--template", "@" + path}); err != nil {
			t.Fatalf("version failed: %v", err)
		}
	})
	if !strings.Contains(output, "v=dev") {
		t.Errorf("output = %q", output)
	}
}

func TestExecute_OutputFromEnv(t *testing.T) {
	clearDirectusEnv(t)
	t.Setenv("DIRECTUS_OUTPUT", "json")

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version"}); err != nil {
			t.Fatalf("version failed: %v", err)
		}
	})
	if !strings.Contains(output, `"default_api_version"`) {
		t.Errorf("expected JSON output, got %q", output)
	}
}

func TestExecute_InvalidOutput(t *testing.T) {
	clearDirectusEnv(t)

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"version", "-o", "yaml"})
	})
	if err == nil {
		t.Fatal("expected error for unsupported output mode")
	}
}

func TestExecute_NegativeTimeout(t *testing.T) {
	clearDirectusEnv(t)

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"version", "--timeout", "-1s"})
	})
	if err == nil || !strings.Contains(err.Error(), "--timeout must be >= 0") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestExecute_EnvFile(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/3/users/me", jsonResponse(200, `{"data": {"id": 1}}`))
	env := setupTestEnvWithHandler(t, handler)
	// Variables that are set, even to "", win over the file.
	for _, key := range []string{"DIRECTUS_URL", "DIRECTUS_TOKEN", "DIRECTUS_API_VERSION"} {
		_ = os.Unsetenv(key)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "DIRECTUS_URL=" + env.server.URL + "\nDIRECTUS_TOKEN=from-env-file\nDIRECTUS_API_VERSION=3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"call", "getMe", "--env-file", path}); err != nil {
			t.Fatalf("call failed: %v", err)
		}
	})
	if got := handler.last(t).Header.Get("Authorization"); got != "Bearer from-env-file" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestExecute_FlagOverridesEnv(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/1.1/users/me", jsonResponse(200, `{"data": {}}`))
	setupTestEnvWithHandler(t, handler)

	captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"call", "getMe", "--token", "flag-token"}); err != nil {
			t.Fatalf("call failed: %v", err)
		}
	})
	if got := handler.last(t).Header.Get("Authorization"); got != "Bearer flag-token" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestExtractHelpers(t *testing.T) {
	if got := extractQuoted(`unknown command "statsu" for "directus"`); got != "statsu" {
		t.Errorf("extractQuoted = %q", got)
	}
	if got := extractQuoted("no quotes"); got != "" {
		t.Errorf("extractQuoted = %q", got)
	}
	if got := extractFlag("unknown flag: --jsno=1"); got != "--jsno" {
		t.Errorf("extractFlag = %q", got)
	}
	if got := extractFlag("unknown shorthand flag: 'z' in -z"); got != "" {
		t.Errorf("extractFlag = %q", got)
	}
}
