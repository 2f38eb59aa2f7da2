package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunBatch_PreservesOrder(t *testing.T) {
	values := []string{"1", "2", "3", "4", "5", "6"}
	results := runBatch(context.Background(), values, 3, false, nil,
		func(_ context.Context, value string) (json.RawMessage, error) {
			// Later values finish first.
			n, _ := strconv.Atoi(value)
			time.Sleep(time.Duration(7-n) * 2 * time.Millisecond)
			return json.RawMessage(`{"id":` + value + `}`), nil
		})

	if len(results) != len(values) {
		t.Fatalf("got %d results, want %d", len(results), len(values))
	}
	for i, r := range results {
		if r.Value != values[i] {
			t.Errorf("results[%d].Value = %q, want %q", i, r.Value, values[i])
		}
		if !r.Success {
			t.Errorf("results[%d] failed: %s", i, r.Error)
		}
		if string(r.Data) != `{"id":`+values[i]+`}` {
			t.Errorf("results[%d].Data = %s", i, r.Data)
		}
	}
}

func TestRunBatch_PartialFailure(t *testing.T) {
	results := runBatch(context.Background(), []string{"ok", "bad", "ok2"}, 2, false, nil,
		func(_ context.Context, value string) (json.RawMessage, error) {
			if value == "bad" {
				return nil, errors.New("boom")
			}
			return json.RawMessage(`{}`), nil
		})

	success, failure := countResults(results)
	if success != 2 || failure != 1 {
		t.Errorf("success=%d failure=%d, want 2/1", success, failure)
	}
	if results[1].Error != "boom" {
		t.Errorf("results[1].Error = %q", results[1].Error)
	}
}

func TestRunBatch_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	values := make([]string, 20)
	for i := range values {
		values[i] = fmt.Sprint(i)
	}

	runBatch(context.Background(), values, 2, false, nil,
		func(_ context.Context, _ string) (json.RawMessage, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return nil, nil
		})

	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", got)
	}
}

func TestRunBatch_Progress(t *testing.T) {
	var buf bytes.Buffer
	runBatch(context.Background(), []string{"a", "b"}, 1, true, &buf,
		func(context.Context, string) (json.RawMessage, error) { return nil, nil })

	if !strings.Contains(buf.String(), "Processed 2/2\n") {
		t.Errorf("unexpected progress output: %q", buf.String())
	}
}

func TestRunBatch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := runBatch(ctx, []string{"1", "2"}, 1, false, nil,
		func(context.Context, string) (json.RawMessage, error) {
			calls.Add(1)
			return nil, nil
		})

	if _, failure := countResults(results); failure != 2 {
		t.Errorf("expected both values to fail, got %d failures", failure)
	}
	if calls.Load() != 0 {
		t.Errorf("operation should not run after cancellation, ran %d times", calls.Load())
	}
}

func TestBatchCommand(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/1.1/tables/articles/rows/1", jsonResponse(200, `{"data": {"id": 1}}`)).
		On("GET", "/api/1.1/tables/articles/rows/2", jsonResponse(200, `{"data": {"id": 2}}`))
	env := setupTestEnvWithHandler(t, handler)

	var err error
	output := captureStdout(t, func() {
		err = Execute(context.Background(), []string{"batch", "getItem", "articles", "--each", "1,2,3", "--json"})
	})
	if err == nil || !strings.Contains(err.Error(), "1 of 3 calls failed") {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if got := env.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}

	var results []BatchResult
	if err := json.Unmarshal([]byte(output), &results); err != nil {
		t.Fatalf("invalid JSON: %v (%s)", err, output)
	}
	if len(results) != 3 || !results[0].Success || !results[1].Success || results[2].Success {
		t.Fatalf("unexpected results: %+v", results)
	}
	if !strings.Contains(results[2].Error, "Route not found") {
		t.Errorf("results[2].Error = %q", results[2].Error)
	}
}

func TestBatchCommand_TextWithPayload(t *testing.T) {
	handler := newRouteHandler().
		On("PUT", "/api/1.1/tables/articles/rows/7", jsonResponse(200, `{"data": {}}`)).
		On("PUT", "/api/1.1/tables/articles/rows/8", jsonResponse(200, `{"data": {}}`))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"batch", "updateItem", "articles", "--each", "7", "--each", "8", "-f", "status=draft", "--cc", "1"})
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}
	})

	if !strings.Contains(output, "2 succeeded, 0 failed") {
		t.Errorf("unexpected output: %s", output)
	}
	if body := handler.last(t).JSON(t); body.(map[string]any)["status"] != "draft" {
		t.Errorf("body = %v", body)
	}
}

func TestBatchCommand_MissingEach(t *testing.T) {
	env := setupTestEnvWithHandler(t, http.NotFoundHandler())

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"batch", "getItem", "articles"})
	})
	if err == nil || !strings.Contains(err.Error(), "--each is required") {
		t.Fatalf("expected --each error, got %v", err)
	}
	if code := ExitCode(err); code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
	if env.calls.Load() != 0 {
		t.Error("expected no requests")
	}
}

func TestBatchCommand_MissingParameterPerValue(t *testing.T) {
	env := setupTestEnvWithHandler(t, newRouteHandler())

	var err error
	captureStdout(t, func() {
		captureStderr(t, func() {
			err = Execute(context.Background(), []string{"batch", "updateItem", "--each", "1,2"})
		})
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if env.calls.Load() != 0 {
		t.Errorf("expected no requests, got %d", env.calls.Load())
	}
}

func TestBatchCommand_DryRun(t *testing.T) {
	env := setupTestEnvWithHandler(t, newRouteHandler())

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"batch", "deleteFile", "--each", "7,8,9", "--dry-run"})
		if err != nil {
			t.Fatalf("dry run failed: %v", err)
		}
	})
	if env.calls.Load() != 0 {
		t.Error("expected no requests")
	}
	if got := strings.Count(output, "[DRY-RUN]"); got != 3 {
		t.Errorf("expected 3 previews, got %d:\n%s", got, output)
	}
	if !strings.Contains(output, "/api/1.1/files/9") {
		t.Errorf("missing last file:\n%s", output)
	}
}
