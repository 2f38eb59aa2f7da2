package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/directus/directus-go/internal/dryrun"
	"github.com/directus/directus-go/internal/iocontext"
)

// DefaultConcurrency is the default number of concurrent workers
const DefaultConcurrency = 5

// BatchResult is the outcome of one call in a batch.
type BatchResult struct {
	Value   string          `json:"value"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// runBatch calls operation once per value with bounded parallelism. Results
// keep the order of values; a failed call never stops the others.
func runBatch(
	ctx context.Context,
	values []string,
	concurrency int64,
	progress bool,
	errOut io.Writer,
	operation func(ctx context.Context, value string) (json.RawMessage, error),
) []BatchResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if errOut == nil {
		errOut = io.Discard
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]BatchResult, len(values))
	total := len(values)
	var (
		mu   sync.Mutex
		done int64
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, value := range values {
		g.Go(func() error {
			results[i].Value = value
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i].Error = err.Error()
				return nil
			}
			defer sem.Release(1)

			data, err := operation(ctx, value)
			if err != nil {
				results[i].Error = err.Error()
			} else {
				results[i].Success = true
				results[i].Data = data
			}

			if progress {
				current := atomic.AddInt64(&done, 1)
				mu.Lock()
				_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d", current, total)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if progress && total > 0 {
		_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d\n", atomic.LoadInt64(&done), total)
	}
	return results
}

// countResults returns success and failure counts from batch results
func countResults(results []BatchResult) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return
}

func newBatchCmd() *cobra.Command {
	var (
		each        []string
		concurrency int64
		progress    bool
		payload     payloadFlags
	)

	cmd := &cobra.Command{
		Use:   "batch <operation> [args...] --each v1,v2,...",
		Short: "Run one operation for many values concurrently",
		Long: strings.TrimSpace(`
Run a catalog operation once per --each value. Each value is appended as the
last positional argument, so 'batch getItem articles --each 1,2,3' calls
getItem articles 1, getItem articles 2 and getItem articles 3. All calls share
one client and run with bounded concurrency; failures are reported per value.
`),
		Example: strings.TrimSpace(`
  # Fetch three rows
  directus batch getItem articles --each 1,2,3

  # Delete files, at most two requests in flight
  directus batch deleteFile --each 7,8,9 --concurrency 2

  # Preview the deletes first
  directus batch deleteFile --each 7,8,9 --dry-run
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if len(each) == 0 {
				return fmt.Errorf("--each is required")
			}
			if concurrency < 0 {
				return fmt.Errorf("--concurrency must be >= 0")
			}
			op, err := resolveOperation(args[0])
			if err != nil {
				return err
			}
			body, err := payload.build(cmd)
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}

			fixed := args[1:]
			argsFor := func(value string) []string {
				return append(append([]string(nil), fixed...), value)
			}

			if dryrun.IsEnabled(cmd.Context()) {
				previews := make([]*dryrun.Preview, 0, len(each))
				for _, value := range each {
					plan, err := client.Plan(op.Name, argsFor(value), body)
					if err != nil {
						return fmt.Errorf("%s: %w", value, err)
					}
					previews = append(previews, previewOf(plan))
				}
				_, err := maybeDryRun(cmd, previews...)
				return err
			}

			ioStreams := iocontext.GetIO(cmd.Context())
			results := runBatch(cmdContext(cmd), each, concurrency, progress, ioStreams.ErrOut,
				func(ctx context.Context, value string) (json.RawMessage, error) {
					var result json.RawMessage
					err := client.Call(ctx, op.Name, argsFor(value), body, &result)
					return result, err
				})

			success, failure := countResults(results)
			if isJSON(cmd) {
				if err := printJSON(cmd, results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.Success {
						_, _ = fmt.Fprintf(ioStreams.Out, "%s\t%s\n", green("ok"), r.Value)
					} else {
						_, _ = fmt.Fprintf(ioStreams.Out, "%s\t%s\t%s\n", red("failed"), r.Value, r.Error)
					}
				}
				_, _ = fmt.Fprintf(ioStreams.Out, "%d succeeded, %d failed\n", success, failure)
			}
			if failure > 0 {
				return fmt.Errorf("%d of %d calls failed", failure, len(results))
			}
			return nil
		}),
	}

	cmd.Flags().StringSliceVar(&each, "each", nil, "Values to append as the last argument, comma separated (repeatable)")
	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Maximum requests in flight")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show progress on stderr")
	payload.register(cmd)
	flagAlias(cmd.Flags(), "concurrency", "cc")

	return cmd
}
