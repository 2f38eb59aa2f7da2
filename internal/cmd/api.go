package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/directus/directus-go/pkg/api"
)

func newAPICmd() *cobra.Command {
	var (
		method  string
		root    string
		silent  bool
		payload payloadFlags
	)

	cmd := &cobra.Command{
		Use:     "api <endpoint>",
		Aliases: []string{"ap"},
		Short:   "Make raw API requests to any Directus endpoint",
		Long: `Make raw API requests to any Directus endpoint.

The endpoint is relative to the versioned root by default:
  <url>/api/<version>/<endpoint>

With --root api it is relative to the API root instead, which is where
version-independent endpoints such as server/info live:
  <url>/api/<endpoint>

For GET requests the payload is sent as a bracket-notation query string.`,
		Example: `  # GET a table's rows
  directus api tables/articles/rows

  # Nested filter as query parameters
  directus api tables/articles/rows -p 'filter[status][eq]=published'

  # POST with fields
  directus api tables/articles/rows -X POST -f title=Hello

  # Server info from the API root
  directus api server/info --root api

  # Delete silently
  directus api tables/articles/rows/12 -X DELETE --silent`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			endpoint := strings.TrimPrefix(args[0], "/")

			method = strings.ToUpper(method)
			switch method {
			case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
			default:
				return fmt.Errorf("invalid HTTP method %q: must be one of GET, POST, PUT, DELETE", method)
			}

			var target api.Root
			switch strings.ToLower(root) {
			case "", "versioned":
				target = api.RootVersioned
			case "api":
				target = api.RootAPI
			default:
				return fmt.Errorf("invalid --root %q: must be versioned or api", root)
			}

			body, err := payload.build(cmd)
			if err != nil {
				return err
			}

			var params map[string]any
			if method == http.MethodGet && body != nil {
				m, ok := body.(map[string]any)
				if !ok {
					return fmt.Errorf("GET parameters must be a JSON object")
				}
				params = m
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			planned := body
			if method == http.MethodGet {
				planned = params
			}
			if ok, err := maybeDryRun(cmd, previewOf(client.PlanRequest(method, endpoint, target, planned))); ok || err != nil {
				return err
			}

			ctx := cmdContext(cmd)
			var result json.RawMessage
			switch method {
			case http.MethodGet:
				err = client.Get(ctx, endpoint, params, target, &result)
			case http.MethodPost:
				err = client.Post(ctx, endpoint, body, target, &result)
			case http.MethodPut:
				err = client.Put(ctx, endpoint, body, target, &result)
			case http.MethodDelete:
				err = client.Delete(ctx, endpoint, body, target, &result)
			}
			if err != nil {
				return err
			}

			if silent {
				return nil
			}
			return printResponse(cmd, result)
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method (GET, POST, PUT, DELETE)")
	cmd.Flags().StringVar(&root, "root", "versioned", "Base path: versioned (/api/<version>/) or api (/api/)")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Suppress output")
	payload.register(cmd)

	return cmd
}
