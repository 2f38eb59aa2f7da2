package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/directus/directus-go/internal/dryrun"
	"github.com/directus/directus-go/internal/resolve"
	"github.com/directus/directus-go/internal/validation"
	"github.com/directus/directus-go/pkg/api"
)

// payloadFlags are the ways a command can supply a request payload.
type payloadFlags struct {
	data      string
	input     string
	fields    []string
	rawFields []string
	params    string
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.data, "data", "d", "", "Payload as inline JSON (object or array)")
	cmd.Flags().StringVarP(&p.input, "input", "i", "", "Read payload JSON from file (use - for stdin)")
	cmd.Flags().StringArrayVarP(&p.fields, "field", "f", nil, "Payload field as key=value (string)")
	cmd.Flags().StringArrayVarP(&p.rawFields, "raw-field", "F", nil, "Payload field as key=value (JSON parsed)")
	cmd.Flags().StringVarP(&p.params, "params", "p", "", "Payload fields as a bracket query string, e.g. 'filter[status][in]=published,draft'")
	flagAlias(cmd.Flags(), "data", "body")
	flagAlias(cmd.Flags(), "raw-field", "rf")
}

// build assembles the payload. It returns nil when no payload flag is set.
// Field flags are merged over a JSON object from --data or --input.
func (p *payloadFlags) build(cmd *cobra.Command) (any, error) {
	if p.data != "" && p.input != "" {
		return nil, fmt.Errorf("--data and --input cannot be used together")
	}

	var base any
	switch {
	case p.data != "":
		v, err := decodePayload([]byte(p.data), "--data")
		if err != nil {
			return nil, err
		}
		base = v
	case p.input != "":
		raw, err := readInput(cmd, p.input)
		if err != nil {
			return nil, err
		}
		v, err := decodePayload(raw, "--input")
		if err != nil {
			return nil, err
		}
		base = v
	}

	if len(p.fields) == 0 && len(p.rawFields) == 0 && p.params == "" {
		return base, nil
	}

	body, ok := base.(map[string]any)
	if base != nil && !ok {
		return nil, fmt.Errorf("--field, --raw-field and --params need a JSON object payload")
	}
	if body == nil {
		body = make(map[string]any)
	}

	if p.params != "" {
		decoded, err := api.DecodeQuery(p.params)
		if err != nil {
			return nil, fmt.Errorf("invalid --params: %w", err)
		}
		for k, v := range decoded {
			body[k] = v
		}
	}
	for _, field := range p.fields {
		key, value, err := parseField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}
	for _, field := range p.rawFields {
		key, value, err := parseRawField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}
	return body, nil
}

func decodePayload(raw []byte, source string) (any, error) {
	if err := validation.ValidateJSONPayload(raw); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", source, err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s JSON: %w", source, err)
	}
	return v, nil
}

// resolveOperation maps a typed name onto a catalog entry. Case-only
// differences are accepted; anything else fails with suggestions.
func resolveOperation(name string) (api.Operation, error) {
	resolved, err := resolve.Name(name, api.OperationNames())
	if err != nil {
		unknown := &api.UnknownOperationError{Name: name}
		var nf *resolve.NotFoundError
		if errors.As(err, &nf) && len(nf.Suggestions) > 0 {
			return api.Operation{}, fmt.Errorf("%w\n\nDid you mean: %s?", unknown, strings.Join(nf.Suggestions, ", "))
		}
		return api.Operation{}, unknown
	}
	op, _ := api.Lookup(resolved)
	return op, nil
}

func newCallCmd() *cobra.Command {
	var payload payloadFlags

	cmd := &cobra.Command{
		Use:     "call <operation> [args...]",
		Aliases: []string{"c"},
		Short:   "Run a named API operation",
		Long: strings.TrimSpace(`
Run one operation from the resource catalog. Positional arguments after the
operation name fill its parameters in order; run 'directus ops' to list them.

The payload becomes query parameters for GET operations (bracket notation, so
nested filters work) and the JSON body otherwise. Bulk operations take a JSON
array, which is sent as {"rows": [...]}.
`),
		Example: strings.TrimSpace(`
  # List rows of a table with a nested filter
  directus call getItems articles --params 'filter[status][in]=published,draft'

  # Fetch one row
  directus call getItem articles 12

  # Create a row
  directus call createItem articles -f title=Hello -F 'published=true'

  # Bulk insert from a file
  directus call createBulk articles --input rows.json

  # Filter the response
  directus call getItems articles --jq '.data[].title'

  # Show the request without sending it
  directus call deleteItem articles 12 --dry-run
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
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

			if dryrun.IsEnabled(cmd.Context()) {
				plan, err := client.Plan(op.Name, args[1:], body)
				if err != nil {
					return err
				}
				_, err = maybeDryRun(cmd, previewOf(plan))
				return err
			}

			var result json.RawMessage
			if err := client.Call(cmdContext(cmd), op.Name, args[1:], body, &result); err != nil {
				return err
			}
			return printResponse(cmd, result)
		}),
	}

	payload.register(cmd)
	return cmd
}

// printResponse writes a response body. Non-JSON bodies are printed verbatim.
func printResponse(cmd *cobra.Command, body json.RawMessage) error {
	if len(body) == 0 {
		return nil
	}
	if !json.Valid(body) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	}
	return printJSON(cmd, body)
}
