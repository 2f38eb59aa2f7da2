package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/directus/directus-go/internal/iocontext"
	"github.com/directus/directus-go/internal/outfmt"
	"github.com/directus/directus-go/pkg/api"
)

type operationInfo struct {
	Name    string   `json:"name"`
	Method  string   `json:"method"`
	Path    string   `json:"path"`
	Root    string   `json:"root"`
	Params  []string `json:"params"`
	Payload string   `json:"payload"`
	Usage   string   `json:"usage"`
}

func newOpsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ops [filter]",
		Aliases: []string{"operations"},
		Short:   "List the operations accepted by 'call'",
		Example: strings.TrimSpace(`
  # All operations
  directus ops

  # Operations whose name contains "item"
  directus ops item

  # As JSON
  directus ops --json
`),
		Args: cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			var filter string
			if len(args) == 1 {
				filter = strings.ToLower(args[0])
			}

			var infos []operationInfo
			for _, op := range api.Operations() {
				if filter != "" && !strings.Contains(strings.ToLower(op.Name), filter) {
					continue
				}
				params := op.Params
				if params == nil {
					params = []string{}
				}
				infos = append(infos, operationInfo{
					Name:    op.Name,
					Method:  op.Method,
					Path:    op.Path,
					Root:    op.Root.String(),
					Params:  params,
					Payload: op.Payload.String(),
					Usage:   op.Usage(),
				})
			}

			ioStreams := iocontext.GetIO(cmd.Context())
			f := outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
			if !f.StartTable([]string{"OPERATION", "METHOD", "PATH", "USAGE"}) {
				if infos == nil {
					infos = []operationInfo{}
				}
				return f.Document(infos)
			}
			if len(infos) == 0 {
				f.Empty("No operations match " + args[0])
				return f.EndTable()
			}
			for _, info := range infos {
				path := info.Path
				if info.Root == api.RootAPI.String() {
					path = "/api/" + path
				}
				f.Row(info.Name, info.Method, path, info.Usage)
			}
			return f.EndTable()
		}),
	}
	return cmd
}
