package config

import (
	"fmt"
	"strings"

	"github.com/boulder-sim/boulder/internal/stone"
	"github.com/spf13/cobra"
)

var lintPaths []string

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate reactor network configuration files",
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := stone.Collect(lintPaths)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(docs) == 0 {
			writeLine(cmd, out, "No configurations found.\n")
			return nil
		}

		var failed []string
		for _, doc := range docs {
			if doc.Err != nil {
				failed = append(failed, fmt.Sprintf("%s: %v", doc.Path, doc.Err))
				continue
			}
			writeLine(cmd, out, "ok  %s (%d nodes, %d connections)\n",
				doc.Path, len(doc.Config.Nodes), len(doc.Config.Connections))
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d configuration(s) invalid:\n%s", len(failed), len(docs), strings.Join(failed, "\n"))
		}

		writeLine(cmd, out, "Validated %d configuration(s)\n", len(docs))
		return nil
	},
}

func init() {
	lintCmd.Flags().StringSliceVarP(&lintPaths, "path", "p", nil, "Files, directories or globs of configurations (default: current directory)")
}
