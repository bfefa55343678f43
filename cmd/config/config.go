package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Cmd is the parent command for configuration file operations.
var Cmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg"},
	Short:   "Inspect reactor network configuration files",
}

func init() {
	Cmd.AddCommand(lintCmd, exportCmd, diffCmd)
}

func writeLine(cmd *cobra.Command, w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		cmd.PrintErrf("write output: %v\n", err)
	}
}
