package config

import (
	"fmt"
	"os"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/stone"
	"github.com/spf13/cobra"
)

var (
	exportOutput   string
	exportComments bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Rewrite a configuration in canonical STONE form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		cfg, err := stone.Parse(src)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if !exportComments {
			src = nil
		}
		data, err := stone.ExportWithComments(*cfg, src)
		if err != nil {
			return err
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOutput, err)
		}
		writeLine(cmd, cmd.ErrOrStderr(), "Wrote %s\n", exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().BoolVar(&exportComments, "comments", true, "Keep the comments of the source file")
}

func load(path string) (*network.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := stone.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
