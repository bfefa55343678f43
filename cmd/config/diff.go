package config

import (
	"strings"

	"github.com/boulder-sim/boulder/internal/stone"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <current> <desired>",
	Short: "Show element changes between two configurations",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := load(args[0])
		if err != nil {
			return err
		}
		desired, err := load(args[1])
		if err != nil {
			return err
		}
		printDiff(cmd, stone.Compare(*desired, *current))
		return nil
	},
}

func printDiff(cmd *cobra.Command, diff stone.Diff) {
	out := cmd.OutOrStdout()

	if diff.Empty() {
		writeLine(cmd, out, "No changes detected.\n")
		return
	}

	if len(diff.Creates) > 0 {
		writeLine(cmd, out, "Creates:\n")
		for _, id := range diff.Creates {
			writeLine(cmd, out, "  - %s\n", id)
		}
		writeLine(cmd, out, "\n")
	}

	if len(diff.Updates) > 0 {
		writeLine(cmd, out, "Updates:\n")
		for _, upd := range diff.Updates {
			writeLine(cmd, out, "  - %s\n", upd.ID)
			writeLine(cmd, out, "%s\n", indent(upd.Diff, "    "))
		}
		writeLine(cmd, out, "\n")
	}

	if len(diff.Deletes) > 0 {
		writeLine(cmd, out, "Deletes:\n")
		for _, id := range diff.Deletes {
			writeLine(cmd, out, "  - %s\n", id)
		}
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
