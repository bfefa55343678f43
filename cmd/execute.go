package cmd

import (
	"github.com/boulder-sim/boulder/cmd/config"
	"github.com/boulder-sim/boulder/cmd/console"
	"github.com/boulder-sim/boulder/cmd/run"
	"github.com/boulder-sim/boulder/cmd/start"
	"github.com/spf13/cobra"
)

var cmds = []*cobra.Command{
	start.Cmd,
	console.Cmd,
	config.Cmd,
	run.Cmd,
}

// Execute builds the command tree and executes commands.
func Execute() error {
	command := &cobra.Command{
		Use:          "boulder",
		Short:        "Author and simulate chemical reactor networks",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}

	for _, c := range cmds {
		command.AddCommand(c)
	}

	return command.Execute()
}
