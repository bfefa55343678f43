package console

import (
	"os"
	"path/filepath"

	"github.com/boulder-sim/boulder/cmd/console/app"
	"github.com/boulder-sim/boulder/cmd/console/config"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/pkg/client"
	"github.com/boulder-sim/boulder/pkg/env"
	"github.com/boulder-sim/boulder/pkg/log"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const (
	usage   = "console"
	short   = "Open the interactive reactor-network console"
	long    = "This command starts the interactive Boulder console for authoring and simulating reactor networks"
	example = "boulder console\nboulder console --offline"
)

var offline bool

// Cmd is the Cobra command entrypoint.
var Cmd = &cobra.Command{
	Use:        usage,
	Short:      short,
	Long:       long,
	Aliases:    []string{"c"},
	SuggestFor: []string{"tui", "terminal", "ui"},
	Example:    example,
	RunE:       run,
}

func init() {
	Cmd.Flags().BoolVar(&offline, "offline", false, "Author configurations in-process without a gateway (simulations disabled)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	vars := env.Variables()
	logFile := vars.LogFile
	if logFile == "" {
		logFile = filepath.Join(os.TempDir(), "boulder-console.log")
	}
	if err := log.SetOutput(logFile); err != nil {
		return err
	}
	defer func() { _ = log.SetOutput(vars.LogFile) }()

	var deps app.Deps
	if offline {
		deps = app.Offline(vars.ConfigPath)
	} else {
		deps = app.Remote(client.New(cfg.BaseURL, cfg.HTTPTimeout))
	}
	deps.Theme = cfg.Theme
	deps.Params = simulation.Params{
		Duration:  vars.SimulationTime,
		TimeStep:  vars.TimeStep,
		Mechanism: vars.Mechanism,
	}

	log.Info("console starting", "base_url", cfg.BaseURL.String(), "offline", offline)

	model := app.New(deps)
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(app.Model); ok {
		m.Close()
	} else {
		model.Close()
	}
	return err
}
