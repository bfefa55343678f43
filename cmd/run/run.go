package run

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boulder-sim/boulder/cmd/console/config"
	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/results"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/internal/stone"
	"github.com/boulder-sim/boulder/pkg/client"
	"github.com/boulder-sim/boulder/pkg/env"
	"github.com/boulder-sim/boulder/pkg/log"
	"github.com/spf13/cobra"
)

const (
	usage   = "run <file>"
	short   = "Simulate a reactor network without the console"
	long    = "This command submits a configuration to the gateway, follows its progress and prints the summary"
	example = "boulder run network.yaml --time 2 --step 0.01"
)

var (
	duration  float64
	timeStep  float64
	mechanism string
	codePath  string

	// Cmd is the run command.
	Cmd = &cobra.Command{
		Use:     usage,
		Short:   short,
		Long:    long,
		Aliases: []string{"r"},
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    run,
	}
)

func init() {
	Cmd.Flags().Float64Var(&duration, "time", 0, "Simulated time in seconds (default: BOULDER_SIMULATIONTIME)")
	Cmd.Flags().Float64Var(&timeStep, "step", 0, "Reporting step in seconds (default: BOULDER_TIMESTEP)")
	Cmd.Flags().StringVar(&mechanism, "mechanism", "", "Mechanism file (default: BOULDER_MECHANISM, phases.gas.mechanism, then the engine default)")
	Cmd.Flags().StringVar(&codePath, "code", "", "Write the generated simulation script to this file")
}

func run(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	cfg, err := stone.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	clientCfg, err := config.Load()
	if err != nil {
		return err
	}
	c := client.New(clientCfg.BaseURL, clientCfg.HTTPTimeout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params := resolveFlags(cmd)
	snap, err := Simulate(ctx, c.Simulations(), *cfg, params, progressPrinter(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch snap.State {
	case simulation.Failed:
		return fmt.Errorf("simulation failed: %s", snap.Error)
	case simulation.Completed:
	default:
		return fmt.Errorf("simulation ended %s", snap.State)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, results.RenderSummary(results.Summary(snap.Results)))
	fmt.Fprintf(out, "\nelapsed %.2fs\n", snap.Results.ElapsedTime)

	if codePath != "" {
		code := results.Code(snap.Results, args[0], time.Now())
		if err := os.WriteFile(codePath, []byte(code), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", codePath, err)
		}
		fmt.Fprintf(out, "generated code written to %s\n", codePath)
	}
	return nil
}

// resolveFlags overlays explicit flags on the environment defaults.
func resolveFlags(cmd *cobra.Command) simulation.Params {
	vars := env.Variables()
	p := simulation.Params{Duration: vars.SimulationTime, TimeStep: vars.TimeStep, Mechanism: vars.Mechanism}
	if cmd.Flags().Changed("time") {
		p.Duration = duration
	}
	if cmd.Flags().Changed("step") {
		p.TimeStep = timeStep
	}
	if cmd.Flags().Changed("mechanism") {
		p.Mechanism = mechanism
	}
	return p
}

// Simulate runs cfg on engine to a terminal state.
func Simulate(ctx context.Context, engine simulation.Engine, cfg network.Configuration, p simulation.Params, onUpdate func(simulation.Snapshot)) (simulation.Snapshot, error) {
	runner := simulation.NewRunner(engine)
	snap, err := runner.Run(ctx, cfg, p, onUpdate)
	if err != nil {
		log.Error("simulation run failed", "error", err)
		return snap, err
	}
	return snap, nil
}

func progressPrinter(cmd *cobra.Command) func(simulation.Snapshot) {
	last := -1
	return func(snap simulation.Snapshot) {
		if snap.State != simulation.Running || snap.Progress == nil {
			return
		}
		pct := int(percent(snap) * 100)
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(cmd.ErrOrStderr(), "\rrunning %s  t=%.4gs  %3d%%", snap.ID, snap.Progress.CurrentTime, pct)
	}
}

func percent(snap simulation.Snapshot) float64 {
	total := snap.Progress.TotalTime
	if total <= 0 {
		total = snap.Params.Duration
	}
	if total <= 0 {
		return 0
	}
	f := snap.Progress.CurrentTime / total
	if f > 1 {
		return 1
	}
	return f
}
