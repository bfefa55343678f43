package start

import (
	"context"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/boulder-sim/boulder/api"
	"github.com/boulder-sim/boulder/pkg/log"
	"github.com/spf13/cobra"
)

const (
	usage   = "start"
	short   = "Start a Boulder gateway"
	long    = "This command starts the gateway serving configurations, plugins and relayed simulation streams"
	example = "BOULDER_ENGINEURL=http://engine:8000 boulder start"
)

var (
	// Cmd is the start command.
	Cmd = &cobra.Command{
		Use:        usage,
		Short:      short,
		Long:       long,
		Aliases:    []string{"s"},
		SuggestFor: []string{"launch", "boot", "up", "serve", "gateway"},
		Example:    example,
		RunE:       start,
	}
)

var cancel context.CancelFunc

func start(cmd *cobra.Command, args []string) error {
	signalChan := make(chan os.Signal, 1)

	go func() {
		for s := range signalChan {
			switch s {
			case syscall.SIGUSR1:
				log.Info("dumping stack traces due to SIGUSR1 signal")
				if profile := pprof.Lookup("goroutine"); profile != nil {
					if err := profile.WriteTo(os.Stdout, 1); err != nil {
						log.Error("write goroutine profile", "error", err)
					}
				}
			case syscall.SIGINT, syscall.SIGTERM:
				log.Info("gracefully shutting down", "signal", s.String())
				shutdown()
			}
		}
	}()

	signal.Notify(signalChan, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	ctx, cancelFunc := context.WithCancel(context.Background())
	cancel = cancelFunc
	defer shutdown()

	log.Info("spinning up gateway")
	return api.Start(ctx)
}

func shutdown() {
	if cancel != nil {
		cancel()
	}
	if err := api.Shutdown(); err != nil {
		log.Error("api shutdown failure", "error", err)
	}
}
