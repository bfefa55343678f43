package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/boulder-sim/boulder/api/rest/bind"
	cfgctrl "github.com/boulder-sim/boulder/api/rest/controller/config"
	"github.com/boulder-sim/boulder/api/rest/controller/mechanism"
	plugctrl "github.com/boulder-sim/boulder/api/rest/controller/plugin"
	simctrl "github.com/boulder-sim/boulder/api/rest/controller/simulation"
	"github.com/boulder-sim/boulder/api/rest/problem"
	csvc "github.com/boulder-sim/boulder/api/rest/service/config"
	"github.com/boulder-sim/boulder/api/rest/service/relay"
	"github.com/boulder-sim/boulder/internal/metrics"
	"github.com/boulder-sim/boulder/internal/plugin"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/pkg/client"
	"github.com/boulder-sim/boulder/pkg/env"
	"github.com/boulder-sim/boulder/pkg/log"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Options configure the gateway.
type Options struct {
	// Engine is the upstream simulation engine; nil disables simulations
	// and Python uploads.
	Engine         *client.Client
	ConfigPath     string
	StreamPing     time.Duration
	MaxUploadBytes int64
	Plugins        *plugin.Registry
}

// New builds the gateway without starting it.
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = problem.Handler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug("request", "method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	registry := opts.Plugins
	if registry == nil {
		registry = plugin.Builtins()
	}

	var (
		engine  simulation.Engine
		configs *client.ConfigsService
	)
	if opts.Engine != nil {
		engine = opts.Engine.Simulations()
		configs = opts.Engine.Configs()
	}

	relayed := relay.New(engine)
	g := e.Group("/api")

	// health
	g.GET("/health", Health(relayed))

	// REST
	bind.All(g, bind.Controllers{
		Config:     cfgctrl.New(csvc.Service(opts.ConfigPath), configs, opts.MaxUploadBytes),
		Plugin:     plugctrl.New(registry),
		Mechanism:  mechanism.New(opts.Engine),
		Simulation: simctrl.New(relayed, opts.StreamPing),
	})

	return e
}

var (
	mu     sync.Mutex
	server *echo.Echo
)

// Start launches Boulder's gateway from the process environment. It
// returns once the server is shut down or ctx is cancelled.
func Start(ctx context.Context) error {
	vars := env.Variables()

	opts := Options{
		ConfigPath:     vars.ConfigPath,
		StreamPing:     vars.StreamPing,
		MaxUploadBytes: vars.MaxUploadBytes,
	}
	if vars.EngineURL != "" {
		u, err := url.Parse(vars.EngineURL)
		if err != nil {
			return fmt.Errorf("invalid engine url %q: %w", vars.EngineURL, err)
		}
		opts.Engine = client.New(u, vars.EngineTimeout)
		log.Info("relaying simulations", "engine", u.String())
	} else {
		log.Warn("no simulation engine configured; simulation routes answer 503")
	}

	e := New(opts)

	// metrics
	metrics.Register()
	prometheus.NewPrometheus("boulder", nil).Use(e)

	mu.Lock()
	server = e
	mu.Unlock()

	go func() {
		<-ctx.Done()
		if err := Shutdown(); err != nil {
			log.Error("gateway shutdown failure", "error", err)
		}
	}()

	log.Info("starting gateway", "port", vars.Port)
	if err := e.Start(fmt.Sprintf(":%v", vars.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a gateway started with Start. Open simulation
// streams are given five seconds to drain.
func Shutdown() error {
	mu.Lock()
	e := server
	server = nil
	mu.Unlock()
	if e == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
