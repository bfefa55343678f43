package simulation

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/boulder-sim/boulder/api/rest/problem"
	"github.com/boulder-sim/boulder/api/rest/service/relay"
	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/internal/stone"
	"github.com/boulder-sim/boulder/pkg/log"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	relay *relay.Relay
	ping  time.Duration
}

// New returns a controller; ping is the keep-alive interval of streams.
func New(r *relay.Relay, ping time.Duration) *Controller {
	if ping <= 0 {
		ping = 15 * time.Second
	}
	return &Controller{relay: r, ping: ping}
}

type StartRequest struct {
	Config         network.Configuration `json:"config"`
	Mechanism      string                `json:"mechanism,omitempty"`
	SimulationTime float64               `json:"simulation_time"`
	TimeStep       float64               `json:"time_step"`
}

type StartResponse struct {
	SimulationID string `json:"simulation_id"`
}

type StopResponse struct {
	Stopped      bool   `json:"stopped"`
	SimulationID string `json:"simulation_id"`
}

type CleanupResponse struct {
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
}

func (ctrl *Controller) Post(c echo.Context) error {
	var req StartRequest
	if err := c.Bind(&req); err != nil {
		return echo.ErrBadRequest.WithInternal(err)
	}
	if err := stone.Validate(req.Config); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	run, err := ctrl.relay.Start(c.Request().Context(), req.Config, simulation.Params{
		Duration:  req.SimulationTime,
		TimeStep:  req.TimeStep,
		Mechanism: req.Mechanism,
	})
	if err != nil {
		return relayError(err, "")
	}
	return c.JSON(http.StatusOK, StartResponse{SimulationID: run.ID})
}

func (ctrl *Controller) List(c echo.Context) error {
	return c.JSON(http.StatusOK, ctrl.relay.List())
}

func (ctrl *Controller) Results(c echo.Context) error {
	id := c.Param("id")
	cleanup, _ := strconv.ParseBool(c.QueryParam("cleanup"))

	res, err := ctrl.relay.Results(c.Request().Context(), id, cleanup)
	if err != nil {
		return relayError(err, id)
	}
	return c.JSON(http.StatusOK, res)
}

func (ctrl *Controller) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := ctrl.relay.Stop(c.Request().Context(), id); err != nil {
		if errors.Is(err, relay.ErrNotFound) || errors.Is(err, relay.ErrNoEngine) {
			return relayError(err, id)
		}
		log.Warn("simulation forgotten without upstream stop", "simulation_id", id, "error", err)
	}
	return c.JSON(http.StatusOK, StopResponse{Stopped: true, SimulationID: id})
}

func (ctrl *Controller) Cleanup(c echo.Context) error {
	maxAge := time.Duration(-1)
	if raw := c.QueryParam("max_age_seconds"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "max_age_seconds must be a non-negative integer")
		}
		maxAge = time.Duration(secs) * time.Second
	}

	removed, remaining := ctrl.relay.Cleanup(maxAge)
	return c.JSON(http.StatusOK, CleanupResponse{Removed: removed, Remaining: remaining})
}

func (ctrl *Controller) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	sub, err := ctrl.relay.Stream(ctx, id)
	if err != nil {
		return relayError(err, id)
	}
	defer sub.Close()

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")

	if _, err := fmt.Fprintf(c.Response(), ": ping\n\n"); err != nil {
		return nil
	}
	c.Response().Flush()

	ticker := time.NewTicker(ctrl.ping)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprintf(c.Response(), ": ping\n\n"); err != nil {
				return nil
			}
			c.Response().Flush()
		case ev, ok := <-sub.Events():
			if !ok {
				if err := sub.Err(); err != nil {
					log.Warn("upstream stream ended", "simulation_id", id, "error", err)
				}
				return nil
			}

			ctrl.relay.Observe(id, ev.Type)
			if _, err := fmt.Fprint(c.Response(), encode(ev)); err != nil {
				return nil
			}
			c.Response().Flush()

			if ev.Type == simulation.EventComplete || ev.Type == simulation.EventError {
				return nil
			}
		}
	}
}

// encode writes ev as one SSE frame, one data line per payload line.
func encode(ev simulation.Event) string {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(string(ev.Type))
	b.WriteByte('\n')
	for _, line := range strings.Split(string(ev.Data), "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

func relayError(err error, id string) error {
	switch {
	case errors.Is(err, relay.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Simulation "+id+" not found")
	case errors.Is(err, relay.ErrNoEngine):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return problem.Upstream(err)
	}
}
