package mechanism

import (
	"net/http"

	"github.com/boulder-sim/boulder/api/rest/problem"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/pkg/client"
	"github.com/labstack/echo/v4"
)

// Fallback is served when no engine is attached.
var Fallback = []client.Mechanism{{Label: "GRI-Mech 3.0", Value: simulation.DefaultMechanism}}

type Controller struct {
	engine *client.Client
}

func New(engine *client.Client) *Controller {
	return &Controller{engine: engine}
}

func (ctrl *Controller) List(c echo.Context) error {
	if ctrl.engine == nil {
		return c.JSON(http.StatusOK, Fallback)
	}
	out, err := ctrl.engine.Mechanisms(c.Request().Context())
	if err != nil {
		return problem.Upstream(err)
	}
	return c.JSON(http.StatusOK, out)
}
