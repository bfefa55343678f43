package plugin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/boulder-sim/boulder/internal/metrics"
	"github.com/boulder-sim/boulder/internal/plugin"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	registry *plugin.Registry
}

func New(registry *plugin.Registry) *Controller {
	return &Controller{registry: registry}
}

func (ctrl *Controller) List(c echo.Context) error {
	return c.JSON(http.StatusOK, ctrl.registry.List())
}

func (ctrl *Controller) Render(c echo.Context) error {
	id := c.Param("id")

	var req plugin.Context
	if err := c.Bind(&req); err != nil {
		return echo.ErrBadRequest.WithInternal(err)
	}
	if req.Theme == "" {
		req.Theme = "light"
	}

	res, err := ctrl.registry.Render(id, req)
	if err != nil {
		if errors.Is(err, plugin.ErrUnknownPlugin) {
			return echo.NewHTTPError(http.StatusNotFound, "Plugin '"+id+"' not found")
		}
		return echo.ErrInternalServerError.WithInternal(err)
	}

	metrics.PluginRendersTotal.WithLabelValues(id, strconv.FormatBool(res.Available)).Inc()
	return c.JSON(http.StatusOK, res)
}
