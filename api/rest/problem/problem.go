// Package problem maps errors to HTTP errors and renders them in the
// {"detail": "..."} shape clients expect.
package problem

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/boulder-sim/boulder/pkg/client"
	"github.com/boulder-sim/boulder/pkg/log"
	"github.com/labstack/echo/v4"
)

// Body is the error response.
type Body struct {
	Detail string `json:"detail"`
}

// Upstream converts an engine error. Engine status codes pass through;
// an unreachable engine is a 502.
func Upstream(err error) *echo.HTTPError {
	var serr *client.StatusError
	switch {
	case errors.As(err, &serr):
		return echo.NewHTTPError(serr.Code, serr.Detail).SetInternal(err)
	case errors.Is(err, client.ErrTransport):
		return echo.NewHTTPError(http.StatusBadGateway, "simulation engine unreachable").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

// Handler is an echo.HTTPErrorHandler writing Body.
func Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail = fmt.Sprint(he.Message)
		if he.Internal != nil {
			log.Debug("request failed", "path", c.Path(), "status", code, "error", he.Internal)
		}
	} else {
		log.Error("unhandled request error", "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, Body{Detail: detail})
	}
	if err != nil {
		log.Error("failed to write error response", "error", err)
	}
}
