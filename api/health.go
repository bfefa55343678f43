package api

import (
	"net/http"
	"time"

	"github.com/boulder-sim/boulder/api/rest/service/relay"
	"github.com/labstack/echo/v4"
)

var startedAt = time.Now()

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status      Status        `json:"status"`
	Uptime      time.Duration `json:"uptime"`
	Engine      bool          `json:"engine"`
	Simulations int           `json:"simulations"`
}

// Status enumerates the health statuses of the gateway.
type Status string

// Healthy means the gateway answers. A missing engine only disables the
// simulation routes and is reported separately.
const Healthy Status = "healthy"

// Health reports uptime, whether an engine is relayed and how many
// simulations the relay tracks.
func Health(r *relay.Relay) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:      Healthy,
			Uptime:      time.Since(startedAt),
			Engine:      r.Configured(),
			Simulations: len(r.List()),
		})
	}
}
