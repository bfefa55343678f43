package bind

import (
	"github.com/boulder-sim/boulder/api/rest/controller/config"
	"github.com/boulder-sim/boulder/api/rest/controller/mechanism"
	"github.com/boulder-sim/boulder/api/rest/controller/plugin"
	"github.com/boulder-sim/boulder/api/rest/controller/simulation"
	"github.com/labstack/echo/v4"
)

// Controllers are the route handlers bound under /api.
type Controllers struct {
	Config     *config.Controller
	Plugin     *plugin.Controller
	Mechanism  *mechanism.Controller
	Simulation *simulation.Controller
}

func All(g *echo.Group, ctrl Controllers) {
	Configs(g.Group("/configs"), ctrl.Config)
	Plugins(g.Group("/plugins"), ctrl.Plugin)
	Simulations(g.Group("/simulations"), ctrl.Simulation)
	g.GET("/mechanisms", ctrl.Mechanism.List)
}

func Configs(g *echo.Group, ctrl *config.Controller) {
	g.GET("/default", ctrl.Default)
	g.GET("/preloaded", ctrl.Preloaded)
	g.POST("/parse", ctrl.Parse)
	g.POST("/validate", ctrl.Validate)
	g.POST("/export", ctrl.Export)
	g.POST("/upload", ctrl.Upload)
}

func Plugins(g *echo.Group, ctrl *plugin.Controller) {
	g.GET("", ctrl.List)
	g.POST("/:id/render", ctrl.Render)
}

func Simulations(g *echo.Group, ctrl *simulation.Controller) {
	g.POST("", ctrl.Post)
	g.GET("", ctrl.List)
	g.POST("/cleanup", ctrl.Cleanup)
	g.GET("/:id/stream", ctrl.Stream)
	g.GET("/:id/results", ctrl.Results)
	g.DELETE("/:id", ctrl.Delete)
}
