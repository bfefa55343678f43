package config

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/boulder-sim/boulder/api/rest/problem"
	csvc "github.com/boulder-sim/boulder/api/rest/service/config"
	"github.com/boulder-sim/boulder/internal/metrics"
	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/pkg/client"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	svc       csvc.Config
	engine    *client.ConfigsService
	maxUpload int64
}

// New returns a controller. engine may be nil; Python uploads then fail
// with 422.
func New(svc csvc.Config, engine *client.ConfigsService, maxUpload int64) *Controller {
	return &Controller{svc: svc, engine: engine, maxUpload: maxUpload}
}

type ParseRequest struct {
	YAML string `json:"yaml"`
}

type ConfigRequest struct {
	Config network.Configuration `json:"config"`
	YAML   string                `json:"yaml,omitempty"`
}

type ValidateResponse struct {
	Config network.Configuration `json:"config"`
}

type ExportResponse struct {
	YAML string `json:"yaml"`
}

type PreloadedResponse struct {
	Preloaded bool `json:"preloaded"`
	*client.Document
}

func (ctrl *Controller) Default(c echo.Context) error {
	doc, err := ctrl.svc.Default()
	if err != nil {
		count("default", "error")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	count("default", "ok")
	return c.JSON(http.StatusOK, doc)
}

func (ctrl *Controller) Preloaded(c echo.Context) error {
	doc, ok := ctrl.svc.Preloaded()
	if !ok {
		return c.JSON(http.StatusOK, PreloadedResponse{Preloaded: false})
	}
	return c.JSON(http.StatusOK, PreloadedResponse{Preloaded: true, Document: doc})
}

func (ctrl *Controller) Parse(c echo.Context) error {
	var req ParseRequest
	if err := c.Bind(&req); err != nil {
		return echo.ErrBadRequest.WithInternal(err)
	}

	doc, err := ctrl.svc.Parse(req.YAML)
	if err != nil {
		count("parse", "rejected")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	count("parse", "ok")
	return c.JSON(http.StatusOK, doc)
}

func (ctrl *Controller) Validate(c echo.Context) error {
	var req ConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.ErrBadRequest.WithInternal(err)
	}

	cfg, err := ctrl.svc.Validate(req.Config)
	if err != nil {
		count("validate", "rejected")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	count("validate", "ok")
	return c.JSON(http.StatusOK, ValidateResponse{Config: *cfg})
}

func (ctrl *Controller) Export(c echo.Context) error {
	var req ConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.ErrBadRequest.WithInternal(err)
	}

	text, err := ctrl.svc.Export(req.Config, req.YAML)
	if err != nil {
		count("export", "error")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	count("export", "ok")
	return c.JSON(http.StatusOK, ExportResponse{YAML: text})
}

func (ctrl *Controller) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file provided").SetInternal(err)
	}
	if fh.Filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "No filename provided")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	switch ext {
	case ".yaml", ".yml", ".py":
	default:
		count("upload", "rejected")
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported file type: "+ext+". Use .yaml, .yml, or .py")
	}
	if ctrl.maxUpload > 0 && fh.Size > ctrl.maxUpload {
		count("upload", "rejected")
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds upload limit")
	}

	f, err := fh.Open()
	if err != nil {
		return echo.ErrInternalServerError.WithInternal(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return echo.ErrInternalServerError.WithInternal(err)
	}

	if ext == ".py" {
		return ctrl.convert(c, fh.Filename, data)
	}

	doc, err := ctrl.svc.Parse(string(data))
	if err != nil {
		count("upload", "rejected")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	doc.Filename = fh.Filename
	count("upload", "ok")
	return c.JSON(http.StatusOK, doc)
}

// convert hands a Python script to the engine, the only party able to
// execute it.
func (ctrl *Controller) convert(c echo.Context, filename string, data []byte) error {
	if ctrl.engine == nil {
		count("upload", "rejected")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Python configurations require a simulation engine")
	}

	doc, err := ctrl.engine.Upload(c.Request().Context(), filename, data)
	if err != nil {
		count("upload", "error")
		return problem.Upstream(err)
	}
	count("upload", "ok")
	return c.JSON(http.StatusOK, doc)
}

func count(op, status string) {
	metrics.ConfigRequestsTotal.WithLabelValues(op, status).Inc()
}
