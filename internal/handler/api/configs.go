package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"AssetCast/internal/domain/models"
	domrepo "AssetCast/internal/domain/repository"
	"AssetCast/internal/services/scheduler"
	xhttp "AssetCast/pkg/http"
	applogger "AssetCast/pkg/logger"
	"AssetCast/pkg/timeutil"
)

// ConfigsHandler exposes ModelConfig CRUD and forecast reads. The scheduler
// is never driven from here; it picks up config changes on its next poll.
type ConfigsHandler struct {
	store     domrepo.ConfigStore
	predicted domrepo.PredictedStore
	sched     *scheduler.Service
	l         *applogger.Logger
}

func NewConfigsHandler(store domrepo.ConfigStore, predicted domrepo.PredictedStore, sched *scheduler.Service, l *applogger.Logger) *ConfigsHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &ConfigsHandler{store: store, predicted: predicted, sched: sched, l: l}
}

func (h *ConfigsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/configs", h.List)
	g.POST("/configs", h.Put)
	g.GET("/configs/:id", h.Get)
	g.PUT("/configs/:id", h.Put)
	g.DELETE("/configs/:id", h.Delete)
	g.GET("/assets/:asset/attributes/:attribute/predictions", h.Predictions)
}

func (h *ConfigsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ConfigsHandler) Status(c echo.Context) error {
	jobs := 0
	if h.sched != nil {
		jobs = h.sched.JobCount()
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"jobs": jobs})
}

func (h *ConfigsHandler) List(c echo.Context) error {
	req := &models.ListConfigsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	configs, err := h.store.GetAll(c.Request().Context(), req.Realm)
	if err != nil {
		h.l.Error("list configs failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, configs, int64(len(configs)))
}

func (h *ConfigsHandler) Get(c echo.Context) error {
	cfg, err := h.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domrepo.ErrConfigNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("config %s not found", c.Param("id")))
		}
		h.l.Error("get config failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, cfg)
}

func (h *ConfigsHandler) Put(c echo.Context) error {
	req := &models.ConfigRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if verr := validateIntervals(req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cfg := req.ToConfig()
	if err := h.store.Put(c.Request().Context(), cfg); err != nil {
		h.l.Error("put config failed",
			applogger.String("config", cfg.ID), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.l.Info("config stored",
		applogger.String("config", cfg.ID),
		applogger.String("kind", string(cfg.Kind)),
		applogger.Bool("enabled", cfg.Enabled),
	)
	return xhttp.CreatedResponse(c, cfg)
}

func (h *ConfigsHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.Delete(c.Request().Context(), id); err != nil {
		h.l.Error("delete config failed",
			applogger.String("config", id), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.l.Info("config deleted", applogger.String("config", id))
	return xhttp.NoContentResponse(c)
}

func (h *ConfigsHandler) Predictions(c echo.Context) error {
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now := time.Now()
	from := xhttp.ParseTimeDefault(req.From, now)
	to := xhttp.ParseTimeDefault(req.To, now.Add(24*time.Hour))

	limit := xhttp.ParseIntDefault(req.Limit, 10000)

	points, err := h.predicted.GetPredicted(c.Request().Context(),
		req.AssetID, req.Attribute, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		h.l.Error("read predictions failed",
			applogger.String("asset", req.AssetID),
			applogger.String("attribute", req.Attribute),
			applogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	if len(points) > limit {
		points = points[:limit]
	}
	return xhttp.ListResponse(c, points, int64(len(points)))
}

// validateIntervals rejects configs whose schedule strings the scheduler
// could never arm.
func validateIntervals(req *models.ConfigRequest) []xhttp.ValidationError {
	var errs []xhttp.ValidationError
	for field, val := range map[string]string{
		"training_interval": req.TrainingInterval,
		"forecast_interval": req.ForecastInterval,
	} {
		if secs, err := timeutil.ParseDuration(val); err != nil || secs <= 0 {
			errs = append(errs, xhttp.ValidationError{
				Code:    "ERR_DURATION",
				Field:   field,
				Message: field + " must be a positive ISO-8601 duration",
			})
		}
	}
	if _, err := timeutil.ParseFrequency(req.ForecastFrequency); err != nil {
		errs = append(errs, xhttp.ValidationError{
			Code:    "ERR_FREQUENCY",
			Field:   "forecast_frequency",
			Message: "forecast_frequency must look like 15m, 1h or 1d",
		})
	}
	if req.Kind == models.ModelKindProphet && req.Prophet == nil {
		errs = append(errs, xhttp.ValidationError{
			Code: "ERR_VARIANT", Field: "prophet",
			Message: "prophet params are required for kind prophet",
		})
	}
	if req.Kind == models.ModelKindXGBoost && req.XGBoost == nil {
		errs = append(errs, xhttp.ValidationError{
			Code: "ERR_VARIANT", Field: "xgboost",
			Message: "xgboost params are required for kind xgboost",
		})
	}
	return errs
}
