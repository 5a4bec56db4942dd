package api

import (
	"errors"
	"net/http"
	"strings"

	models "TAPull/internal/domain/models"
	domrepo "TAPull/internal/domain/repository"
	"TAPull/internal/export"
	"TAPull/internal/service/ratelimit"
	"TAPull/internal/service/stockapi"
	"TAPull/internal/services/features"
	"TAPull/internal/usecase"
	xhttp "TAPull/pkg/http"
	xlogger "TAPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IndicatorsEchoHandler serves indicator tables over HTTP.
type IndicatorsEchoHandler struct {
	logger *xlogger.Logger
	uc     *usecase.IndicatorsUseCase
	source domrepo.PriceSource
	rl     *ratelimit.Limiter // nil disables limiting
}

func NewIndicatorsEchoHandler(
	logger *xlogger.Logger,
	uc *usecase.IndicatorsUseCase,
	source domrepo.PriceSource,
	rl *ratelimit.Limiter,
) *IndicatorsEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &IndicatorsEchoHandler{logger: logger, uc: uc, source: source, rl: rl}
}

func (h *IndicatorsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/indicators", h.Indicators)
}

// Indicators returns the indicator table for symbol between start_date and end_date,
// as JSON by default or as CSV with format=csv.
func (h *IndicatorsEchoHandler) Indicators(c echo.Context) error {
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.rl != nil && !h.rl.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	res, err := h.uc.Run(c.Request().Context(), usecase.RunParams{
		Symbol:    symbol,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.logger.Error("indicators usecase error",
			xlogger.String("symbol", symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	if req.Format == "csv" {
		body, err := export.CSV(res.Table)
		if err != nil {
			h.logger.Error("csv export failed", xlogger.Error(err))
			return xhttp.InternalServerErrorResponse(c)
		}
		return xhttp.CSVResponse(c, symbol+"_indicators.csv", body)
	}

	if !res.Cached {
		c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	}
	return xhttp.SuccessResponse(c, models.IndicatorsResponse{
		Symbol:  res.Symbol,
		Count:   res.Table.Len(),
		Columns: res.Table.Columns(),
		Rows:    res.Table.Rows(),
	})
}

// Health reports this service and the upstream data API.
func (h *IndicatorsEchoHandler) Health(c echo.Context) error {
	resp := xhttp.HealthResponse{Status: "ok", Upstream: map[string]string{"stock_api": "ok"}}
	if err := h.source.Health(c.Request().Context()); err != nil {
		resp.Status = "degraded"
		resp.Upstream["stock_api"] = err.Error()
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, resp)
	}
	return xhttp.SuccessResponse(c, resp)
}

func toAppError(err error) *xhttp.AppError {
	var (
		sde *stockapi.StockDataError
		se  *models.SchemaError
		oe  *features.OrderError
	)
	switch {
	case errors.As(err, &sde):
		switch sde.Kind {
		case stockapi.KindEmpty:
			return xhttp.NotFoundError(sde.Message).WithError(err)
		case stockapi.KindTimeout:
			return xhttp.GatewayTimeoutError(sde.Message).WithError(err)
		default:
			e := xhttp.BadGatewayError(sde.Message).WithError(err)
			if sde.Status != 0 {
				e.WithParam("upstream_status", sde.Status)
			}
			return e
		}
	case errors.As(err, &se):
		e := xhttp.UnprocessableError(se.Error()).WithError(err)
		if len(se.Missing) > 0 {
			e.WithParam("missing", se.Missing)
		}
		return e
	case errors.As(err, &oe):
		return xhttp.UnprocessableError(oe.Error()).WithError(err).WithParam("row", oe.Index)
	case errors.Is(err, models.ErrEmptyTable):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
