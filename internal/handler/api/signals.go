package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"CryptoSignal/internal/domain/models"
	"CryptoSignal/internal/service/metrics"
	"CryptoSignal/internal/services/analyzers"
	"CryptoSignal/internal/services/indicators"
	"CryptoSignal/internal/usecase"
	xhttp "CryptoSignal/pkg/http"
	applogger "CryptoSignal/pkg/logger"
)

// SignalsHandler serves the analysis, prediction, indicator and advisor
// endpoints under /api.
type SignalsHandler struct {
	insights *usecase.InsightsUseCase
	advisor  *usecase.AdvisorUseCase
	scanner  *usecase.Scanner
	l        *applogger.Logger
}

var _ xhttp.Handler = (*SignalsHandler)(nil)

func NewSignalsHandler(insights *usecase.InsightsUseCase, advisor *usecase.AdvisorUseCase, l *applogger.Logger) *SignalsHandler {
	metrics.Register()
	if l == nil {
		l = applogger.Nop()
	}
	return &SignalsHandler{insights: insights, advisor: advisor, l: l}
}

// SetScanner exposes the scanner's latest reports on /api/latest.
func (h *SignalsHandler) SetScanner(s *usecase.Scanner) { h.scanner = s }

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
	g.POST("/analyze", h.AnalyzeSeries)
	g.POST("/predict", h.Predict)
	g.POST("/indicators", h.Indicators)
	g.GET("/insights", h.Insights)
	g.GET("/advice", h.Advice)
	g.POST("/advice", h.Advice)
	g.GET("/history", h.History)
	if h.scanner != nil {
		g.GET("/latest", h.Latest)
	}
}

// IndicatorsResponse carries raw indicator series with the basic RSI/MA calls.
type IndicatorsResponse struct {
	Indicators indicators.Snapshot `json:"indicators"`
	Signals    models.BasicSignals `json:"signals"`
}

// Analyze fetches market data for a coin and returns the fused report.
func (h *SignalsHandler) Analyze(c echo.Context) error {
	defer observe("analyze", time.Now())
	req := &models.CoinRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "analyze", verr)
	}
	report, err := h.insights.Report(c.Request().Context(), req.Coin, req.Timeframe)
	if err != nil {
		return h.fail(c, "analyze", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, report)
}

// AnalyzeSeries runs the pipeline over candles posted by the caller.
func (h *SignalsHandler) AnalyzeSeries(c echo.Context) error {
	defer observe("analyze_series", time.Now())
	req := &models.AnalyzeSeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "analyze_series", verr)
	}
	report, err := h.insights.AnalyzeCandles(c.Request().Context(), req.Symbol, req.Timeframe, req.Candles)
	if err != nil {
		return h.fail(c, "analyze_series", err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *SignalsHandler) Predict(c echo.Context) error {
	defer observe("predict", time.Now())
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "predict", verr)
	}
	res := h.insights.Generator().PredictLookback(c.Request().Context(), req.Candles, req.Lookback)
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Indicators(c echo.Context) error {
	defer observe("indicators", time.Now())
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "indicators", verr)
	}
	p := h.insights.Generator().Params()
	p.Window = req.Window
	p.RSIPeriod = req.Window
	snap := indicators.Compute(req.Candles, p)
	return xhttp.SuccessResponse(c, IndicatorsResponse{
		Indicators: snap,
		Signals:    analyzers.BasicSignals(snap.Closes, req.Window),
	})
}

func (h *SignalsHandler) Insights(c echo.Context) error {
	defer observe("insights", time.Now())
	req := &models.CoinRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "insights", verr)
	}
	out, err := h.insights.Insights(c.Request().Context(), req.Coin, req.Timeframe)
	if err != nil {
		return h.fail(c, "insights", err)
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *SignalsHandler) Advice(c echo.Context) error {
	defer observe("advice", time.Now())
	req := &models.AdviceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "advice", verr)
	}
	out, err := h.advisor.Advise(c.Request().Context(), usecase.AdviceParams{
		Coin:      req.Coin,
		Timeframe: req.Timeframe,
		Methods:   req.Methods,
	})
	if err != nil {
		return h.fail(c, "advice", err)
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *SignalsHandler) History(c echo.Context) error {
	defer observe("history", time.Now())
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "history", verr)
	}
	reports, err := h.insights.History(c.Request().Context(), req.Coin, req.Limit)
	if err != nil {
		return h.fail(c, "history", err)
	}
	if reports == nil {
		reports = []models.SignalReport{}
	}
	return xhttp.SuccessResponse(c, reports)
}

// Latest returns the most recent scanner report for a coin.
func (h *SignalsHandler) Latest(c echo.Context) error {
	coin := c.QueryParam("coin")
	if coin == "" {
		return h.fail(c, "latest", xhttp.BadRequestError("coin required").WithParam("field", "coin"))
	}
	report, ok := h.scanner.Latest(coin)
	if !ok {
		return h.fail(c, "latest", xhttp.NotFoundError("no scan result for "+coin))
	}
	return xhttp.SuccessResponse(c, report)
}

func observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (h *SignalsHandler) invalid(c echo.Context, endpoint string, verr []xhttp.ValidationError) error {
	metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
	h.l.Debug("request rejected", applogger.String("endpoint", endpoint), applogger.Int("errors", len(verr)))
	return xhttp.ValidationErrorResponse(c, verr)
}

func (h *SignalsHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.l.Error("signals usecase error", applogger.String("endpoint", endpoint), applogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps domain errors onto HTTP statuses.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrInvalidParameter),
		errors.Is(err, models.ErrUnsupportedTimeframe),
		errors.Is(err, models.ErrInsufficientData):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrNoData):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("signal generation failed").WithError(err)
	}
}
