package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	models "SignalPull/internal/domain/models"
	drepo "SignalPull/internal/domain/repository"
	"SignalPull/internal/services/indicators"
	"SignalPull/internal/usecase"
	xhttp "SignalPull/pkg/http"
	xlogger "SignalPull/pkg/logger"
)

// SignalsEchoHandler exposes the signal, market-data and administrative
// endpoints over Echo.
type SignalsEchoHandler struct {
	logger      *xlogger.Logger
	signals     *usecase.SignalAggregator
	market      *usecase.MarketDataAggregator
	predictions *usecase.PredictionRegistry
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	signals *usecase.SignalAggregator,
	market *usecase.MarketDataAggregator,
	predictions *usecase.PredictionRegistry,
) *SignalsEchoHandler {
	return &SignalsEchoHandler{
		logger:      logger,
		signals:     signals,
		market:      market,
		predictions: predictions,
	}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signal", h.Signal)
	g.POST("/signals/batch", h.BatchSignals)
	g.GET("/market", h.MarketData)
	g.GET("/indicators", h.Indicators)
	g.GET("/providers", h.Providers)
	g.GET("/cache/stats", h.CacheStats)
	g.DELETE("/cache", h.ClearCache)
	g.POST("/predictions", h.IngestPrediction)
}

func (h *SignalsEchoHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.signals.GenerateTradeSignals(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.mapError(c, err, "signal generation failed")
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *SignalsEchoHandler) BatchSignals(c echo.Context) error {
	req := &models.BatchSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	results := h.signals.GetBatchSignals(c.Request().Context(), req.Symbols)
	return xhttp.SuccessResponse(c, results)
}

func (h *SignalsEchoHandler) MarketData(c echo.Context) error {
	req := &models.MarketDataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	md, err := h.market.GetMarketData(c.Request().Context(), req.Symbol, drepo.NormalizePeriod(req.Period))
	if err != nil {
		return h.mapError(c, err, "market data fetch failed")
	}
	return xhttp.SuccessResponse(c, md)
}

func (h *SignalsEchoHandler) Indicators(c echo.Context) error {
	req := &models.MarketDataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	period := drepo.NormalizePeriod(req.Period)
	md, err := h.market.GetMarketData(c.Request().Context(), req.Symbol, period)
	if err != nil {
		return h.mapError(c, err, "market data fetch failed")
	}

	// nil indicators means the history is shorter than the engine minimum
	set := indicators.CalculateAll(md.Historical)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol":     md.Symbol,
		"period":     string(period),
		"bars":       len(md.Historical),
		"indicators": set,
	})
}

func (h *SignalsEchoHandler) Providers(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.market.ProviderStatus())
}

func (h *SignalsEchoHandler) CacheStats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.market.CacheStats())
}

func (h *SignalsEchoHandler) ClearCache(c echo.Context) error {
	h.market.ClearCache()
	h.logger.Info("market data cache cleared")
	return xhttp.NoContentResponse(c)
}

func (h *SignalsEchoHandler) IngestPrediction(c echo.Context) error {
	req := &models.PredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	h.predictions.Put(&models.Prediction{
		Symbol:     req.Symbol,
		Payload:    req.Payload,
		Source:     req.Source,
		ReceivedAt: time.Now(),
	})
	return xhttp.NoContentResponse(c)
}

// mapError converts usecase failures into API errors. A provider-chain
// exhaustion is an upstream outage, everything else is internal.
func (h *SignalsEchoHandler) mapError(c echo.Context, err error, msg string) error {
	var allFailed *models.AllProvidersFailedError
	if errors.As(err, &allFailed) {
		h.logger.Warn(msg, xlogger.String("symbol", allFailed.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError(err.Error()))
	}
	h.logger.Error(msg, xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
