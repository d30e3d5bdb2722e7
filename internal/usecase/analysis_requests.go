package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"CryptoSignal/internal/domain/models"
	applogger "CryptoSignal/pkg/logger"
)

// AnalysisRequestHandler consumes {"coin","tf"} messages and runs a report
// for each. The report itself is published by InsightsUseCase.
type AnalysisRequestHandler struct {
	topic    string
	insights *InsightsUseCase
	log      *applogger.Logger
}

func NewAnalysisRequestHandler(topic string, insights *InsightsUseCase, log *applogger.Logger) *AnalysisRequestHandler {
	if log == nil {
		log = applogger.Nop()
	}
	return &AnalysisRequestHandler{topic: topic, insights: insights, log: log}
}

func (h *AnalysisRequestHandler) Topic() string { return h.topic }

func (h *AnalysisRequestHandler) Handle(ctx context.Context, data []byte) error {
	var req models.CoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode analysis request: %w", err)
	}
	if req.Coin == "" {
		return fmt.Errorf("analysis request without coin: %w", models.ErrInvalidParameter)
	}
	report, err := h.insights.Report(ctx, req.Coin, req.Timeframe)
	if err != nil {
		return err
	}
	h.log.Debug("analysis request served",
		applogger.String("coin", req.Coin),
		applogger.String("direction", string(report.Recommendation.Direction)))
	return nil
}
