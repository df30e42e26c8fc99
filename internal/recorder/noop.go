package recorder

import (
	"context"

	"PaperTrader/internal/model"

	"github.com/shopspring/decimal"
)

// NoopRecorder is used when no journal database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTrade(string, model.TradeRecord, decimal.Decimal) error { return nil }
func (n *NoopRecorder) ListTrades(context.Context, string, string, int) ([]model.TradeRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) BalanceHistory(context.Context, string, int) ([]BalancePoint, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
