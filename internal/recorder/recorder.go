package recorder

import (
	"context"

	"PaperTrader/internal/model"

	"github.com/shopspring/decimal"
)

// Recorder is the append-only journal of every booked entry. Unlike the
// in-memory history it is never trimmed.
type Recorder interface {
	RecordTrade(userID string, rec model.TradeRecord, balanceAfter decimal.Decimal) error
	// ListTrades returns the newest entries first; an empty symbol matches all.
	ListTrades(ctx context.Context, userID, symbol string, limit int) ([]model.TradeRecord, error)
	// BalanceHistory returns cash balance after each entry, oldest first.
	BalanceHistory(ctx context.Context, userID string, limit int) ([]BalancePoint, error)
	Close() error
}

// BalancePoint is the cash balance right after one entry.
type BalancePoint struct {
	TradeID   string
	Side      model.Side
	Balance   decimal.Decimal
	Timestamp int64
}
