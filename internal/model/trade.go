package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a ledger entry.
type Side string

const (
	SideBuy   Side = "BUY"
	SideSell  Side = "SELL"
	SideBonus Side = "BONUS"
)

// Valid reports whether s is a tradable side. BONUS entries are ledger-issued only.
func (s Side) Valid() bool { return s == SideBuy || s == SideSell }

const StatusCompleted = "COMPLETED"

// BonusSymbol tags reward entries in the trade history.
const BonusSymbol = "DAILY_REWARD"

// TradeRecord is one immutable history entry.
// TotalCost is the cash debited for BUY and the net proceeds credited for SELL.
type TradeRecord struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	Side        Side            `json:"type"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TradeValue  decimal.Decimal `json:"tradeValue"`
	Brokerage   decimal.Decimal `json:"brokerage"`
	Taxes       decimal.Decimal `json:"taxes"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	RealizedPnL decimal.Decimal `json:"realizedPnL"`
	Timestamp   time.Time       `json:"timestamp"`
	Status      string          `json:"status"`
}
