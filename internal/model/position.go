package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the holding of one symbol, valued at weighted average cost.
// A fully sold position stays in the map with zeroed quantity and cost.
type Position struct {
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"`
	AvgPrice      decimal.Decimal `json:"avgPrice"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	RealizedPnL   decimal.Decimal `json:"realizedPnL"`
	LastUpdated   time.Time       `json:"lastUpdated"`
}

// IsOpen reports whether any shares are still held.
func (p Position) IsOpen() bool { return p.Quantity > 0 }

// PositionView is a Position marked to the latest known price.
type PositionView struct {
	Position
	CurrentPrice         decimal.Decimal `json:"currentPrice"`
	CurrentValue         decimal.Decimal `json:"currentValue"`
	UnrealizedPnL        decimal.Decimal `json:"unrealizedPnL"`
	UnrealizedPnLPercent decimal.Decimal `json:"unrealizedPnLPercent"`
	HasLivePrice         bool            `json:"hasLivePrice"`
}
