package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSummary is the snapshot pushed to every change listener.
// Version increases with every mutation so late deliveries can be discarded.
type PortfolioSummary struct {
	TotalValue         decimal.Decimal `json:"totalValue"`
	AvailableCash      decimal.Decimal `json:"availableCash"`
	TotalInvested      decimal.Decimal `json:"totalInvested"`
	TotalCurrentValue  decimal.Decimal `json:"totalCurrentValue"`
	TotalPnL           decimal.Decimal `json:"totalPnL"`
	TotalPnLPercentage decimal.Decimal `json:"totalPnLPercentage"`
	RealizedPnL        decimal.Decimal `json:"realizedPnL"`
	Positions          []PositionView  `json:"positions"`
	TotalPositions     int             `json:"totalPositions"`
	LastUpdated        time.Time       `json:"lastUpdated"`
	Version            uint64          `json:"version"`
}
