package model

import (
	"PaperTrader/internal/clock"

	"github.com/shopspring/decimal"
)

// BalanceSync is the reduced snapshot pushed to the remote authority.
type BalanceSync struct {
	UserID        string
	Balance       decimal.Decimal
	TotalRewards  decimal.Decimal
	LoginStreak   int
	LastClaimDate *clock.Day
}
