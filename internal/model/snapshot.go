package model

import (
	"github.com/shopspring/decimal"
)

// LedgerSnapshot is the complete persisted state of one session's ledger.
type LedgerSnapshot struct {
	CashBalance decimal.Decimal     `json:"balance"`
	Positions   map[string]Position `json:"portfolio"`
	History     []TradeRecord       `json:"history"`
	Rewards     RewardState         `json:"dailyRewards"`
}

// NewLedgerSnapshot returns the state of a brand new session.
func NewLedgerSnapshot(initialBalance decimal.Decimal) LedgerSnapshot {
	return LedgerSnapshot{
		CashBalance: initialBalance,
		Positions:   make(map[string]Position),
		History:     []TradeRecord{},
	}
}

// Clone returns a deep copy; history entries are immutable so only the slice is copied.
func (s LedgerSnapshot) Clone() LedgerSnapshot {
	c := s
	c.Positions = make(map[string]Position, len(s.Positions))
	for k, v := range s.Positions {
		c.Positions[k] = v
	}
	c.History = append([]TradeRecord(nil), s.History...)
	if s.Rewards.LastLoginDate != nil {
		d := *s.Rewards.LastLoginDate
		c.Rewards.LastLoginDate = &d
	}
	if s.Rewards.LastClaimDate != nil {
		d := *s.Rewards.LastClaimDate
		c.Rewards.LastClaimDate = &d
	}
	return c
}
