package model

import (
	"time"

	"PaperTrader/internal/clock"

	"github.com/shopspring/decimal"
)

// RewardState tracks the daily login bonus. Dates are nil until the first claim.
type RewardState struct {
	LastLoginDate *clock.Day      `json:"lastLoginDate"`
	LastClaimDate *clock.Day      `json:"lastClaimDate"`
	TotalRewards  decimal.Decimal `json:"totalRewards"`
	LoginStreak   int             `json:"loginStreak"`
}

// DailyRewardsInfo is the read-only projection of RewardState for a given instant.
type DailyRewardsInfo struct {
	CanClaimToday       bool            `json:"canClaimToday"`
	LastClaimDate       *clock.Day      `json:"lastClaimDate"`
	LastLoginDate       *clock.Day      `json:"lastLoginDate"`
	LoginStreak         int             `json:"loginStreak"`
	TotalRewards        decimal.Decimal `json:"totalRewards"`
	BonusAmount         decimal.Decimal `json:"bonusAmount"`
	NextRewardAt        time.Time       `json:"nextRewardAt"`
	TimeUntilNextReward time.Duration   `json:"timeUntilNextReward"`
}
