package ledger

import (
	"log"
	"time"

	"PaperTrader/internal/clock"
	"PaperTrader/internal/id"
	"PaperTrader/internal/model"
	"PaperTrader/internal/notifier"

	"github.com/shopspring/decimal"
)

// RewardResult is the outcome of a daily bonus check or claim.
type RewardResult struct {
	Success        bool            `json:"success"`
	Awarded        bool            `json:"awarded"`
	AlreadyClaimed bool            `json:"alreadyClaimed"`
	Amount         decimal.Decimal `json:"amount"`
	Streak         int             `json:"streak"`
	Balance        decimal.Decimal `json:"balance"`
	Error          *TradeError     `json:"error,omitempty"`
}

// CheckDailyLogin awards the daily bonus on the first call of a calendar day.
// Later calls the same day report AlreadyClaimed without error.
func (e *Engine) CheckDailyLogin() RewardResult {
	return e.awardDaily(false)
}

// ClaimDailyReward is the explicit claim. A second claim the same day fails
// with AlreadyClaimedToday. A successful claim is also pushed to the remote authority.
func (e *Engine) ClaimDailyReward() RewardResult {
	return e.awardDaily(true)
}

func (e *Engine) awardDaily(explicit bool) RewardResult {
	now := e.clock.Now()
	today := clock.DayOf(now, e.loc)

	e.mu.Lock()
	rs := &e.state.Rewards
	if claimedOnOrAfter(rs.LastClaimDate, today) {
		res := RewardResult{
			AlreadyClaimed: true,
			Streak:         rs.LoginStreak,
			Balance:        e.state.CashBalance,
		}
		e.mu.Unlock()
		if explicit {
			res.Error = newTradeError(AlreadyClaimedToday, "daily reward already claimed for %s", today)
		} else {
			res.Success = true
		}
		return res
	}

	if rs.LastLoginDate != nil && *rs.LastLoginDate == today.AddDays(-1) {
		rs.LoginStreak++
	} else {
		rs.LoginStreak = 1
	}
	loginDay, claimDay := today, today
	rs.LastLoginDate = &loginDay
	rs.LastClaimDate = &claimDay
	rs.TotalRewards = rs.TotalRewards.Add(e.bonus)
	e.state.CashBalance = e.state.CashBalance.Add(e.bonus)

	rec := model.TradeRecord{
		ID:          id.New(now),
		Symbol:      model.BonusSymbol,
		Side:        model.SideBonus,
		Price:       e.bonus,
		TradeValue:  e.bonus,
		Brokerage:   decimal.Zero,
		Taxes:       decimal.Zero,
		TotalCost:   e.bonus,
		RealizedPnL: decimal.Zero,
		Timestamp:   now,
		Status:      model.StatusCompleted,
	}
	e.appendHistoryLocked(rec)
	e.commitLocked()

	res := RewardResult{
		Success: true,
		Awarded: true,
		Amount:  e.bonus,
		Streak:  rs.LoginStreak,
		Balance: e.state.CashBalance,
	}
	summary := e.summaryLocked()
	payload := e.syncPayloadLocked()
	e.mu.Unlock()

	log.Printf("[INFO] daily reward %s credited to %q, streak %d", e.bonus, e.userID, res.Streak)
	e.recordJournal(rec, res.Balance)
	e.listeners.notify(summary)
	if explicit {
		e.syncer.Push(payload)
	}
	e.emitter.Emit(notifier.RewardEvent(res.Amount, res.Streak, res.Balance))
	return res
}

// GetDailyRewardsInfo projects the reward state at the current instant.
// The next reward unlocks at midnight following the last claim.
func (e *Engine) GetDailyRewardsInfo() model.DailyRewardsInfo {
	now := e.clock.Now()
	today := clock.DayOf(now, e.loc)

	e.mu.Lock()
	rs := e.state.Rewards
	e.mu.Unlock()

	info := model.DailyRewardsInfo{
		CanClaimToday: !claimedOnOrAfter(rs.LastClaimDate, today),
		LastClaimDate: rs.LastClaimDate,
		LastLoginDate: rs.LastLoginDate,
		LoginStreak:   rs.LoginStreak,
		TotalRewards:  rs.TotalRewards,
		BonusAmount:   e.bonus,
		NextRewardAt:  now,
	}
	if rs.LastClaimDate != nil {
		info.NextRewardAt = rs.LastClaimDate.AddDays(1).Start(e.loc)
	}
	if wait := info.NextRewardAt.Sub(now); wait > 0 {
		info.TimeUntilNextReward = wait.Truncate(time.Second)
	} else {
		info.NextRewardAt = now
	}
	return info
}

// claimedOnOrAfter treats a claim dated after today (clock moved backwards)
// as already claimed, so rewinding the clock cannot mint extra bonuses.
func claimedOnOrAfter(last *clock.Day, today clock.Day) bool {
	return last != nil && !last.Before(today)
}
