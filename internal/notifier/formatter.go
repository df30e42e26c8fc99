package notifier

import (
	"fmt"
	"strings"
	"time"

	"PaperTrader/internal/model"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var currency = money.INR

// SetCurrency selects the ISO code used to display amounts.
func SetCurrency(code string) {
	if code != "" && money.GetCurrency(code) != nil {
		currency = code
	}
}

// FormatAmount renders d in the display currency, rounded to its minor unit.
func FormatAmount(d decimal.Decimal) string {
	cur := money.GetCurrency(currency)
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

// FormatSignedAmount prefixes positive amounts with '+'.
func FormatSignedAmount(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + FormatAmount(d)
	}
	return FormatAmount(d)
}

// FormatPortfolio formats a portfolio summary for chat delivery.
func FormatPortfolio(s model.PortfolioSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💼 <b>Portfolio</b> | %s\n\n", s.LastUpdated.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Total value: %s\n", FormatAmount(s.TotalValue)))
	b.WriteString(fmt.Sprintf("Cash: %s\n", FormatAmount(s.AvailableCash)))
	b.WriteString(fmt.Sprintf("Invested: %s\n", FormatAmount(s.TotalInvested)))
	b.WriteString(fmt.Sprintf("P&L: %s (%s%%)\n", FormatSignedAmount(s.TotalPnL), s.TotalPnLPercentage.StringFixed(2)))
	if !s.RealizedPnL.IsZero() {
		b.WriteString(fmt.Sprintf("Realized: %s\n", FormatSignedAmount(s.RealizedPnL)))
	}

	if len(s.Positions) == 0 {
		b.WriteString("\nNo open positions")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("\n📈 <b>Positions (%d):</b>\n", s.TotalPositions))
	for _, p := range s.Positions {
		marker := ""
		if !p.HasLivePrice {
			marker = " *"
		}
		b.WriteString(fmt.Sprintf("  %s ×%d avg %s → %s%s (%s)\n",
			p.Symbol, p.Quantity, FormatAmount(p.AvgPrice), FormatAmount(p.CurrentValue), marker,
			FormatSignedAmount(p.UnrealizedPnL)))
	}
	return b.String()
}

// FormatRewards formats the daily reward status.
func FormatRewards(info model.DailyRewardsInfo) string {
	var b strings.Builder
	b.WriteString("🎁 <b>Daily rewards</b>\n\n")
	b.WriteString(fmt.Sprintf("Streak: %d day(s)\n", info.LoginStreak))
	b.WriteString(fmt.Sprintf("Total earned: %s\n", FormatAmount(info.TotalRewards)))
	if info.CanClaimToday {
		b.WriteString(fmt.Sprintf("Available now: %s", FormatAmount(info.BonusAmount)))
	} else {
		b.WriteString(fmt.Sprintf("Next reward in %s", info.TimeUntilNextReward.Round(time.Minute)))
	}
	return b.String()
}

// FormatHistory lists trade records, newest first.
func FormatHistory(recs []model.TradeRecord) string {
	if len(recs) == 0 {
		return "No trades yet"
	}
	var b strings.Builder
	b.WriteString("🧾 <b>Recent trades</b>\n\n")
	for _, r := range recs {
		if r.Side == model.SideBonus {
			b.WriteString(fmt.Sprintf("%s  BONUS %s\n", r.Timestamp.Format("01-02 15:04"), FormatAmount(r.TotalCost)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s  %s %d %s @ %s = %s\n",
			r.Timestamp.Format("01-02 15:04"), r.Side, r.Quantity, r.Symbol,
			FormatAmount(r.Price), FormatAmount(r.TotalCost)))
	}
	return b.String()
}

// FormatEvent renders an emitted event as a chat message.
func FormatEvent(evt model.Event) string {
	icon := "ℹ️"
	switch evt.Type {
	case model.EventSuccess:
		icon = "✅"
	case model.EventWarning:
		icon = "⚠️"
	case model.EventError:
		icon = "❌"
	}
	return fmt.Sprintf("%s <b>%s</b>\n%s", icon, evt.Title, evt.Message)
}
