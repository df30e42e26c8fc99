package ledger

import (
	"sort"

	"PaperTrader/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GetPortfolioSummary marks open positions to the latest known quotes.
// Positions without a quote are valued at their cost basis.
func (e *Engine) GetPortfolioSummary() model.PortfolioSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summaryLocked()
}

func (e *Engine) summaryLocked() model.PortfolioSummary {
	s := model.PortfolioSummary{
		AvailableCash:     e.state.CashBalance,
		TotalInvested:     decimal.Zero,
		TotalCurrentValue: decimal.Zero,
		RealizedPnL:       decimal.Zero,
		Positions:         []model.PositionView{},
		LastUpdated:       e.clock.Now(),
		Version:           e.version,
	}

	symbols := make([]string, 0, len(e.state.Positions))
	for sym := range e.state.Positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		pos := e.state.Positions[sym]
		s.RealizedPnL = s.RealizedPnL.Add(pos.RealizedPnL)
		if !pos.IsOpen() {
			continue
		}
		view := e.markLocked(pos)
		s.TotalInvested = s.TotalInvested.Add(pos.TotalInvested)
		s.TotalCurrentValue = s.TotalCurrentValue.Add(view.CurrentValue)
		s.Positions = append(s.Positions, view)
	}

	s.TotalValue = s.AvailableCash.Add(s.TotalCurrentValue)
	s.TotalPnL = s.TotalCurrentValue.Sub(s.TotalInvested)
	s.TotalPnLPercentage = percentOf(s.TotalPnL, s.TotalInvested)
	s.TotalPositions = len(s.Positions)
	return s
}

func (e *Engine) markLocked(pos model.Position) model.PositionView {
	v := model.PositionView{Position: pos}
	if px, ok := e.prices[pos.Symbol]; ok {
		v.HasLivePrice = true
		v.CurrentPrice = px
		v.CurrentValue = px.Mul(decimal.NewFromInt(pos.Quantity))
	} else {
		v.CurrentPrice = pos.AvgPrice
		v.CurrentValue = pos.TotalInvested
	}
	v.UnrealizedPnL = v.CurrentValue.Sub(pos.TotalInvested)
	v.UnrealizedPnLPercent = percentOf(v.UnrealizedPnL, pos.TotalInvested)
	return v
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}
