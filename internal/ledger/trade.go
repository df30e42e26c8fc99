package ledger

import (
	"log"
	"strings"
	"time"

	"PaperTrader/internal/calculator"
	"PaperTrader/internal/id"
	"PaperTrader/internal/model"
	"PaperTrader/internal/notifier"

	"github.com/shopspring/decimal"
)

// TradeResult is the outcome of BuyStock/SellStock. Exactly one of Trade and Error is set.
type TradeResult struct {
	Success bool               `json:"success"`
	Trade   *model.TradeRecord `json:"trade,omitempty"`
	Error   *TradeError        `json:"error,omitempty"`
}

func toResult(rec model.TradeRecord, err error) TradeResult {
	if err != nil {
		te, ok := err.(*TradeError)
		if !ok {
			te = &TradeError{Code: InvalidParameters, Message: err.Error()}
		}
		return TradeResult{Error: te}
	}
	return TradeResult{Success: true, Trade: &rec}
}

// BuyStock buys quantity shares of symbol at price.
func (e *Engine) BuyStock(symbol string, quantity int64, price decimal.Decimal) TradeResult {
	return toResult(e.ExecuteTrade(symbol, quantity, price, model.SideBuy))
}

// SellStock sells quantity held shares of symbol at price.
func (e *Engine) SellStock(symbol string, quantity int64, price decimal.Decimal) TradeResult {
	return toResult(e.ExecuteTrade(symbol, quantity, price, model.SideSell))
}

// PreviewTrade prices a trade without booking it.
func (e *Engine) PreviewTrade(symbol string, quantity int64, price decimal.Decimal, side model.Side) (calculator.TradeQuote, error) {
	if _, err := validateTrade(symbol, quantity, price, side); err != nil {
		return calculator.TradeQuote{}, err
	}
	return e.fees.Quote(quantity, price, side), nil
}

// ExecuteTrade validates and books a trade. On any *TradeError the ledger is untouched.
func (e *Engine) ExecuteTrade(symbol string, quantity int64, price decimal.Decimal, side model.Side) (model.TradeRecord, error) {
	symbol, err := validateTrade(symbol, quantity, price, side)
	if err != nil {
		return model.TradeRecord{}, err
	}
	quote := e.fees.Quote(quantity, price, side)

	e.mu.Lock()
	var rec model.TradeRecord
	if side == model.SideBuy {
		rec, err = e.applyBuyLocked(symbol, quote)
	} else {
		rec, err = e.applySellLocked(symbol, quote)
	}
	if err != nil {
		e.mu.Unlock()
		log.Printf("[WARN] %s %d %s rejected: %v", side, quantity, symbol, err)
		return model.TradeRecord{}, err
	}
	e.appendHistoryLocked(rec)
	e.commitLocked()
	balance := e.state.CashBalance
	summary := e.summaryLocked()
	payload := e.syncPayloadLocked()
	e.mu.Unlock()

	log.Printf("[INFO] %s %d %s @ %s, net %s, cash %s", side, quantity, symbol, price, rec.TotalCost, balance)
	e.recordJournal(rec, balance)
	e.listeners.notify(summary)
	e.syncer.Push(payload)
	e.emitter.Emit(notifier.TradeEvent(rec, balance))
	return rec, nil
}

func (e *Engine) applyBuyLocked(symbol string, q calculator.TradeQuote) (model.TradeRecord, error) {
	if e.state.CashBalance.LessThan(q.Net) {
		return model.TradeRecord{}, newTradeError(InsufficientFunds,
			"insufficient funds: required %s, available %s", q.Net.StringFixed(2), e.state.CashBalance.StringFixed(2))
	}
	now := e.clock.Now()

	pos := e.state.Positions[symbol]
	pos.Symbol = symbol
	pos.TotalInvested = pos.TotalInvested.Add(q.Net)
	pos.Quantity += q.Quantity
	pos.AvgPrice = pos.TotalInvested.Div(decimal.NewFromInt(pos.Quantity))
	pos.LastUpdated = now
	e.state.Positions[symbol] = pos

	e.state.CashBalance = e.state.CashBalance.Sub(q.Net)

	return newRecord(symbol, q, decimal.Zero, now), nil
}

// applySellLocked removes cost basis at average cost: the sold fraction of
// quantity takes the same fraction of totalInvested.
func (e *Engine) applySellLocked(symbol string, q calculator.TradeQuote) (model.TradeRecord, error) {
	pos, ok := e.state.Positions[symbol]
	if !ok || q.Quantity > pos.Quantity {
		var held int64
		if ok {
			held = pos.Quantity
		}
		return model.TradeRecord{}, newTradeError(InsufficientHoldings,
			"insufficient holdings: requested %d %s, held %d", q.Quantity, symbol, held)
	}
	now := e.clock.Now()

	soldCostBasis := pos.TotalInvested
	if q.Quantity < pos.Quantity {
		soldCostBasis = pos.TotalInvested.Mul(decimal.NewFromInt(q.Quantity)).Div(decimal.NewFromInt(pos.Quantity))
	}
	realized := q.Net.Sub(soldCostBasis)

	pos.RealizedPnL = pos.RealizedPnL.Add(realized)
	pos.Quantity -= q.Quantity
	if pos.Quantity == 0 {
		pos.TotalInvested = decimal.Zero
		pos.AvgPrice = decimal.Zero
	} else {
		pos.TotalInvested = pos.TotalInvested.Sub(soldCostBasis)
		pos.AvgPrice = pos.TotalInvested.Div(decimal.NewFromInt(pos.Quantity))
	}
	pos.LastUpdated = now
	e.state.Positions[symbol] = pos

	e.state.CashBalance = e.state.CashBalance.Add(q.Net)

	return newRecord(symbol, q, realized, now), nil
}

func newRecord(symbol string, q calculator.TradeQuote, realized decimal.Decimal, now time.Time) model.TradeRecord {
	return model.TradeRecord{
		ID:          id.New(now),
		Symbol:      symbol,
		Side:        q.Side,
		Quantity:    q.Quantity,
		Price:       q.Price,
		TradeValue:  q.TradeValue,
		Brokerage:   q.Brokerage,
		Taxes:       q.Taxes.Total(),
		TotalCost:   q.Net,
		RealizedPnL: realized,
		Timestamp:   now,
		Status:      model.StatusCompleted,
	}
}

func validateTrade(symbol string, quantity int64, price decimal.Decimal, side model.Side) (string, error) {
	symbol = normalizeSymbol(symbol)
	switch {
	case symbol == "":
		return "", newTradeError(InvalidParameters, "invalid parameters: symbol is required")
	case quantity <= 0:
		return "", newTradeError(InvalidParameters, "invalid parameters: quantity must be positive, got %d", quantity)
	case !price.IsPositive():
		return "", newTradeError(InvalidParameters, "invalid parameters: price must be positive, got %s", price)
	case !side.Valid():
		return "", newTradeError(InvalidParameters, "invalid parameters: unknown side %q", side)
	}
	return symbol, nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
