package notifier

import (
	"fmt"
	"log"
	"sync"
	"time"

	"PaperTrader/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Emitter accepts notification events. Emit must not block the caller.
type Emitter interface {
	Emit(evt model.Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(model.Event)

func (f EmitterFunc) Emit(evt model.Event) { f(evt) }

// Discard drops every event.
var Discard Emitter = EmitterFunc(func(model.Event) {})

// Now is the timestamp source for new events.
var Now = time.Now

// NewEvent stamps a fresh id and creation time.
func NewEvent(typ model.EventType, title, message string, data map[string]any) model.Event {
	return model.Event{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: Now(),
		Data:      data,
	}
}

// TradeEvent describes a booked BUY or SELL.
func TradeEvent(rec model.TradeRecord, balance decimal.Decimal) model.Event {
	verb, title := "Bought", "Buy order executed"
	if rec.Side == model.SideSell {
		verb, title = "Sold", "Sell order executed"
	}
	msg := fmt.Sprintf("%s %d %s @ %s", verb, rec.Quantity, rec.Symbol, FormatAmount(rec.Price))
	if rec.Side == model.SideSell {
		msg += fmt.Sprintf(", realized P&L %s", FormatSignedAmount(rec.RealizedPnL))
	}
	return NewEvent(model.EventSuccess, title, msg, map[string]any{
		"tradeId":   rec.ID,
		"symbol":    rec.Symbol,
		"side":      string(rec.Side),
		"quantity":  rec.Quantity,
		"price":     rec.Price.String(),
		"totalCost": rec.TotalCost.String(),
		"balance":   balance.String(),
	})
}

// RewardEvent describes a credited daily bonus.
func RewardEvent(amount decimal.Decimal, streak int, balance decimal.Decimal) model.Event {
	msg := fmt.Sprintf("%s daily reward credited, %d day streak", FormatAmount(amount), streak)
	return NewEvent(model.EventSuccess, "Daily reward claimed", msg, map[string]any{
		"amount":  amount.String(),
		"streak":  streak,
		"balance": balance.String(),
	})
}

// Bus fans events out to every sink.
type Bus struct {
	mu    sync.RWMutex
	sinks []Emitter
}

func NewBus(sinks ...Emitter) *Bus {
	return &Bus{sinks: sinks}
}

func (b *Bus) Add(sink Emitter) {
	b.mu.Lock()
	b.sinks = append(b.sinks, sink)
	b.mu.Unlock()
}

func (b *Bus) Emit(evt model.Event) {
	b.mu.RLock()
	sinks := append([]Emitter(nil), b.sinks...)
	b.mu.RUnlock()

	for _, s := range sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[ERROR] event sink panicked on %s: %v", evt.ID, r)
				}
			}()
			s.Emit(evt)
		}()
	}
}

// LogSink writes every event to the standard logger.
type LogSink struct{}

func (LogSink) Emit(evt model.Event) {
	log.Printf("[INFO] event %s [%s] %s: %s", evt.ID, evt.Type, evt.Title, evt.Message)
}
