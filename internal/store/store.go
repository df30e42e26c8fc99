// Package store persists ledger snapshots to durable key-value storage.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"PaperTrader/internal/model"

	"github.com/shopspring/decimal"
)

// Snapshot keys.
const (
	KeyPortfolio    = "portfolio"
	KeyBalance      = "balance"
	KeyHistory      = "history"
	KeyDailyRewards = "dailyRewards"
)

// Keys lists every key a snapshot is spread across.
var Keys = []string{KeyPortfolio, KeyBalance, KeyHistory, KeyDailyRewards}

// ErrNotFound is returned by KV.Get for absent keys.
var ErrNotFound = errors.New("key not found")

// KV is a namespaced durable key-value store.
type KV interface {
	Get(key string) ([]byte, error)
	// SetMany writes all entries as one unit: after a failure or crash a
	// reader sees either every new value or none of them.
	SetMany(entries map[string][]byte) error
	Clear() error
	Close() error
}

// Adapter persists a model.LedgerSnapshot into a KV.
type Adapter struct {
	kv KV
}

func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv}
}

// Load reads the snapshot. Missing keys keep their default; a malformed key
// discards the whole stored snapshot in favour of defaults.
func (a *Adapter) Load(defaults model.LedgerSnapshot) model.LedgerSnapshot {
	snap, found, err := a.decode(defaults.Clone())
	if err != nil {
		log.Printf("[WARN] stored ledger is corrupt, starting from defaults: %v", err)
		return defaults
	}
	if found == 0 {
		return defaults
	}
	return snap
}

func (a *Adapter) decode(snap model.LedgerSnapshot) (model.LedgerSnapshot, int, error) {
	found := 0
	for _, key := range Keys {
		raw, err := a.kv.Get(key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return snap, found, fmt.Errorf("read %s: %w", key, err)
		}
		found++
		if err := decodeKey(key, raw, &snap); err != nil {
			return snap, found, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	return snap, found, validate(&snap)
}

func decodeKey(key string, raw []byte, snap *model.LedgerSnapshot) error {
	switch key {
	case KeyBalance:
		bal, err := decimal.NewFromString(string(raw))
		if err != nil {
			return err
		}
		snap.CashBalance = bal
	case KeyPortfolio:
		positions := map[string]model.Position{}
		if err := json.Unmarshal(raw, &positions); err != nil {
			return err
		}
		snap.Positions = positions
	case KeyHistory:
		var history []model.TradeRecord
		if err := json.Unmarshal(raw, &history); err != nil {
			return err
		}
		snap.History = history
	case KeyDailyRewards:
		var rs model.RewardState
		if err := json.Unmarshal(raw, &rs); err != nil {
			return err
		}
		snap.Rewards = rs
	}
	return nil
}

func validate(snap *model.LedgerSnapshot) error {
	if snap.CashBalance.IsNegative() {
		return fmt.Errorf("negative balance %s", snap.CashBalance)
	}
	if snap.Positions == nil {
		snap.Positions = make(map[string]model.Position)
	}
	for sym, p := range snap.Positions {
		if p.Quantity < 0 {
			return fmt.Errorf("position %s has negative quantity %d", sym, p.Quantity)
		}
		if p.Symbol == "" {
			p.Symbol = sym
			snap.Positions[sym] = p
		}
	}
	if snap.History == nil {
		snap.History = []model.TradeRecord{}
	}
	if snap.Rewards.LoginStreak < 0 {
		return fmt.Errorf("negative login streak %d", snap.Rewards.LoginStreak)
	}
	return nil
}

// Save writes every key of snap.
func (a *Adapter) Save(snap model.LedgerSnapshot) error {
	portfolio, err := json.Marshal(snap.Positions)
	if err != nil {
		return fmt.Errorf("encode portfolio: %w", err)
	}
	history, err := json.Marshal(snap.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	rewards, err := json.Marshal(snap.Rewards)
	if err != nil {
		return fmt.Errorf("encode daily rewards: %w", err)
	}
	return a.kv.SetMany(map[string][]byte{
		KeyPortfolio:    portfolio,
		KeyBalance:      []byte(snap.CashBalance.String()),
		KeyHistory:      history,
		KeyDailyRewards: rewards,
	})
}

// Clear removes the stored snapshot.
func (a *Adapter) Clear() error {
	return a.kv.Clear()
}
