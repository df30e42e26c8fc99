package ledger

import (
	"log"
	"sync"
	"time"

	"PaperTrader/internal/calculator"
	"PaperTrader/internal/clock"
	"PaperTrader/internal/model"
	"PaperTrader/internal/notifier"

	"github.com/shopspring/decimal"
)

const (
	DefaultHistoryLimit = 1000
)

var (
	DefaultInitialBalance = decimal.NewFromInt(10000)
	DefaultDailyBonus     = decimal.NewFromInt(100)
)

// Persister is the durable write-through store of the full snapshot.
type Persister interface {
	// Load never fails: absent or corrupt state yields defaults.
	Load(defaults model.LedgerSnapshot) model.LedgerSnapshot
	Save(snap model.LedgerSnapshot) error
	// Clear drops everything stored for the ledger.
	Clear() error
}

// Journal keeps an unbounded record of booked entries beyond the history ring.
type Journal interface {
	RecordTrade(userID string, rec model.TradeRecord, balanceAfter decimal.Decimal) error
}

// Syncer pushes the reduced balance snapshot to the remote authority.
// Push must not block.
type Syncer interface {
	Push(payload model.BalanceSync)
}

// Options configures one session's Engine. Nil collaborators are replaced by no-ops.
type Options struct {
	UserID         string
	InitialBalance decimal.Decimal
	HistoryLimit   int
	DailyBonus     decimal.Decimal
	Fees           calculator.FeeSchedule
	Clock          clock.Clock
	Location       *time.Location

	Store   Persister
	Journal Journal
	Syncer  Syncer
	Emitter notifier.Emitter
}

// DefaultOptions returns the stock simulator settings with in-memory collaborators.
func DefaultOptions() Options {
	return Options{
		InitialBalance: DefaultInitialBalance,
		HistoryLimit:   DefaultHistoryLimit,
		DailyBonus:     DefaultDailyBonus,
		Fees:           calculator.DefaultFeeSchedule(),
		Location:       time.UTC,
	}
}

// Engine is the virtual trading ledger of a single session. All mutations
// are serialized by mu; listeners and remote sync run after it is released.
type Engine struct {
	mu      sync.Mutex
	state   model.LedgerSnapshot
	prices  map[string]decimal.Decimal
	version uint64

	userID         string
	initialBalance decimal.Decimal
	historyLimit   int
	bonus          decimal.Decimal
	fees           calculator.FeeSchedule
	clock          clock.Clock
	loc            *time.Location

	store     Persister
	journal   Journal
	syncer    Syncer
	emitter   notifier.Emitter
	listeners *listenerSet
}

// New builds an Engine and loads its state from opts.Store.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.InitialBalance.IsZero() {
		opts.InitialBalance = def.InitialBalance
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = def.HistoryLimit
	}
	if opts.DailyBonus.IsZero() {
		opts.DailyBonus = def.DailyBonus
	}
	if opts.Fees == (calculator.FeeSchedule{}) {
		opts.Fees = def.Fees
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{Location: opts.Location}
	}
	if opts.Store == nil {
		opts.Store = memoryPersister{}
	}
	if opts.Journal == nil {
		opts.Journal = noopJournal{}
	}
	if opts.Syncer == nil {
		opts.Syncer = noopSyncer{}
	}
	if opts.Emitter == nil {
		opts.Emitter = notifier.Discard
	}

	e := &Engine{
		prices:         make(map[string]decimal.Decimal),
		userID:         opts.UserID,
		initialBalance: opts.InitialBalance,
		historyLimit:   opts.HistoryLimit,
		bonus:          opts.DailyBonus,
		fees:           opts.Fees,
		clock:          opts.Clock,
		loc:            opts.Location,
		store:          opts.Store,
		journal:        opts.Journal,
		syncer:         opts.Syncer,
		emitter:        opts.Emitter,
		listeners:      newListenerSet(),
	}
	e.state = e.store.Load(e.defaults())
	if e.state.Positions == nil {
		e.state.Positions = make(map[string]model.Position)
	}
	e.trimHistoryLocked()
	return e
}

func (e *Engine) defaults() model.LedgerSnapshot {
	return model.NewLedgerSnapshot(e.initialBalance)
}

// UserID identifies the session owner.
func (e *Engine) UserID() string { return e.userID }

// Fees returns the schedule trades are charged with.
func (e *Engine) Fees() calculator.FeeSchedule { return e.fees }

// Snapshot returns a deep copy of the ledger state.
func (e *Engine) Snapshot() model.LedgerSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// GetBalance returns available cash.
func (e *Engine) GetBalance() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CashBalance
}

// GetPosition returns the position for symbol, including closed ones.
func (e *Engine) GetPosition(symbol string) (model.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.state.Positions[normalizeSymbol(symbol)]
	return p, ok
}

// GetTradeHistory returns up to limit entries, newest first. limit <= 0 returns all.
func (e *Engine) GetTradeHistory(limit int) []model.TradeRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.state.History)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]model.TradeRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, e.state.History[i])
	}
	return out
}

// UpdatePrices records caller-supplied quotes used to mark positions to market.
// Non-positive prices are ignored.
func (e *Engine) UpdatePrices(quotes map[string]decimal.Decimal) {
	e.mu.Lock()
	changed := false
	for sym, px := range quotes {
		if !px.IsPositive() {
			continue
		}
		e.prices[normalizeSymbol(sym)] = px
		changed = true
	}
	if !changed {
		e.mu.Unlock()
		return
	}
	e.version++
	summary := e.summaryLocked()
	e.mu.Unlock()

	e.listeners.notify(summary)
}

// ClearAllData resets the session to its initial state and persists the reset.
func (e *Engine) ClearAllData() {
	e.mu.Lock()
	if err := e.store.Clear(); err != nil {
		log.Printf("[ERROR] failed to clear stored ledger for %q: %v", e.userID, err)
	}
	e.state = e.defaults()
	e.prices = make(map[string]decimal.Decimal)
	e.commitLocked()
	summary := e.summaryLocked()
	payload := e.syncPayloadLocked()
	e.mu.Unlock()

	log.Printf("[INFO] ledger %q cleared, balance reset to %s", e.userID, e.initialBalance)
	e.listeners.notify(summary)
	e.syncer.Push(payload)
}

// commitLocked persists the state and advances the version. Save failures
// are logged only; the in-memory ledger stays authoritative.
func (e *Engine) commitLocked() {
	e.version++
	if err := e.store.Save(e.state.Clone()); err != nil {
		log.Printf("[ERROR] failed to save ledger state for %q: %v", e.userID, err)
	}
}

func (e *Engine) appendHistoryLocked(rec model.TradeRecord) {
	e.state.History = append(e.state.History, rec)
	e.trimHistoryLocked()
}

func (e *Engine) trimHistoryLocked() {
	if over := len(e.state.History) - e.historyLimit; over > 0 {
		e.state.History = append([]model.TradeRecord(nil), e.state.History[over:]...)
	}
}

func (e *Engine) syncPayloadLocked() model.BalanceSync {
	p := model.BalanceSync{
		UserID:       e.userID,
		Balance:      e.state.CashBalance,
		TotalRewards: e.state.Rewards.TotalRewards,
		LoginStreak:  e.state.Rewards.LoginStreak,
	}
	if d := e.state.Rewards.LastClaimDate; d != nil {
		day := *d
		p.LastClaimDate = &day
	}
	return p
}

func (e *Engine) recordJournal(rec model.TradeRecord, balanceAfter decimal.Decimal) {
	if err := e.journal.RecordTrade(e.userID, rec, balanceAfter); err != nil {
		log.Printf("[ERROR] record trade %s: %v", rec.ID, err)
	}
}

type memoryPersister struct{}

func (memoryPersister) Load(defaults model.LedgerSnapshot) model.LedgerSnapshot { return defaults }
func (memoryPersister) Save(model.LedgerSnapshot) error                         { return nil }
func (memoryPersister) Clear() error                                            { return nil }

type noopJournal struct{}

func (noopJournal) RecordTrade(string, model.TradeRecord, decimal.Decimal) error { return nil }

type noopSyncer struct{}

func (noopSyncer) Push(model.BalanceSync) {}
