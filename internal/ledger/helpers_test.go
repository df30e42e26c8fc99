package ledger

import (
	"sync"
	"testing"
	"time"

	"PaperTrader/internal/clock"
	"PaperTrader/internal/model"

	"github.com/shopspring/decimal"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeSyncer struct {
	mu       sync.Mutex
	payloads []model.BalanceSync
}

func (f *fakeSyncer) Push(p model.BalanceSync) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
}

func (f *fakeSyncer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeSyncer) last() model.BalanceSync {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payloads[len(f.payloads)-1]
}

type fakeJournal struct {
	mu       sync.Mutex
	recs     []model.TradeRecord
	balances []decimal.Decimal
}

func (f *fakeJournal) RecordTrade(_ string, rec model.TradeRecord, bal decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, rec)
	f.balances = append(f.balances, bal)
	return nil
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []model.Event
}

func (f *fakeEmitter) Emit(evt model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
}

type testLedger struct {
	*Engine
	clock   *clock.Fixed
	sync    *fakeSyncer
	journal *fakeJournal
	events  *fakeEmitter
}

func newTestLedger(t *testing.T, mutate ...func(*Options)) *testLedger {
	t.Helper()
	tl := &testLedger{
		clock:   clock.NewFixed(t0),
		sync:    &fakeSyncer{},
		journal: &fakeJournal{},
		events:  &fakeEmitter{},
	}
	opts := DefaultOptions()
	opts.UserID = "tester"
	opts.Clock = tl.clock
	opts.Syncer = tl.sync
	opts.Journal = tl.journal
	opts.Emitter = tl.events
	for _, m := range mutate {
		m(&opts)
	}
	tl.Engine = New(opts)
	return tl
}
