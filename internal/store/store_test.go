package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"PaperTrader/internal/clock"
	"PaperTrader/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() model.LedgerSnapshot {
	day := clock.NewDay(2026, time.March, 10)
	snap := model.NewLedgerSnapshot(decimal.RequireFromString("9899.874829"))
	snap.Positions["X"] = model.Position{
		Symbol:        "X",
		Quantity:      1,
		AvgPrice:      decimal.RequireFromString("100.125171"),
		TotalInvested: decimal.RequireFromString("100.125171"),
		RealizedPnL:   decimal.Zero,
		LastUpdated:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	snap.History = append(snap.History, model.TradeRecord{
		ID:        "01HZY0000000000000000000AA",
		Symbol:    "X",
		Side:      model.SideBuy,
		Quantity:  1,
		Price:     decimal.NewFromInt(100),
		TotalCost: decimal.RequireFromString("100.125171"),
		Timestamp: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:    model.StatusCompleted,
	})
	snap.Rewards = model.RewardState{
		LastLoginDate: &day,
		LastClaimDate: &day,
		TotalRewards:  decimal.NewFromInt(100),
		LoginStreak:   1,
	}
	return snap
}

func defaults() model.LedgerSnapshot {
	return model.NewLedgerSnapshot(decimal.NewFromInt(10000))
}

func assertSameSnapshot(t *testing.T, want, got model.LedgerSnapshot) {
	t.Helper()
	assert.True(t, want.CashBalance.Equal(got.CashBalance), "balance %s != %s", want.CashBalance, got.CashBalance)
	require.Len(t, got.Positions, len(want.Positions))
	for sym, p := range want.Positions {
		g := got.Positions[sym]
		assert.Equal(t, p.Quantity, g.Quantity)
		assert.True(t, p.TotalInvested.Equal(g.TotalInvested))
		assert.True(t, p.LastUpdated.Equal(g.LastUpdated))
	}
	require.Len(t, got.History, len(want.History))
	for i := range want.History {
		assert.Equal(t, want.History[i].ID, got.History[i].ID)
		assert.True(t, want.History[i].TotalCost.Equal(got.History[i].TotalCost))
	}
	assert.Equal(t, want.Rewards.LoginStreak, got.Rewards.LoginStreak)
	assert.Equal(t, *want.Rewards.LastClaimDate, *got.Rewards.LastClaimDate)
}

func backends(t *testing.T) map[string]KV {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "ledger"))
	require.NoError(t, err)

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]KV{
		"memory": NewMemoryStore(),
		"file":   fs,
		"sqlite": db.Namespace("alice"),
	}
}

func TestAdapter_RoundTrip(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(kv)
			want := sampleSnapshot()
			require.NoError(t, a.Save(want))

			got := NewAdapter(kv).Load(defaults())
			assertSameSnapshot(t, want, got)
		})
	}
}

func TestAdapter_EmptyStoreYieldsDefaults(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got := NewAdapter(kv).Load(defaults())
			assert.True(t, got.CashBalance.Equal(decimal.NewFromInt(10000)))
			assert.Empty(t, got.Positions)
			assert.Empty(t, got.History)
			assert.Nil(t, got.Rewards.LastClaimDate)
		})
	}
}

func TestAdapter_MissingKeyKeepsDefault(t *testing.T) {
	kv := NewMemoryStore()
	require.NoError(t, kv.SetMany(map[string][]byte{KeyBalance: []byte("1234.5")}))

	got := NewAdapter(kv).Load(defaults())
	assert.True(t, got.CashBalance.Equal(decimal.RequireFromString("1234.5")))
	assert.NotNil(t, got.Positions)
	assert.Empty(t, got.History)
}

func TestAdapter_CorruptFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		key  string
		raw  string
	}{
		{"bad balance", KeyBalance, "lots"},
		{"negative balance", KeyBalance, "-1"},
		{"bad portfolio", KeyPortfolio, "{not json"},
		{"negative quantity", KeyPortfolio, `{"X":{"symbol":"X","quantity":-2}}`},
		{"bad history", KeyHistory, `{"id":1}`},
		{"bad rewards date", KeyDailyRewards, `{"lastClaimDate":"yesterday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryStore()
			require.NoError(t, NewAdapter(kv).Save(sampleSnapshot()))
			require.NoError(t, kv.SetMany(map[string][]byte{tt.key: []byte(tt.raw)}))

			got := NewAdapter(kv).Load(defaults())
			assert.True(t, got.CashBalance.Equal(decimal.NewFromInt(10000)))
			assert.Empty(t, got.Positions)
			assert.Empty(t, got.History)
		})
	}
}

func TestAdapter_Clear(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(kv)
			require.NoError(t, a.Save(sampleSnapshot()))
			require.NoError(t, a.Clear())

			_, err := kv.Get(KeyBalance)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLite_NamespacesAreIsolated(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewAdapter(db.Namespace("alice")).Save(sampleSnapshot()))

	bob := NewAdapter(db.Namespace("bob")).Load(defaults())
	assert.True(t, bob.CashBalance.Equal(decimal.NewFromInt(10000)))

	alice := NewAdapter(db.Namespace("alice")).Load(defaults())
	assert.True(t, alice.CashBalance.Equal(decimal.RequireFromString("9899.874829")))
}

func TestFileStore_SingleDocument(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, NewAdapter(fs).Save(sampleSnapshot()))

	assert.FileExists(t, filepath.Join(dir, LedgerFile))
	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	assert.Empty(t, leftovers)

	// partial writes merge with keys already stored
	require.NoError(t, fs.SetMany(map[string][]byte{KeyBalance: []byte("1")}))
	got := NewAdapter(fs).Load(defaults())
	assert.True(t, got.CashBalance.Equal(decimal.NewFromInt(1)))
	assert.Len(t, got.History, 1)
}

func TestFileStore_FailedSaveKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	a := NewAdapter(fs)

	first := sampleSnapshot()
	require.NoError(t, a.Save(first))
	saved, err := os.ReadFile(fs.Path())
	require.NoError(t, err)

	second := first.Clone()
	second.CashBalance = decimal.RequireFromString("9799.749658")
	second.Positions["X"] = model.Position{Symbol: "X", Quantity: 2, TotalInvested: decimal.RequireFromString("200.250342")}
	second.History = append(second.History, model.TradeRecord{ID: "01HZY0000000000000000000AB", Symbol: "X", Side: model.SideBuy, Quantity: 1})

	// a directory in place of the document makes the save fail
	require.NoError(t, os.Remove(fs.Path()))
	require.NoError(t, os.Mkdir(fs.Path(), 0o755))
	assert.Error(t, a.Save(second))
	require.NoError(t, os.Remove(fs.Path()))
	require.NoError(t, os.WriteFile(fs.Path(), saved, 0o644))

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	assert.Empty(t, leftovers)
	assertSameSnapshot(t, first, NewAdapter(fs).Load(defaults()))
}
