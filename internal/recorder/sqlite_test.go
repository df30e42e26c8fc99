package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"PaperTrader/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func trade(id, symbol string, side model.Side, at time.Time, total string) model.TradeRecord {
	return model.TradeRecord{
		ID:          id,
		Symbol:      symbol,
		Side:        side,
		Quantity:    1,
		Price:       decimal.NewFromInt(100),
		TradeValue:  decimal.NewFromInt(100),
		Brokerage:   decimal.RequireFromString("0.1"),
		Taxes:       decimal.RequireFromString("0.025171"),
		TotalCost:   decimal.RequireFromString(total),
		RealizedPnL: decimal.Zero,
		Timestamp:   at,
		Status:      model.StatusCompleted,
	}
}

func TestSQLiteRecorder_ListTrades(t *testing.T) {
	r := newTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordTrade("alice", trade("A1", "X", model.SideBuy, base, "100.125171"), decimal.RequireFromString("9899.874829")))
	require.NoError(t, r.RecordTrade("alice", trade("A2", "Y", model.SideBuy, base.Add(time.Minute), "100.125171"), decimal.RequireFromString("9799.749658")))
	require.NoError(t, r.RecordTrade("alice", trade("A3", "X", model.SideSell, base.Add(2*time.Minute), "99.852829"), decimal.RequireFromString("9899.602487")))
	require.NoError(t, r.RecordTrade("bob", trade("B1", "X", model.SideBuy, base, "100.125171"), decimal.RequireFromString("9899.874829")))

	all, err := r.ListTrades(ctx, "alice", "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"A3", "A2", "A1"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, all[0].TotalCost.Equal(decimal.RequireFromString("99.852829")))
	assert.Equal(t, model.SideSell, all[0].Side)
	assert.True(t, all[2].Timestamp.Equal(base))

	xs, err := r.ListTrades(ctx, "alice", "X", 0)
	require.NoError(t, err)
	assert.Len(t, xs, 2)

	limited, err := r.ListTrades(ctx, "alice", "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "A3", limited[0].ID)
}

func TestSQLiteRecorder_BalanceHistory(t *testing.T) {
	r := newTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	balances := []string{"9899.874829", "9999.874829", "9899.602487"}
	sides := []model.Side{model.SideBuy, model.SideBonus, model.SideSell}
	for i, b := range balances {
		rec := trade(string(rune('a'+i)), "X", sides[i], base.Add(time.Duration(i)*time.Minute), "1")
		require.NoError(t, r.RecordTrade("alice", rec, decimal.RequireFromString(b)))
	}

	points, err := r.BalanceHistory(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, points, 3)
	for i, p := range points {
		assert.True(t, p.Balance.Equal(decimal.RequireFromString(balances[i])))
		assert.Equal(t, sides[i], p.Side)
	}

	last, err := r.BalanceHistory(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "b", last[0].TradeID)
	assert.Equal(t, "c", last[1].TradeID)
}

func TestSQLiteRecorder_DuplicateIDRejected(t *testing.T) {
	r := newTestRecorder(t)
	rec := trade("DUP", "X", model.SideBuy, time.Now(), "1")

	require.NoError(t, r.RecordTrade("alice", rec, decimal.NewFromInt(1)))
	assert.Error(t, r.RecordTrade("alice", rec, decimal.NewFromInt(1)))

	points, err := r.BalanceHistory(context.Background(), "alice", 0)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	require.NoError(t, r.RecordTrade("alice", trade("A", "X", model.SideBuy, time.Now(), "1"), decimal.Zero))
	trades, err := r.ListTrades(context.Background(), "alice", "", 0)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.NoError(t, r.Close())
}
