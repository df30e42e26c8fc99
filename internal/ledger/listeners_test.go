package ledger

import (
	"sync/atomic"
	"testing"

	"PaperTrader/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListeners_PanicIsolated(t *testing.T) {
	l := newTestLedger(t)

	var calls atomic.Int32
	var seen model.PortfolioSummary
	l.AddListener(func(model.PortfolioSummary) { panic("boom") })
	l.AddListener(func(s model.PortfolioSummary) {
		calls.Add(1)
		seen = s
	})

	res := l.BuyStock("X", 1, d("100"))
	require.True(t, res.Success)

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, seen.AvailableCash.Equal(d("9899.874829")))
	assert.Equal(t, 1, seen.TotalPositions)
}

func TestListeners_Remove(t *testing.T) {
	l := newTestLedger(t)

	var calls atomic.Int32
	id := l.AddListener(func(model.PortfolioSummary) { calls.Add(1) })
	assert.Equal(t, 1, l.ListenerCount())

	require.True(t, l.BuyStock("X", 1, d("10")).Success)
	assert.True(t, l.RemoveListener(id))
	assert.False(t, l.RemoveListener(id))
	require.True(t, l.BuyStock("X", 1, d("10")).Success)

	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, l.ListenerCount())
}

func TestListeners_NotCalledOnRejection(t *testing.T) {
	l := newTestLedger(t)

	var calls atomic.Int32
	l.AddListener(func(model.PortfolioSummary) { calls.Add(1) })

	l.SellStock("X", 1, d("10"))
	l.BuyStock("X", 1000, d("1000"))

	assert.Zero(t, calls.Load())
}

func TestSubscribe_KeepsLatest(t *testing.T) {
	l := newTestLedger(t)

	ch, cancel := l.Subscribe(1)
	require.True(t, l.BuyStock("X", 1, d("10")).Success)
	require.True(t, l.BuyStock("X", 1, d("10")).Success)

	got := <-ch
	pos, _ := l.GetPosition("X")
	require.Len(t, got.Positions, 1)
	assert.Equal(t, pos.Quantity, got.Positions[0].Quantity)
	assert.Equal(t, l.GetPortfolioSummary().Version, got.Version)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, l.ListenerCount())
}

func TestSummary_VersionIncreases(t *testing.T) {
	l := newTestLedger(t)

	var versions []uint64
	l.AddListener(func(s model.PortfolioSummary) { versions = append(versions, s.Version) })

	require.True(t, l.BuyStock("X", 1, d("10")).Success)
	require.True(t, l.ClaimDailyReward().Success)
	l.UpdatePrices(map[string]decimal.Decimal{"X": d("12")})
	l.ClearAllData()

	require.Len(t, versions, 4)
	for i := 1; i < len(versions); i++ {
		assert.Greater(t, versions[i], versions[i-1])
	}
}
