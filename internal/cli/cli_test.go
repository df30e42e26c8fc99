package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := "storage:\n  driver: file\n  dir: " + filepath.Join(dir, "ledgers") + "\n" +
		"journal:\n  sqlite_path: " + filepath.Join(dir, "journal.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(&App{})
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath, "--user", "alice"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_BuySellPortfolio(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "buy", "x", "1", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "BUY 1 X @ ₹100.00")
	assert.Contains(t, out, "Net:         100.1252")
	assert.Contains(t, out, "Cash balance: ₹9,899.87")

	out, err = run(t, cfg, "portfolio")
	require.NoError(t, err)
	assert.Contains(t, out, "X ×1")
	assert.NotContains(t, out, "<b>")

	out, err = run(t, cfg, "sell", "X", "1", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Realized:    -₹0.27")

	out, err = run(t, cfg, "history", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "SELL 1 X")
	assert.Contains(t, out, "BUY 1 X")
}

func TestCLI_RejectedTrade(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "buy", "X", "10", "2847.65")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSUFFICIENT_FUNDS")

	_, err = run(t, cfg, "sell", "X", "1", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSUFFICIENT_HOLDINGS")

	_, err = run(t, cfg, "buy", "X", "one", "10")
	assert.Error(t, err)
}

func TestCLI_Rewards(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "reward", "claim")
	require.NoError(t, err)
	assert.Contains(t, out, "Claimed ₹100.00, streak 1")

	_, err = run(t, cfg, "reward", "claim")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALREADY_CLAIMED_TODAY")

	out, err = run(t, cfg, "reward", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "already credited")

	out, err = run(t, cfg, "reward", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Unlocks at")
}

func TestCLI_HistoryBalance(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "history", "--balance")
	require.NoError(t, err)
	assert.Contains(t, out, "No journaled balance changes.")

	_, err = run(t, cfg, "buy", "X", "1", "100")
	require.NoError(t, err)
	_, err = run(t, cfg, "reward", "claim")
	require.NoError(t, err)

	out, err = run(t, cfg, "history", "--balance")
	require.NoError(t, err)
	buyAt := strings.Index(out, "₹9,899.87")
	bonusAt := strings.Index(out, "₹9,999.87")
	require.GreaterOrEqual(t, buyAt, 0, out)
	require.GreaterOrEqual(t, bonusAt, 0, out)
	assert.Less(t, buyAt, bonusAt)
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "BONUS")

	out, err = run(t, cfg, "history", "--balance", "-n", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "₹9,899.87")
	assert.Contains(t, out, "₹9,999.87")
}

func TestCLI_PreviewAndReset(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "preview", "X", "1", "100", "--side", "sell")
	require.NoError(t, err)
	assert.Contains(t, out, "STT:         0.025")
	assert.Contains(t, out, "Net:         99.852829")

	_, err = run(t, cfg, "buy", "X", "1", "100")
	require.NoError(t, err)

	_, err = run(t, cfg, "reset")
	assert.Error(t, err)

	out, err = run(t, cfg, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "₹10,000.00")
}

func TestParseQuotes(t *testing.T) {
	q, err := parseQuotes([]string{"RELIANCE=2501.25", "tcs=3890"})
	require.NoError(t, err)
	assert.True(t, q["RELIANCE"].Equal(decimal.RequireFromString("2501.25")))
	assert.True(t, q["tcs"].Equal(decimal.NewFromInt(3890)))

	for _, bad := range []string{"RELIANCE", "=10", "X=abc", "X=0", "X=-1"} {
		_, err := parseQuotes([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestCLI_PriceSet(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, cfg, "buy", "X", "10", "100")
	require.NoError(t, err)

	out, err := run(t, cfg, "price", "set", "X=110")
	require.NoError(t, err)
	assert.Contains(t, out, "₹1,100.00")
}
