package cli

import (
	"context"
	"fmt"
	"strings"

	"PaperTrader/internal/ledger"
	"PaperTrader/internal/notifier"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Mark positions to market",
	}

	set := &cobra.Command{
		Use:   "set SYMBOL=PRICE...",
		Short: "Apply quotes and print the revalued portfolio",
		Long: `Quotes live only for the lifetime of the process, so set prints the
portfolio valued with them before exiting.

Example:
  papertrader price set RELIANCE=2501.25 TCS=3890`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quotes, err := parseQuotes(args)
			if err != nil {
				return err
			}
			return app.withEngine(func(_ context.Context, e *ledger.Engine) error {
				e.UpdatePrices(quotes)
				printPlain(cmd.OutOrStdout(), notifier.FormatPortfolio(e.GetPortfolioSummary()))
				return nil
			})
		},
	}

	cmd.AddCommand(set)
	return cmd
}

func parseQuotes(args []string) (map[string]decimal.Decimal, error) {
	quotes := make(map[string]decimal.Decimal, len(args))
	for _, arg := range args {
		sym, px, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(sym) == "" {
			return nil, fmt.Errorf("bad quote %q, want SYMBOL=PRICE", arg)
		}
		d, err := decimal.NewFromString(px)
		if err != nil {
			return nil, fmt.Errorf("bad price in %q: %w", arg, err)
		}
		if !d.IsPositive() {
			return nil, fmt.Errorf("price in %q must be positive", arg)
		}
		quotes[sym] = d
	}
	return quotes, nil
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all positions and history and restore the initial balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset discards the whole ledger; pass --yes to confirm")
			}
			return app.withEngine(func(_ context.Context, e *ledger.Engine) error {
				e.ClearAllData()
				fmt.Fprintf(cmd.OutOrStdout(), "Ledger for %q reset, cash %s\n", e.UserID(), notifier.FormatAmount(e.GetBalance()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
