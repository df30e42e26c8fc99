package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"PaperTrader/internal/calculator"
	"PaperTrader/internal/ledger"
	"PaperTrader/internal/model"
	"PaperTrader/internal/notifier"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newBuyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "buy SYMBOL QUANTITY PRICE",
		Short: "Buy shares at the given price",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrade(app, cmd, args, model.SideBuy)
		},
	}
}

func newSellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sell SYMBOL QUANTITY PRICE",
		Short: "Sell held shares at the given price",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrade(app, cmd, args, model.SideSell)
		},
	}
}

func runTrade(app *App, cmd *cobra.Command, args []string, side model.Side) error {
	qty, price, err := parseOrder(args[1], args[2])
	if err != nil {
		return err
	}
	return app.withEngine(func(_ context.Context, e *ledger.Engine) error {
		var res ledger.TradeResult
		if side == model.SideBuy {
			res = e.BuyStock(args[0], qty, price)
		} else {
			res = e.SellStock(args[0], qty, price)
		}
		if !res.Success {
			return fmt.Errorf("%s: %s", res.Error.Code, res.Error.Message)
		}
		printTrade(cmd.OutOrStdout(), *res.Trade)
		fmt.Fprintf(cmd.OutOrStdout(), "Cash balance: %s\n", notifier.FormatAmount(e.GetBalance()))
		return nil
	})
}

func newPreviewCmd(app *App) *cobra.Command {
	var sideFlag string

	cmd := &cobra.Command{
		Use:   "preview SYMBOL QUANTITY PRICE",
		Short: "Show the fee breakdown of a trade without booking it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, price, err := parseOrder(args[1], args[2])
			if err != nil {
				return err
			}
			side := model.Side(strings.ToUpper(sideFlag))
			return app.withEngine(func(_ context.Context, e *ledger.Engine) error {
				q, err := e.PreviewTrade(args[0], qty, price, side)
				if err != nil {
					return err
				}
				printQuote(cmd.OutOrStdout(), strings.ToUpper(args[0]), q)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&sideFlag, "side", "s", "BUY", "BUY or SELL")
	return cmd
}

func parseOrder(qtyArg, priceArg string) (int64, decimal.Decimal, error) {
	qty, err := strconv.ParseInt(qtyArg, 10, 64)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("bad quantity %q: %w", qtyArg, err)
	}
	price, err := decimal.NewFromString(priceArg)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("bad price %q: %w", priceArg, err)
	}
	return qty, price, nil
}

func printTrade(w io.Writer, r model.TradeRecord) {
	fmt.Fprintf(w, "%s %d %s @ %s\n", r.Side, r.Quantity, r.Symbol, notifier.FormatAmount(r.Price))
	fmt.Fprintf(w, "  Trade value: %s\n", notifier.FormatAmount(r.TradeValue))
	fmt.Fprintf(w, "  Brokerage:   %s\n", r.Brokerage.StringFixed(4))
	fmt.Fprintf(w, "  Taxes:       %s\n", r.Taxes.StringFixed(4))
	fmt.Fprintf(w, "  Net:         %s\n", r.TotalCost.StringFixed(4))
	if r.Side == model.SideSell {
		fmt.Fprintf(w, "  Realized:    %s\n", notifier.FormatSignedAmount(r.RealizedPnL))
	}
	fmt.Fprintf(w, "  Id:          %s\n", r.ID)
}

func printQuote(w io.Writer, symbol string, q calculator.TradeQuote) {
	fmt.Fprintf(w, "%s %d %s @ %s (preview)\n", q.Side, q.Quantity, symbol, notifier.FormatAmount(q.Price))
	fmt.Fprintf(w, "  Trade value: %s\n", q.TradeValue.String())
	fmt.Fprintf(w, "  Brokerage:   %s\n", q.Brokerage.String())
	fmt.Fprintf(w, "  STT:         %s\n", q.Taxes.STT.String())
	fmt.Fprintf(w, "  Exchange:    %s\n", q.Taxes.ExchangeCharges.String())
	fmt.Fprintf(w, "  GST:         %s\n", q.Taxes.GST.String())
	fmt.Fprintf(w, "  SEBI:        %s\n", q.Taxes.SEBICharges.String())
	fmt.Fprintf(w, "  Stamp duty:  %s\n", q.Taxes.StampDuty.String())
	fmt.Fprintf(w, "  Net:         %s\n", q.Net.String())
}
