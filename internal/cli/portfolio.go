package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PaperTrader/internal/ledger"
	"PaperTrader/internal/model"
	"PaperTrader/internal/notifier"

	"github.com/spf13/cobra"
)

func newPortfolioCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show cash, open positions and P&L",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(func(_ context.Context, e *ledger.Engine) error {
				s := e.GetPortfolioSummary()
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(s)
				}
				printPlain(cmd.OutOrStdout(), notifier.FormatPortfolio(s))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var (
		limit   int
		all     bool
		balance bool
		symbol  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List booked trades and bonuses, newest first",
		Long: `History lists the most recent entries kept with the ledger.

With --all the SQLite journal is queried instead, which keeps every entry
ever booked (journal.sqlite_path must be configured). --balance prints the
cash balance after each journaled entry, oldest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(func(ctx context.Context, e *ledger.Engine) error {
				if balance {
					points, err := app.Journal.BalanceHistory(ctx, e.UserID(), limit)
					if err != nil {
						return fmt.Errorf("query balance history: %w", err)
					}
					if len(points) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No journaled balance changes.")
						return nil
					}
					for _, p := range points {
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %-5s %s  %s\n",
							time.UnixMilli(p.Timestamp).Format("2006-01-02 15:04"), p.Side, p.TradeID, notifier.FormatAmount(p.Balance))
					}
					return nil
				}

				var (
					recs []model.TradeRecord
					err  error
				)
				if all || symbol != "" {
					recs, err = app.Journal.ListTrades(ctx, e.UserID(), symbol, limit)
					if err != nil {
						return fmt.Errorf("query journal: %w", err)
					}
				} else {
					recs = e.GetTradeHistory(limit)
				}
				printPlain(cmd.OutOrStdout(), notifier.FormatHistory(recs))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries (0 for all)")
	cmd.Flags().BoolVar(&all, "all", false, "read the full journal")
	cmd.Flags().BoolVar(&balance, "balance", false, "print the cash balance after each journaled entry")
	cmd.Flags().StringVar(&symbol, "symbol", "", "journal entries for one symbol only")
	return cmd
}

func newRewardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reward",
		Short: "Daily login bonus",
	}

	claim := &cobra.Command{
		Use:   "claim",
		Short: "Claim today's bonus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(func(_ context.Context, e *ledger.Engine) error {
				res := e.ClaimDailyReward()
				if !res.Success {
					return fmt.Errorf("%s: %s", res.Error.Code, res.Error.Message)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Claimed %s, streak %d day(s), cash %s\n",
					notifier.FormatAmount(res.Amount), res.Streak, notifier.FormatAmount(res.Balance))
				return nil
			})
		},
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Record today's login, crediting the bonus once per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(func(_ context.Context, e *ledger.Engine) error {
				res := e.CheckDailyLogin()
				if res.AlreadyClaimed {
					fmt.Fprintln(cmd.OutOrStdout(), "Bonus already credited today")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Welcome back! %s credited, streak %d day(s)\n",
					notifier.FormatAmount(res.Amount), res.Streak)
				return nil
			})
		},
	}

	info := &cobra.Command{
		Use:   "info",
		Short: "Show streak and time until the next bonus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEngine(func(_ context.Context, e *ledger.Engine) error {
				ri := e.GetDailyRewardsInfo()
				printPlain(cmd.OutOrStdout(), notifier.FormatRewards(ri))
				if !ri.CanClaimToday {
					fmt.Fprintf(cmd.OutOrStdout(), "Unlocks at %s\n", ri.NextRewardAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}

	cmd.AddCommand(claim, login, info)
	return cmd
}
