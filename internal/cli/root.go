package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// New builds the papertrader command tree.
func New(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "papertrader",
		Short: "A virtual stock trading ledger with Indian market fees",
		Long: `PaperTrader simulates buying and selling stocks with virtual cash.

Every trade is charged brokerage and statutory taxes (STT, exchange
charges, GST, SEBI fees, stamp duty). Holdings are tracked at average
cost, a daily login bonus is credited once per calendar day, and the
ledger is saved after every change.

Example:
  papertrader buy RELIANCE 5 2450.50
  papertrader portfolio`,
		SilenceUsage: true,
	}

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	defaultUser := "local"
	if v := os.Getenv("PAPERTRADER_USER"); v != "" {
		defaultUser = v
	}
	root.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", defaultConfig, "path to YAML config")
	root.PersistentFlags().StringVarP(&app.UserID, "user", "u", defaultUser, "ledger owner id")

	root.AddCommand(
		newBuyCmd(app),
		newSellCmd(app),
		newPreviewCmd(app),
		newPortfolioCmd(app),
		newHistoryCmd(app),
		newRewardCmd(app),
		newPriceCmd(app),
		newResetCmd(app),
		newServeCmd(app),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI with a fresh App.
func Execute() error {
	return New(&App{}).Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "papertrader version %s\n", version)
		},
	}
}
