package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PaperTrader/internal/scheduler"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var loginOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daily login job, remote sync and Telegram commands until stopped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Setup(); err != nil {
				return err
			}
			defer app.Teardown()

			// The default user is always served; others join as they are opened.
			if _, err := app.Sessions.Open(app.UserID); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var retrier scheduler.Retrier
			if app.Sync != nil {
				retrier = app.Sync
				go app.Sync.Run(ctx)
			}

			sched := scheduler.NewScheduler(ctx, app.Sessions, retrier, app.UserID)
			if err := sched.RegisterAll(app.Config.Schedule.DailyLoginCron, app.Config.Sync.RetryCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if app.Telegram != nil {
				go app.Telegram.StartPolling(ctx, sched.HandleCommand)
				log.Println("[INFO] Telegram polling started")
			}

			if loginOnStart {
				sched.RunDailyLoginNow()
			}

			log.Println("[INFO] PaperTrader is running. Press Ctrl+C to stop.")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			log.Println("[INFO] shutdown signal received, stopping...")
			cancel()
			return nil
		},
	}
	cmd.Flags().BoolVar(&loginOnStart, "login-on-start", os.Getenv("RUN_ON_START") == "true", "run the daily login check immediately")
	return cmd
}
