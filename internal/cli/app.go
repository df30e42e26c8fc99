package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"PaperTrader/internal/config"
	"PaperTrader/internal/ledger"
	"PaperTrader/internal/notifier"
	"PaperTrader/internal/recorder"
	"PaperTrader/internal/remotesync"
	"PaperTrader/internal/session"
	"PaperTrader/internal/trace"
)

const version = "0.3.0"

// App carries the global flags and the collaborators built from config.
type App struct {
	ConfigPath string
	UserID     string

	Config   *config.Config
	Journal  recorder.Recorder
	Sync     *remotesync.Client
	Telegram *notifier.TelegramNotifier
	Sessions *session.Registry
}

// Setup loads config and wires storage, journal, sync and notifications.
func (a *App) Setup() error {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	a.Config = cfg
	notifier.SetCurrency(cfg.Ledger.Currency)

	if err := trace.Init(cfg.Tracing.Enabled, version); err != nil {
		log.Printf("[WARN] tracing disabled: %v", err)
	}

	if cfg.Journal.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Journal.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite journal failed, using noop: %v", err)
			a.Journal = recorder.NewNoopRecorder()
		} else {
			a.Journal = sr
		}
	} else {
		a.Journal = recorder.NewNoopRecorder()
	}

	bus := notifier.NewBus(notifier.LogSink{})
	if cfg.Telegram.BotToken != "" {
		a.Telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		bus.Add(a.Telegram)
	}

	deps := session.Deps{Journal: a.Journal, Emitter: bus}
	if cfg.Sync.BaseURL != "" {
		a.Sync = remotesync.NewClient(cfg.Sync.BaseURL, remotesync.StaticToken(cfg.Sync.Token), cfg.Sync.Timeout, cfg.Proxy)
		deps.Syncer = a.Sync
	}

	a.Sessions, err = session.NewRegistry(cfg, deps)
	if err != nil {
		a.Journal.Close()
		return fmt.Errorf("open storage: %w", err)
	}
	return nil
}

// Teardown flushes pending sync payloads and closes every handle.
func (a *App) Teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if a.Sync != nil {
		if err := a.Sync.Flush(ctx); err != nil {
			log.Printf("[WARN] remote sync: %v", err)
		}
	}
	if a.Sessions != nil {
		if err := a.Sessions.Close(); err != nil {
			log.Printf("[WARN] close storage: %v", err)
		}
	}
	if a.Journal != nil {
		a.Journal.Close()
	}
	if err := trace.Shutdown(ctx); err != nil {
		log.Printf("[WARN] trace shutdown: %v", err)
	}
}

// withEngine runs fn against the selected user's ledger.
func (a *App) withEngine(fn func(ctx context.Context, e *ledger.Engine) error) error {
	if err := a.Setup(); err != nil {
		return err
	}
	defer a.Teardown()

	e, err := a.Sessions.Open(a.UserID)
	if err != nil {
		return err
	}
	return fn(context.Background(), e)
}

var markup = strings.NewReplacer("<b>", "", "</b>", "")

// printPlain writes chat-formatted text without its HTML markup.
func printPlain(w io.Writer, text string) {
	fmt.Fprintln(w, markup.Replace(text))
}
