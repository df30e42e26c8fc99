package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"PaperTrader/internal/ledger"
	"PaperTrader/internal/notifier"
	"PaperTrader/internal/trace"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
)

// Sessions is the subset of the session registry the scheduler needs.
type Sessions interface {
	Open(userID string) (*ledger.Engine, error)
	Each(fn func(userID string, e *ledger.Engine))
}

// Retrier re-sends pending remote sync payloads.
type Retrier interface {
	RetryPending(ctx context.Context)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Sessions Sessions
	Sync     Retrier
	// DefaultUser answers chat commands.
	DefaultUser string
	Ctx         context.Context
}

// NewScheduler creates a new Scheduler. sync may be nil when remote sync is disabled.
func NewScheduler(ctx context.Context, sessions Sessions, sync Retrier, defaultUser string) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Sessions:    sessions,
		Sync:        sync,
		DefaultUser: defaultUser,
		Ctx:         ctx,
	}
}

// RegisterAll registers the daily login sweep and the sync retry.
func (s *Scheduler) RegisterAll(dailyLoginCron, syncRetryCron string) error {
	if _, err := s.Cron.AddFunc(dailyLoginCron, s.dailyLoginTask); err != nil {
		return fmt.Errorf("register daily login task: %w", err)
	}
	if s.Sync != nil {
		if _, err := s.Cron.AddFunc(syncRetryCron, s.syncRetryTask); err != nil {
			return fmt.Errorf("register sync retry task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunDailyLoginNow runs the login sweep immediately.
func (s *Scheduler) RunDailyLoginNow() {
	s.dailyLoginTask()
}

// dailyLoginTask credits the login bonus to every open session that has
// not received it yet today.
func (s *Scheduler) dailyLoginTask() {
	_, span := trace.StartSpan(s.Ctx, "scheduler.dailyLogin")
	defer span.End()

	log.Println("[INFO] running daily login task")
	awarded := 0
	s.Sessions.Each(func(userID string, e *ledger.Engine) {
		res := e.CheckDailyLogin()
		if res.Awarded {
			awarded++
			log.Printf("[INFO] login bonus for %q, streak %d", userID, res.Streak)
		}
	})
	span.SetAttributes(attribute.Int("awarded", awarded))
}

func (s *Scheduler) syncRetryTask() {
	ctx, span := trace.StartSpan(s.Ctx, "scheduler.syncRetry")
	defer span.End()
	s.Sync.RetryPending(ctx)
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	e, err := s.Sessions.Open(s.DefaultUser)
	if err != nil {
		log.Printf("[ERROR] open session %q: %v", s.DefaultUser, err)
		return "❌ ledger unavailable"
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	switch strings.ToLower(fields[0]) {
	case "/portfolio":
		return notifier.FormatPortfolio(e.GetPortfolioSummary())
	case "/rewards":
		return notifier.FormatRewards(e.GetDailyRewardsInfo())
	case "/claim":
		res := e.ClaimDailyReward()
		if !res.Success {
			return fmt.Sprintf("⏳ %s\n\n%s", res.Error.Message, notifier.FormatRewards(e.GetDailyRewardsInfo()))
		}
		// the reward event itself is delivered by the emitter
		return ""
	case "/history":
		return notifier.FormatHistory(e.GetTradeHistory(10))
	default:
		return "Commands:\n• /portfolio\n• /rewards\n• /claim\n• /history"
	}
}
