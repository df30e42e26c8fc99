// Package session owns one ledger Engine per user. Each engine has its own
// lock and storage namespace; nothing is shared between users except the
// infrastructure handles passed to NewRegistry.
package session

import (
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"PaperTrader/internal/clock"
	"PaperTrader/internal/config"
	"PaperTrader/internal/ledger"
	"PaperTrader/internal/notifier"
	"PaperTrader/internal/recorder"
	"PaperTrader/internal/store"
)

var validUserID = regexp.MustCompile(`^[A-Za-z0-9_.@-]{1,64}$`)

// Deps are the shared collaborators handed to every engine.
type Deps struct {
	Journal recorder.Recorder
	Syncer  ledger.Syncer
	Emitter notifier.Emitter
	Clock   clock.Clock
}

// Registry maps user ids to open engines.
type Registry struct {
	cfg  *config.Config
	deps Deps

	mu      sync.Mutex
	engines map[string]*ledger.Engine
	kvs     map[string]store.KV
	sqlite  *store.SQLiteDB
}

// NewRegistry prepares the storage backend selected by cfg.Storage.Driver.
func NewRegistry(cfg *config.Config, deps Deps) (*Registry, error) {
	r := &Registry{
		cfg:     cfg,
		deps:    deps,
		engines: make(map[string]*ledger.Engine),
		kvs:     make(map[string]store.KV),
	}
	if cfg.Storage.Driver == "sqlite" {
		db, err := store.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		r.sqlite = db
	}
	return r, nil
}

// Open returns the user's engine, loading it from storage on first use.
func (r *Registry) Open(userID string) (*ledger.Engine, error) {
	if !validUserID.MatchString(userID) || strings.Trim(userID, ".") == "" {
		return nil, fmt.Errorf("invalid user id %q", userID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.engines[userID]; ok {
		return e, nil
	}

	kv, err := r.openKV(userID)
	if err != nil {
		return nil, fmt.Errorf("open store for %q: %w", userID, err)
	}
	loc, err := r.cfg.Location()
	if err != nil {
		return nil, err
	}

	opts := ledger.Options{
		UserID:         userID,
		InitialBalance: r.cfg.Ledger.InitialBalance,
		HistoryLimit:   r.cfg.Ledger.HistoryLimit,
		DailyBonus:     r.cfg.Rewards.DailyBonus,
		Fees:           r.cfg.Fees,
		Clock:          r.deps.Clock,
		Location:       loc,
		Store:          store.NewAdapter(kv),
		Syncer:         r.deps.Syncer,
		Emitter:        r.deps.Emitter,
	}
	if r.deps.Journal != nil {
		opts.Journal = r.deps.Journal
	}
	e := ledger.New(opts)

	r.engines[userID] = e
	r.kvs[userID] = kv
	log.Printf("[INFO] session opened for %q (storage=%s)", userID, r.cfg.Storage.Driver)
	return e, nil
}

func (r *Registry) openKV(userID string) (store.KV, error) {
	switch r.cfg.Storage.Driver {
	case "sqlite":
		return r.sqlite.Namespace(userID), nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewFileStore(filepath.Join(r.cfg.Storage.Dir, userID))
	}
}

// Users lists the ids of open sessions, sorted.
func (r *Registry) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.engines))
	for id := range r.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Each calls fn for every open session.
func (r *Registry) Each(fn func(userID string, e *ledger.Engine)) {
	for _, id := range r.Users() {
		r.mu.Lock()
		e := r.engines[id]
		r.mu.Unlock()
		if e != nil {
			fn(id, e)
		}
	}
}

// Close releases storage handles. Engines must not be used afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for id, kv := range r.kvs {
		if err := kv.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close store for %q: %w", id, err)
		}
	}
	if r.sqlite != nil {
		if err := r.sqlite.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.engines = make(map[string]*ledger.Engine)
	r.kvs = make(map[string]store.KV)
	return firstErr
}
