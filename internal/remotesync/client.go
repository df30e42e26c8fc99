// Package remotesync pushes the reduced balance snapshot to the remote
// authority. Pushes never block the ledger: only the newest pending
// payload is kept and a failed send stays pending until it is retried or
// superseded, so the remote copy is stale for at most one retry interval.
package remotesync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"PaperTrader/internal/model"
	"PaperTrader/internal/trace"

	"go.opentelemetry.io/otel/attribute"
)

// TokenSource supplies the bearer credential for a user. Authentication is
// owned by the caller.
type TokenSource func(userID string) (string, error)

// StaticToken returns the same token for every user.
func StaticToken(token string) TokenSource {
	return func(string) (string, error) { return token, nil }
}

// ErrNoToken is returned when the token source has nothing for the user.
var ErrNoToken = errors.New("no sync token")

// wireBody is the POST /sync-balance request body.
type wireBody struct {
	Balance       json.Number `json:"balance"`
	TotalRewards  json.Number `json:"totalRewards"`
	LoginStreak   int         `json:"loginStreak"`
	LastClaimDate *string     `json:"lastClaimDate"`
}

func toWire(p model.BalanceSync) wireBody {
	b := wireBody{
		Balance:      json.Number(p.Balance.String()),
		TotalRewards: json.Number(p.TotalRewards.String()),
		LoginStreak:  p.LoginStreak,
	}
	if p.LastClaimDate != nil {
		s := p.LastClaimDate.String()
		b.LastClaimDate = &s
	}
	return b
}

// Client is a last-write-wins sync worker.
type Client struct {
	BaseURL string
	Token   TokenSource
	HTTP    *http.Client

	mu      sync.Mutex
	pending map[string]model.BalanceSync
	wake    chan struct{}
}

// NewClient creates a client with optional proxy support.
func NewClient(baseURL string, token TokenSource, timeout time.Duration, proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout, Transport: transport},
		pending: make(map[string]model.BalanceSync),
		wake:    make(chan struct{}, 1),
	}
}

// Push replaces the pending payload for the user and wakes the worker.
func (c *Client) Push(p model.BalanceSync) {
	c.mu.Lock()
	c.pending[p.UserID] = p
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many users have an unsent payload.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Run sends pending payloads whenever Push wakes it, until ctx is done.
func (c *Client) Run(ctx context.Context) {
	log.Println("[INFO] remote sync worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] remote sync worker stopped")
			return
		case <-c.wake:
			c.drain(ctx)
		}
	}
}

// RetryPending re-sends whatever is still pending.
func (c *Client) RetryPending(ctx context.Context) {
	if c.Pending() == 0 {
		return
	}
	c.drain(ctx)
}

// Flush synchronously sends pending payloads; used by short-lived processes before exit.
func (c *Client) Flush(ctx context.Context) error {
	if failed := c.drain(ctx); failed > 0 {
		return fmt.Errorf("%d sync payload(s) still pending", failed)
	}
	return nil
}

// drain sends one snapshot of the pending set. A payload is removed only if
// no newer one was pushed while it was in flight.
func (c *Client) drain(ctx context.Context) int {
	c.mu.Lock()
	batch := make([]model.BalanceSync, 0, len(c.pending))
	for _, p := range c.pending {
		batch = append(batch, p)
	}
	c.mu.Unlock()

	failed := 0
	for _, p := range batch {
		if err := c.send(ctx, p); err != nil {
			failed++
			log.Printf("[WARN] sync balance for %q failed, will retry: %v", p.UserID, err)
			continue
		}
		c.mu.Lock()
		if cur, ok := c.pending[p.UserID]; ok && sameSync(cur, p) {
			delete(c.pending, p.UserID)
		}
		c.mu.Unlock()
	}
	return failed
}

func (c *Client) send(ctx context.Context, p model.BalanceSync) (err error) {
	ctx, span := trace.StartSpan(ctx, "remotesync.send", attribute.String("user_id", p.UserID))
	defer func() {
		trace.Fail(span, err)
		span.End()
	}()

	if c.BaseURL == "" {
		return errors.New("sync base url not configured")
	}
	token := ""
	if c.Token != nil {
		if token, err = c.Token(p.UserID); err != nil {
			return fmt.Errorf("get token: %w", err)
		}
	}
	if token == "" {
		return ErrNoToken
	}

	body, err := json.Marshal(toWire(p))
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/sync-balance", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("post sync-balance: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sync-balance: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	log.Printf("[INFO] balance synced for %q: %s", p.UserID, p.Balance)
	return nil
}

func sameSync(a, b model.BalanceSync) bool {
	if !a.Balance.Equal(b.Balance) || !a.TotalRewards.Equal(b.TotalRewards) || a.LoginStreak != b.LoginStreak {
		return false
	}
	if (a.LastClaimDate == nil) != (b.LastClaimDate == nil) {
		return false
	}
	return a.LastClaimDate == nil || *a.LastClaimDate == *b.LastClaimDate
}
