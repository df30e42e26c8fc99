// Package clock defines the time source used for reward day boundaries.
//
// A calendar day is always evaluated in an explicit *time.Location; the
// ledger never relies on the process-local zone implicitly.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock, reported in Location (UTC when nil).
type System struct {
	Location *time.Location
}

func (s System) Now() time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// Fixed is a manually driven clock for tests and replays.
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{t: t} }

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

// LoadLocation resolves an IANA zone name; "" and "UTC" both mean UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
