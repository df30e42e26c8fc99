package ledger

import (
	"log"
	"sort"
	"sync"

	"PaperTrader/internal/model"
)

// Listener receives the portfolio summary after every mutation.
type Listener func(model.PortfolioSummary)

// ListenerID is the handle returned by AddListener.
type ListenerID uint64

type listenerSet struct {
	mu   sync.Mutex
	next ListenerID
	subs map[ListenerID]Listener
}

func newListenerSet() *listenerSet {
	return &listenerSet{subs: make(map[ListenerID]Listener)}
}

func (ls *listenerSet) add(fn Listener) ListenerID {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.next++
	ls.subs[ls.next] = fn
	return ls.next
}

func (ls *listenerSet) remove(id ListenerID) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	_, ok := ls.subs[id]
	delete(ls.subs, id)
	return ok
}

func (ls *listenerSet) len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.subs)
}

// notify calls every listener in registration order. A panicking listener
// is logged and skipped.
func (ls *listenerSet) notify(s model.PortfolioSummary) {
	ls.mu.Lock()
	ids := make([]ListenerID, 0, len(ls.subs))
	for id := range ls.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]Listener, len(ids))
	for i, id := range ids {
		fns[i] = ls.subs[id]
	}
	ls.mu.Unlock()

	for i, fn := range fns {
		ls.call(ids[i], fn, s)
	}
}

func (ls *listenerSet) call(id ListenerID, fn Listener, s model.PortfolioSummary) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] portfolio listener %d panicked: %v", id, r)
		}
	}()
	fn(s)
}

// AddListener registers fn and returns the id needed to remove it.
func (e *Engine) AddListener(fn Listener) ListenerID {
	return e.listeners.add(fn)
}

// RemoveListener unregisters id, reporting whether it was registered.
func (e *Engine) RemoveListener(id ListenerID) bool {
	return e.listeners.remove(id)
}

// ListenerCount is the number of registered listeners, channel subscribers included.
func (e *Engine) ListenerCount() int {
	return e.listeners.len()
}

// Subscribe delivers summaries on a buffered channel. When the subscriber
// falls behind the oldest pending summary is dropped. The returned cancel
// func unregisters and closes the channel; it is safe to call twice.
func (e *Engine) Subscribe(buffer int) (<-chan model.PortfolioSummary, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &chanSub{ch: make(chan model.PortfolioSummary, buffer)}
	id := e.listeners.add(sub.deliver)
	cancel := func() {
		e.listeners.remove(id)
		sub.close()
	}
	return sub.ch, cancel
}

type chanSub struct {
	mu     sync.Mutex
	ch     chan model.PortfolioSummary
	closed bool
}

func (c *chanSub) deliver(s model.PortfolioSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for {
		select {
		case c.ch <- s:
			return
		default:
		}
		select {
		case <-c.ch:
		default:
		}
	}
}

func (c *chanSub) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}
