package service

import "sync"

// PendingFeed is an in-process broadcast hub for pending-queue changes.
// Services call Notify after any write that changes the set of pending
// accounts; the watch endpoint subscribes and re-reads the queue on each
// tick. Only the fact that something changed crosses the channel, never the
// data itself, so a slow subscriber can only miss intermediate states, not
// see stale ones.
type PendingFeed struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewPendingFeed() *PendingFeed {
	return &PendingFeed{
		subs: make(map[chan struct{}]struct{}),
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the subscriber goes away, typically via defer in the SSE handler.
func (f *PendingFeed) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		delete(f.subs, ch)
		f.mu.Unlock()
	}
	return ch, cancel
}

// Notify wakes every subscriber. Non-blocking: a subscriber with a pending
// wakeup already queued is left alone, it will re-read anyway.
func (f *PendingFeed) Notify() {
	if f == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
