package pipeline

import "sync"

// Subscription is a handle returned by Signals.Connect.
type Subscription struct {
	id uint64
}

// Signals dispatches the "preview pipeline finished" notification to its
// subscribers. Handlers run synchronously on the goroutine calling Emit, in
// subscription order; the UI integration is expected to call Emit from its
// own event loop.
type Signals struct {
	mu       sync.Mutex
	next     uint64
	handlers []subscriber
}

type subscriber struct {
	id uint64
	fn func()
}

// Connect registers fn and returns its subscription.
func (s *Signals) Connect(fn func()) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.handlers = append(s.handlers, subscriber{id: s.next, fn: fn})
	return &Subscription{id: s.next}
}

// Disconnect removes the subscription. Disconnecting twice or a nil
// subscription is a no-op.
func (s *Signals) Disconnect(sub *Subscription) {
	if sub == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, h := range s.handlers {
		if h.id == sub.id {
			s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
			return
		}
	}
}

// Len returns the number of connected handlers.
func (s *Signals) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// Emit calls every connected handler.
func (s *Signals) Emit() {
	s.mu.Lock()
	handlers := make([]subscriber, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	for _, h := range handlers {
		h.fn()
	}
}
