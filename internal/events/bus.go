// Package events implements the change notification bus that tells every
// observer to re-read the repositories after a mutation.
//
// Delivery is synchronous and ordered: Publish calls every registered
// handler, in registration order, before it returns. A handler that
// publishes while a delivery is in progress does not recurse; its signal
// is queued and delivered in the next round, still inside the outermost
// Publish. Each round is one level of cascade; a drain that is still
// producing signals after MaxCascade rounds is cut off.
package events

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mesh-intelligence/docshelf/internal/metrics"
	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// DefaultMaxCascade bounds the cascade depth one drain may reach.
const DefaultMaxCascade = 32

// Handler receives a signal. It must re-read state rather than trust the
// signal to describe what changed.
type Handler func(types.Signal)

type subscription struct {
	id      uint64
	handler Handler
	active  atomic.Bool
}

// Bus is a publish/subscribe hub for change signals.
type Bus struct {
	mu       sync.Mutex
	subs     []*subscription
	nextID   uint64
	queue    []types.Signal
	draining bool

	maxCascade int
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for dropped signals and handler panics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// WithMetrics records deliveries and subscriber counts in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) { b.metrics = m }
}

// WithMaxCascade overrides DefaultMaxCascade.
func WithMaxCascade(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxCascade = n
		}
	}
}

// New returns an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		maxCascade: DefaultMaxCascade,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h and returns the function that removes it. The
// cancel function is idempotent; once it returns, h is never called again.
func (b *Bus) Subscribe(h Handler) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	s := &subscription{id: b.nextID, handler: h}
	s.active.Store(true)
	b.subs = append(b.subs, s)
	n := len(b.subs)
	b.mu.Unlock()
	b.metrics.Subscribers(n)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(s) })
	}
}

func (b *Bus) remove(s *subscription) {
	s.active.Store(false)
	b.mu.Lock()
	for i, cur := range b.subs {
		if cur.id == s.id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			break
		}
	}
	n := len(b.subs)
	b.mu.Unlock()
	b.metrics.Subscribers(n)
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish delivers s to every subscriber. When a drain is already running,
// whether s comes from inside a handler or from another goroutine, s is
// queued for the next round and Publish returns nil at once; the caller
// does not wait for that delivery.
//
// A round delivers every signal queued when it starts. Signals published
// during a round form the next one, so MaxCascade caps the depth of a
// cascade, not its width. The outermost call returns types.ErrSignalStorm
// when a round beyond the cap still has signals; those are dropped.
func (b *Bus) Publish(s types.Signal) error {
	b.mu.Lock()
	b.queue = append(b.queue, s)
	if b.draining {
		b.mu.Unlock()
		return nil
	}
	b.draining = true

	rounds := 0
	for len(b.queue) > 0 {
		if rounds >= b.maxCascade {
			dropped := len(b.queue)
			b.queue = nil
			b.draining = false
			b.mu.Unlock()

			b.metrics.SignalsDropped(dropped)
			b.logger.Error("signal cascade limit reached",
				"rounds", rounds, "dropped", dropped)
			return fmt.Errorf("%w: %d signals dropped after %d rounds",
				types.ErrSignalStorm, dropped, rounds)
		}
		round := b.queue
		b.queue = nil
		b.mu.Unlock()

		for _, next := range round {
			b.mu.Lock()
			subs := append([]*subscription(nil), b.subs...)
			b.mu.Unlock()
			b.deliver(next, subs)
		}
		rounds++

		b.mu.Lock()
	}
	b.draining = false
	b.mu.Unlock()
	return nil
}

func (b *Bus) deliver(s types.Signal, subs []*subscription) {
	for _, sub := range subs {
		if !sub.active.Load() {
			continue
		}
		b.call(sub, s)
	}
	b.metrics.SignalDelivered(string(s.Kind))
}

// call runs one handler; a panic is logged and does not stop the round.
func (b *Bus) call(sub *subscription, s types.Signal) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("signal handler panicked",
				"subscription", sub.id, "kind", s.Kind, "panic", r)
		}
	}()
	sub.handler(s)
}
