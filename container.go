package authstate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	internalaudit "github.com/MrEthical07/authstate/internal/audit"
	"github.com/MrEthical07/authstate/jwt"
	"github.com/MrEthical07/authstate/observability"
	"github.com/MrEthical07/authstate/session"
)

// Container owns one [Session] and serializes every change to it.
//
// GetState, Subscribe and the returned Unsubscribe never block on Dispatch,
// so listeners may call them while being notified.
type Container struct {
	config   Config
	metrics  *Metrics
	observer observability.Observer
	audit    *internalaudit.Dispatcher
	tokens   *jwt.Manager

	// mu serializes the apply-store-notify sequence of Dispatch.
	mu sync.Mutex
	// notifying is set while mu's holder runs listeners.
	notifying atomic.Bool
	state     atomic.Pointer[session.Session]
	revision  atomic.Uint64
	closed    atomic.Bool

	subsMu sync.Mutex
	subs   []*subscription
	nextID uint64
}

type subscription struct {
	id       uint64
	listener Listener
	active   atomic.Bool
}

// GetState returns a copy of the current session. It never fails; a nil
// container reports the initial Anonymous session.
func (c *Container) GetState() Session {
	if c == nil {
		return session.Initial()
	}
	return c.state.Load().Clone()
}

// Revision returns the number of committed transitions.
func (c *Container) Revision() uint64 {
	if c == nil {
		return 0
	}
	return c.revision.Load()
}

// Subscribe registers fn to run after every committed transition. Listeners
// run in registration order. A listener added during a notification first
// runs on the next transition.
func (c *Container) Subscribe(fn Listener) Unsubscribe {
	if c == nil || fn == nil {
		return func() {}
	}

	c.subsMu.Lock()
	c.nextID++
	sub := &subscription{id: c.nextID, listener: fn}
	sub.active.Store(true)
	c.subs = append(c.subs, sub)
	count := len(c.subs)
	c.subsMu.Unlock()

	c.metrics.Inc(MetricSubscribe)
	c.observe(context.Background(), observability.EventSubscribe, observability.LevelVerbose, map[string]any{
		"subscription": sub.id,
		"listeners":    count,
	})

	return func() { c.unsubscribe(sub) }
}

func (c *Container) unsubscribe(sub *subscription) {
	if !sub.active.CompareAndSwap(true, false) {
		return
	}

	c.subsMu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			break
		}
	}
	count := len(c.subs)
	c.subsMu.Unlock()

	c.metrics.Inc(MetricUnsubscribe)
	c.observe(context.Background(), observability.EventUnsubscribe, observability.LevelVerbose, map[string]any{
		"subscription": sub.id,
		"listeners":    count,
	})
}

// Listeners returns the number of registered listeners.
func (c *Container) Listeners() int {
	if c == nil {
		return 0
	}
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	return len(c.subs)
}

// Dispatch applies req and, on success, notifies every listener registered at
// the time of the call before returning.
//
// Rejected requests leave the session untouched and notify nobody. Errors:
// [ErrInvalidTransitionRequest] for an establish without a usable identity,
// [ErrUnknownTransitionKind] for a nil request, [ErrReentrantDispatch] when
// called while this container is notifying listeners, and
// [ErrContainerClosed] after Close.
//
// A notification pass cannot tell its own listeners apart from other
// goroutines, so a Dispatch from any goroutine that arrives while listeners
// are running fails with [ErrReentrantDispatch]. Callers that dispatch
// concurrently with a listener-bearing container may retry on it.
func (c *Container) Dispatch(ctx context.Context, req Request) error {
	if c == nil {
		return ErrContainerNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if isNotifying(ctx, c) {
		return c.rejectReentrant(ctx, req)
	}
	if c.closed.Load() {
		return ErrContainerClosed
	}

	if !c.mu.TryLock() {
		if c.notifying.Load() {
			return c.rejectReentrant(ctx, req)
		}
		c.mu.Lock()
	}
	defer c.mu.Unlock()

	start := time.Now()
	cur := *c.state.Load()
	next, err := session.Apply(cur, req)
	if err != nil {
		c.rejected(ctx, req, err)
		return err
	}

	c.state.Store(&next)
	rev := c.revision.Add(1)

	// The commit is recorded even when a listener panics.
	notified := 0
	defer func() {
		c.committed(ctx, req, next, rev, notified, time.Since(start))
	}()
	c.notify(ctx, next, &notified)

	return nil
}

func (c *Container) rejectReentrant(ctx context.Context, req Request) error {
	c.metrics.Inc(MetricDispatchReentrant)
	c.rejected(ctx, req, ErrReentrantDispatch)
	return ErrReentrantDispatch
}

// DispatchEnvelope decodes env and dispatches the resulting request.
func (c *Container) DispatchEnvelope(ctx context.Context, env Envelope) error {
	req, err := env.Request()
	if err != nil {
		if c != nil {
			c.rejectedKind(ctx, env.Kind, err)
		}
		return err
	}
	return c.Dispatch(ctx, req)
}

// Establish dispatches an establish request for a copy of id.
func (c *Container) Establish(ctx context.Context, id Identity) error {
	return c.Dispatch(ctx, session.EstablishIdentity(id))
}

// Clear dispatches a clear request.
func (c *Container) Clear(ctx context.Context) error {
	return c.Dispatch(ctx, session.Clear{})
}

// notify runs the listeners registered when it starts and counts them in
// notified. A listener removed mid-notification is skipped if it has not run
// yet.
func (c *Container) notify(ctx context.Context, s session.Session, notified *int) {
	c.subsMu.Lock()
	snapshot := make([]*subscription, len(c.subs))
	copy(snapshot, c.subs)
	c.subsMu.Unlock()

	if len(snapshot) == 0 {
		return
	}

	c.notifying.Store(true)
	defer c.notifying.Store(false)

	lctx := withNotifying(ctx, c)
	for _, sub := range snapshot {
		if !sub.active.Load() {
			continue
		}
		sub.listener(lctx, s.Clone())
		c.metrics.Inc(MetricListenerNotified)
		*notified++
	}
}

// Close stops the audit dispatcher after flushing queued events. Later
// dispatches fail with [ErrContainerClosed]; reads and subscriptions keep
// working. Close is idempotent.
func (c *Container) Close() {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.audit.Close()
	c.observe(context.Background(), observability.EventClose, observability.LevelInfo, map[string]any{
		"revision": c.revision.Load(),
	})
}

// MetricsSnapshot returns a copy of the container counters.
func (c *Container) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return c.metrics.Snapshot()
}

// AuditDropped reports audit events dropped because the buffer was full.
func (c *Container) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}
