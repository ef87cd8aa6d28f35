package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/metrics"
	"github.com/google/uuid"
)

// DefaultTTL is how long an untouched session is kept.
const DefaultTTL = 30 * time.Minute

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store holds the live sessions and evicts the idle ones.
type Store struct {
	log     *slog.Logger
	metrics *metrics.Metrics
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewStore creates an empty store. A non-positive ttl falls back to DefaultTTL.
func NewStore(log *slog.Logger, metrics *metrics.Metrics, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store{
		log:      log,
		metrics:  metrics,
		ttl:      ttl,
		sessions: make(map[string]*entry),
	}
}

// New creates and registers a session with a random id.
func (st *Store) New() *Session {
	sess := newSession(uuid.NewString())

	st.mu.Lock()
	st.sessions[sess.id] = &entry{session: sess, lastSeen: time.Now()}
	count := len(st.sessions)
	st.mu.Unlock()

	st.metrics.SessionsActive.Set(float64(count))

	return sess
}

// Get returns the session with id and marks it as used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	item, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	item.lastSeen = time.Now()

	return item.session, nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}

// Sweep removes the sessions not used since now minus the TTL and returns how many were removed.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	removed := 0
	for id, item := range st.sessions {
		if now.Sub(item.lastSeen) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	count := len(st.sessions)
	st.mu.Unlock()

	st.metrics.SessionsActive.Set(float64(count))

	return removed
}

// Run evicts idle sessions every interval until ctx is cancelled.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	st.log.InfoContext(ctx, "Session sweeper started", "ttl", st.ttl, "interval", interval)

	for {
		select {
		case <-ctx.Done():
			st.log.InfoContext(ctx, "Session sweeper stopped.")
			return
		case now := <-ticker.C:
			if removed := st.Sweep(now); removed > 0 {
				st.log.DebugContext(ctx, "Expired sessions removed", "removed", removed, "active", st.Len())
			}
		}
	}
}
