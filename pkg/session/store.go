package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	lenserr "github.com/matzehuels/lens/pkg/errors"
	"github.com/matzehuels/lens/pkg/observability"
)

// Close reasons reported to observability hooks.
const (
	ReasonDeleted = "deleted"
	ReasonExpired = "expired"
)

// Store is an in-memory registry of live sessions. Simulations hold pointer
// state and cannot be shared across processes, so there is no remote backend.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store. A non-positive ttl means DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{sessions: make(map[string]*Session), ttl: ttl, now: time.Now}
}

func (st *Store) clock() time.Time { return st.now() }

// Create starts a session for p.
func (st *Store) Create(ctx context.Context, p Params) (*Session, error) {
	sess, err := newSession(uuid.NewString(), p, st.ttl, st.clock)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	observability.Session().OnSessionOpen(ctx, p.AssetID)
	return sess, nil
}

// Get returns a live session. Expired sessions are removed and reported as
// not found.
func (st *Store) Get(ctx context.Context, id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, lenserr.New(lenserr.ErrCodeSessionNotFound, "session %q not found", id)
	}
	if sess.Expired(st.now()) {
		st.remove(ctx, id, ReasonExpired)
		return nil, lenserr.New(lenserr.ErrCodeSessionNotFound, "session %q expired", id)
	}
	return sess, nil
}

// Delete ends a session. Deleting an unknown session is not an error.
func (st *Store) Delete(ctx context.Context, id string) error {
	st.remove(ctx, id, ReasonDeleted)
	return nil
}

// Cleanup removes expired sessions and returns how many were removed.
func (st *Store) Cleanup(ctx context.Context) int {
	now := st.now()
	st.mu.RLock()
	var expired []string
	for id, sess := range st.sessions {
		if sess.Expired(now) {
			expired = append(expired, id)
		}
	}
	st.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if st.remove(ctx, id, ReasonExpired) {
			n++
		}
	}
	return n
}

// List returns the summaries of all sessions, oldest first.
func (st *Store) List() []Info {
	st.mu.RLock()
	out := make([]Info, 0, len(st.sessions))
	for _, sess := range st.sessions {
		out = append(out, sess.Info())
	}
	st.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of sessions, including expired ones not yet cleaned up.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Run calls Cleanup every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st.Cleanup(ctx)
		}
	}
}

func (st *Store) remove(ctx context.Context, id, reason string) bool {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		observability.Session().OnSessionClose(ctx, reason)
	}
	return ok
}
