package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store keeps sessions and the per-session in-flight guard.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Acquire claims the session for one round and returns the owner token; it
	// reports false when a round is already in flight.
	Acquire(ctx context.Context, id string) (token string, ok bool, err error)
	// Release drops the claim only while token still owns it.
	Release(ctx context.Context, id, token string) error
}

// MemoryStore keeps sessions in process memory; they expire after ttl and are
// lost on restart.
type MemoryStore struct {
	sessions *cache.Cache
	locks    *cache.Cache
	lockMu   sync.Mutex
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: cache.New(ttl, ttl),
		locks:    cache.New(lockTTL, lockTTL),
		ttl:      ttl,
	}
}

// lockTTL bounds how long a crashed round can block a session. A round's
// answer call is cut off at roundTimeout so a live round never outlasts its lock.
const (
	lockTTL      = 5 * time.Minute
	roundTimeout = lockTTL - time.Minute
)

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.sessions.Set(s.ID, clone(s), m.ttl)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return clone(v.(*Session)), nil
}

func (m *MemoryStore) Acquire(_ context.Context, id string) (string, bool, error) {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	token := uuid.NewString()
	// Add fails when the key exists, which makes it a test-and-set.
	if err := m.locks.Add(id, token, lockTTL); err != nil {
		return "", false, nil
	}
	return token, true, nil
}

func (m *MemoryStore) Release(_ context.Context, id, token string) error {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	if v, ok := m.locks.Get(id); ok && v.(string) == token {
		m.locks.Delete(id)
	}
	return nil
}

func clone(s *Session) *Session {
	c := *s
	c.Turns = append([]Turn(nil), s.Turns...)
	return &c
}
