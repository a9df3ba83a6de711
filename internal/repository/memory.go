package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type memoryEntry struct {
	session   entity.Session
	expiresAt time.Time
}

// memorySession keeps sessions in process memory with the same expiry rules as the
// redis repository. Stored values are copies, so callers never share state.
type memorySession struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return newMemorySessionRepository(ttl, time.Now)
}

func newMemorySessionRepository(ttl time.Duration, now func() time.Time) *memorySession {
	return &memorySession{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      now,
	}
}

func (that *memorySession) Save(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry := memoryEntry{session: cloneSession(session)}
	if that.ttl > 0 {
		entry.expiresAt = expiresAt(session, that.ttl, that.now)
	}

	that.sessions[session.ID] = entry
	that.evictExpired()

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entry, ok := that.sessions[id]
	if !ok || that.isExpired(entry) {
		return nil, ErrSessionNotFound
	}

	session := cloneSession(&entry.session)
	return &session, nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.sessions[id]
	if !ok || that.isExpired(entry) {
		delete(that.sessions, id)
		return ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}

func (that *memorySession) isExpired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !that.now().Before(entry.expiresAt)
}

// evictExpired must be called with the write lock held.
func (that *memorySession) evictExpired() {
	for id, entry := range that.sessions {
		if that.isExpired(entry) {
			delete(that.sessions, id)
		}
	}
}

func cloneSession(session *entity.Session) entity.Session {
	clone := *session
	if session.Game.Line != nil {
		line := *session.Game.Line
		clone.Game.Line = &line
	}

	return clone
}
