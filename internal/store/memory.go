// internal/store/memory.go
//
// In-memory session store.
// A session bundles one game controller with the feed it renders into.
//
// Characteristics:
//   - Sessions keyed by ID in a map, guarded by an RWMutex.
//   - Get marks a session as recently used; Sweep closes and drops sessions
//     idle since before a cutoff.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/robalobadob/matchgrid/internal/feed"
	"github.com/robalobadob/matchgrid/internal/game"
)

// ErrNotFound is returned by Get for unknown or evicted sessions.
var ErrNotFound = errors.New("not found")

// Session is one browser's game.
type Session struct {
	ID        string
	Mode      string // "normal" | "daily"
	Game      *game.Controller
	Feed      *feed.Feed
	CreatedAt time.Time
}

// Close stops the game's timers and ends every feed subscription.
func (s *Session) Close() {
	s.Game.Close()
	s.Feed.Close()
}

// Store defines the persistence interface for sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID and marks it as used.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete closes and removes a session. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep closes and removes sessions last used before cutoff,
	// returning how many were evicted.
	Sweep(ctx context.Context, cutoff time.Time) int

	// Len reports how many sessions are held.
	Len() int
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex      // guards sessions
	sessions map[string]*entry // keyed by Session.ID
	clock    clock.Clock
}

// NewMemoryStore constructs a new in-memory Store using clk for last-used times.
func NewMemoryStore(clk clock.Clock) Store {
	if clk == nil {
		clk = clock.New()
	}
	return &memory{sessions: make(map[string]*entry), clock: clk}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sessions[s.ID]; ok && old.session != s {
		old.session.Close()
	}
	m.sessions[s.ID] = &entry{session: s, lastSeen: m.clock.Now()}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.clock.Now()
		return e.session, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		e.session.Close()
	}
	return nil
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	var stale []*Session
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
