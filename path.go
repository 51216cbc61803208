package menace

import (
	"sync"
	"time"

	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/rs/zerolog/log"
)

// Path is the history of one game as seen by the engine: a board before each
// engine move, followed by the board right after it (which remembers the move).
// It is replayed backwards to credit the table when the game ends.
type Path struct {
	snapshots []*ttt.Board
	settled   bool // the finished game has already been credited
}

// Reset forgets the recorded game.
func (p *Path) Reset() {
	p.snapshots = p.snapshots[:0]
	p.settled = false
}

func (p *Path) Len() int { return len(p.snapshots) }

// Snapshots returns copies of the recorded boards, oldest first.
func (p *Path) Snapshots() []*ttt.Board {
	retVal := make([]*ttt.Board, len(p.snapshots))
	for i, s := range p.snapshots {
		retVal[i] = s.Clone()
	}
	return retVal
}

func (p *Path) record(b *ttt.Board) { p.snapshots = append(p.snapshots, b) }

// startsGame reports whether b is the first board the engine sees in a game
// where it plays m: the board is empty, or the opponent has just opened.
func startsGame(b *ttt.Board, m game.Marker) bool {
	switch b.Occupied() {
	case 0:
		return true
	case 1:
		return b.Markers()[0] != m
	}
	return false
}

// Session is the per-game state of one engine player: an independent Path
// for each orientation of the board. Calls on a Session are serialized.
type Session struct {
	sync.Mutex
	ID    string
	paths [len(ttt.Orientations)]Path
}

// NewSession creates a session with empty paths.
func NewSession(id string) *Session { return &Session{ID: id} }

// Path returns the path recorded for orientation o.
func (s *Session) Path(o ttt.Orientation) *Path { return &s.paths[o] }

// Defaults of a SessionStore.
const (
	DefaultSessionIdle = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// SessionStore hands out sessions by game id. Sessions unused for longer than
// Idle are dropped, and the least recently used session makes room when the
// store holds Max sessions.
type SessionStore struct {
	sync.Mutex
	Idle time.Duration
	Max  int

	sessions map[string]*storedSession
	now      func() time.Time
}

type storedSession struct {
	*Session
	used time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		Idle:     DefaultSessionIdle,
		Max:      DefaultMaxSessions,
		sessions: make(map[string]*storedSession),
		now:      time.Now,
	}
}

// Get returns the session for id, creating it if needed.
func (s *SessionStore) Get(id string) *Session {
	s.Lock()
	defer s.Unlock()
	now := s.now()
	s.evict(now)
	sess, ok := s.sessions[id]
	if !ok {
		if s.Max > 0 && len(s.sessions) >= s.Max {
			s.evictOldest()
		}
		sess = &storedSession{Session: NewSession(id)}
		s.sessions[id] = sess
	}
	sess.used = now
	return sess.Session
}

// evict drops the sessions idle since before now-Idle.
func (s *SessionStore) evict(now time.Time) {
	if s.Idle <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.used) > s.Idle {
			delete(s.sessions, id)
			log.Debug().Str("game", id).Msg("session-evicted")
		}
	}
}

func (s *SessionStore) evictOldest() {
	var oldest string
	var at time.Time
	for id, sess := range s.sessions {
		if oldest == "" || sess.used.Before(at) {
			oldest, at = id, sess.used
		}
	}
	delete(s.sessions, oldest)
	log.Debug().Str("game", oldest).Msg("session-evicted")
}

// Delete drops the session for id.
func (s *SessionStore) Delete(id string) {
	s.Lock()
	delete(s.sessions, id)
	s.Unlock()
}

func (s *SessionStore) Len() int {
	s.Lock()
	defer s.Unlock()
	return len(s.sessions)
}
