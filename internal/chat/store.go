package chat

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Store is the in-memory, newest-first list of sessions. It is the source of
// truth during a run; after every mutation the full list is written to the
// Persister before the call returns. Write failures are logged and dropped.
type Store struct {
	mu        sync.Mutex
	sessions  []*Session
	persister Persister
	log       zerolog.Logger
	clock     clockwork.Clock
	newID     func() string
}

// NewStore creates an empty store. Call LoadAll to read persisted sessions.
func NewStore(p Persister, opts ...Option) *Store {
	o := buildOptions(opts)
	return newStore(p, o)
}

func newStore(p Persister, o options) *Store {
	return &Store{
		persister: p,
		log:       o.log,
		clock:     o.clock,
		newID:     o.newID,
	}
}

// LoadAll replaces the in-memory sessions with the persisted ones. Absent or
// malformed data yields an empty store; entries without an id or repeating
// an earlier id are dropped.
func (s *Store) LoadAll() []Session {
	loaded, err := s.persister.LoadSessions()
	if err != nil {
		s.log.Warn().Err(err).Msg("stored chat history unreadable, starting empty")
		loaded = nil
	}

	seen := make(map[string]bool, len(loaded))
	sessions := make([]*Session, 0, len(loaded))
	for _, sess := range loaded {
		if sess.ID == "" || seen[sess.ID] {
			s.log.Debug().Str("session", sess.ID).Msg("skipping invalid stored session")
			continue
		}
		seen[sess.ID] = true
		c := sess.clone()
		sessions = append(sessions, &c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = sessions
	return s.snapshotLocked()
}

// CreateSession starts a new session seeded with first, titled after its
// content, and prepends it to the store.
func (s *Store) CreateSession(first Message) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.indexLocked(id) >= 0 {
		id = s.newID()
	}

	sess := &Session{
		ID:        id,
		Title:     TitleFor(first.Content),
		Messages:  []Message{first},
		CreatedAt: s.clock.Now(),
	}
	s.sessions = append([]*Session{sess}, s.sessions...)
	s.persistLocked()
	return sess.clone()
}

// AppendMessage adds msg to the end of the session. Unknown ids are ignored.
func (s *Store) AppendMessage(sessionID string, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(sessionID)
	if i < 0 {
		return
	}
	s.sessions[i].Messages = append(s.sessions[i].Messages, msg)
	s.persistLocked()
}

// DeleteSession removes the session if present and persists either way.
func (s *Store) DeleteSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(sessionID); i >= 0 {
		s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	}
	s.persistLocked()
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(sessionID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(sessionID)
	if i < 0 {
		return Session{}, false
	}
	return s.sessions[i].clone(), true
}

func (s *Store) Has(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(sessionID) >= 0
}

// Sessions returns copies of all sessions, newest first.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []Session {
	out := make([]Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.clone()
	}
	return out
}

func (s *Store) persistLocked() {
	if err := s.persister.SaveSessions(s.snapshotLocked()); err != nil {
		s.log.Warn().Err(err).Int("sessions", len(s.sessions)).Msg("failed to persist chat history")
	}
}
