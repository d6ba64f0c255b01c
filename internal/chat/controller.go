package chat

import (
	"sync"

	"github.com/rs/zerolog"
)

// Controller tracks which session is current. The pointer is a weak
// reference: it holds an id and is checked against the Store on every read,
// so it is either empty or names a session that exists.
type Controller struct {
	mu        sync.Mutex
	activeID  string
	store     *Store
	persister Persister
	log       zerolog.Logger
}

// NewController creates a controller with no active session.
func NewController(store *Store, p Persister, opts ...Option) *Controller {
	return newController(store, p, buildOptions(opts))
}

func newController(store *Store, p Persister, o options) *Controller {
	return &Controller{store: store, persister: p, log: o.log}
}

// Restore reactivates the last active session recorded by the Persister,
// provided the store still has it. Anything else leaves no active session.
func (c *Controller) Restore() {
	id, err := c.persister.LoadActiveID()
	if err != nil {
		c.log.Warn().Err(err).Msg("stored active session unreadable, starting with a new chat")
		id = ""
	}
	if id != "" && !c.store.Has(id) {
		c.log.Debug().Str("session", id).Msg("stored active session no longer exists")
		id = ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = id
}

// NewChat clears the active session. Stored sessions are untouched.
func (c *Controller) NewChat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked("")
}

// SelectChat makes sessionID current if the store has it; otherwise it does nothing.
func (c *Controller) SelectChat(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.store.Has(sessionID) {
		return
	}
	c.setLocked(sessionID)
}

// DeleteSession removes the session from the store. Deleting the current
// session resets the pointer, exactly like NewChat.
func (c *Controller) DeleteSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.DeleteSession(sessionID)
	if c.activeID == sessionID {
		c.setLocked("")
	}
}

// ActiveID returns the current session id, or "" when there is none.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeID != "" && !c.store.Has(c.activeID) {
		return ""
	}
	return c.activeID
}

// Active returns a copy of the current session.
func (c *Controller) Active() (Session, bool) {
	id := c.ActiveID()
	if id == "" {
		return Session{}, false
	}
	return c.store.Get(id)
}

// CurrentMessages returns the visible conversation: the current session's
// messages, or an empty slice.
func (c *Controller) CurrentMessages() []Message {
	sess, ok := c.Active()
	if !ok {
		return []Message{}
	}
	return sess.Messages
}

func (c *Controller) setLocked(id string) {
	if c.activeID == id {
		return
	}
	c.activeID = id
	if err := c.persister.SaveActiveID(id); err != nil {
		c.log.Warn().Err(err).Str("session", id).Msg("failed to persist active session")
	}
}
