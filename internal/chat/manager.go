package chat

import "context"

// Manager is one independent chat-session manager: its own sessions, active
// pointer and busy flag. Front-ends talk to the core only through it.
type Manager struct {
	store       *Store
	controller  *Controller
	coordinator *Coordinator
}

// NewManager loads persisted sessions, restores the last active session if
// it still exists, and returns a ready manager. It never fails: unreadable
// persisted state starts the manager empty.
func NewManager(p Persister, asker Asker, opts ...Option) *Manager {
	o := buildOptions(opts)

	store := newStore(p, o)
	store.LoadAll()

	controller := newController(store, p, o)
	controller.Restore()

	return &Manager{
		store:       store,
		controller:  controller,
		coordinator: newCoordinator(store, controller, asker, o),
	}
}

// NewChat leaves the current session; the next prompt starts a new one.
func (m *Manager) NewChat() { m.controller.NewChat() }

// SelectChat switches to an existing session; unknown ids are ignored.
func (m *Manager) SelectChat(sessionID string) { m.controller.SelectChat(sessionID) }

// DeleteSession removes a session, leaving it first if it is current.
func (m *Manager) DeleteSession(sessionID string) { m.controller.DeleteSession(sessionID) }

// Submit runs one turn. See Coordinator.Submit.
func (m *Manager) Submit(ctx context.Context, prompt string) { m.coordinator.Submit(ctx, prompt) }

func (m *Manager) CurrentMessages() []Message { return m.controller.CurrentMessages() }

// Sessions returns all sessions, newest first.
func (m *Manager) Sessions() []Session { return m.store.Sessions() }

func (m *Manager) Session(sessionID string) (Session, bool) { return m.store.Get(sessionID) }

func (m *Manager) Active() (Session, bool) { return m.controller.Active() }

func (m *Manager) ActiveID() string { return m.controller.ActiveID() }

func (m *Manager) Busy() bool { return m.coordinator.Busy() }

func (m *Manager) State() TurnState { return m.coordinator.State() }
