package chat

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/storage"
)

// Persister is the durable side of the session manager: the full session
// list and the id of the last active session.
//
// Missing data is not an error: LoadSessions returns an empty list and
// LoadActiveID an empty id. Malformed data is reported as an error; callers
// in this package degrade it to empty.
type Persister interface {
	LoadSessions() ([]Session, error)
	SaveSessions(sessions []Session) error
	LoadActiveID() (string, error)
	// SaveActiveID records id as the last active session; "" clears it.
	SaveActiveID(id string) error
}

// Storage keys, shared with histories exported from the browser front-end.
const (
	KeySessions = "chatHistory"
	KeyActiveID = "currentChatId"
)

// KVPersister stores sessions as JSON under KeySessions and the active id as
// plain text under KeyActiveID.
type KVPersister struct {
	kv storage.KV
}

var _ Persister = (*KVPersister)(nil)

func NewKVPersister(kv storage.KV) *KVPersister {
	return &KVPersister{kv: kv}
}

func (p *KVPersister) LoadSessions() ([]Session, error) {
	data, err := p.kv.Get(KeySessions)
	if errors.Is(err, storage.ErrNotFound) {
		return []Session{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load sessions")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []Session{}, nil
	}

	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, errors.Wrap(err, "decode sessions")
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}

func (p *KVPersister) SaveSessions(sessions []Session) error {
	if sessions == nil {
		sessions = []Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return errors.Wrap(err, "encode sessions")
	}
	if err := p.kv.Put(KeySessions, data); err != nil {
		return errors.Wrap(err, "save sessions")
	}
	return nil
}

func (p *KVPersister) LoadActiveID() (string, error) {
	data, err := p.kv.Get(KeyActiveID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "load active session id")
	}
	return strings.TrimSpace(string(data)), nil
}

func (p *KVPersister) SaveActiveID(id string) error {
	if id == "" {
		if err := p.kv.Delete(KeyActiveID); err != nil {
			return errors.Wrap(err, "clear active session id")
		}
		return nil
	}
	if err := p.kv.Put(KeyActiveID, []byte(id)); err != nil {
		return errors.Wrap(err, "save active session id")
	}
	return nil
}
