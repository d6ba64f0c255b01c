package chat

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/storage"
)

func TestManagerReloadsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	for _, driver := range []string{storage.DriverFile, storage.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(dir, driver)
			if driver == storage.DriverSQLite {
				path += ".db"
			}

			kv, err := storage.Open(driver, path)
			require.NoError(t, err)
			m := newTestManager(kv, answering("42"))
			m.Submit(context.Background(), "meaning of life?")
			m.NewChat()
			m.Submit(context.Background(), "again?")
			wantSessions := m.Sessions()
			wantActive := m.ActiveID()
			require.NoError(t, kv.Close())

			kv, err = storage.Open(driver, path)
			require.NoError(t, err)
			defer kv.Close()
			reloaded := NewManager(NewKVPersister(kv), answering("unused"))

			assert.Equal(t, wantActive, reloaded.ActiveID())
			got := reloaded.Sessions()
			require.Len(t, got, len(wantSessions))
			for i := range got {
				assert.Equal(t, wantSessions[i].ID, got[i].ID)
				assert.Equal(t, wantSessions[i].Title, got[i].Title)
				assert.Equal(t, wantSessions[i].Messages, got[i].Messages)
			}
		})
	}
}

func TestManagerStartsFreshWhenActiveWasDeleted(t *testing.T) {
	kv := storage.NewMemory()
	m := newTestManager(kv, answering("ok"))
	m.Submit(context.Background(), "hello")
	m.DeleteSession(m.ActiveID())

	reloaded := newTestManager(kv, answering("ok"))
	assert.Equal(t, "", reloaded.ActiveID())
	assert.Empty(t, reloaded.Sessions())
	assert.Equal(t, []Message{}, reloaded.CurrentMessages())
}

func TestManagersAreIndependent(t *testing.T) {
	a := newTestManager(storage.NewMemory(), answering("a"))
	b := newTestManager(storage.NewMemory(), answering("b"))

	a.Submit(context.Background(), "only in a")

	assert.Len(t, a.Sessions(), 1)
	assert.Empty(t, b.Sessions())
	assert.Equal(t, "", b.ActiveID())
}

func TestManagerSurvivesBrokenPersister(t *testing.T) {
	m := NewManager(&brokenPersister{}, answering("still works"), WithIDGenerator(sequentialIDs()))

	m.Submit(context.Background(), "hello")

	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, "s1", active.ID)
	assert.Equal(t, []Message{UserMessage("hello"), AssistantMessage("still works")}, active.Messages)
}
