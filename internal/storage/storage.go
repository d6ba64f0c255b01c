// Package storage provides the durable key-value backends the chat history
// is persisted to. Backends only load and save opaque values; encoding is the
// caller's concern.
package storage

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when a key has never been written or was deleted.
var ErrNotFound = errors.New("storage: key not found")

// KV abstracts a small durable key-value store (files, SQLite, memory).
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return errors.Errorf("storage: invalid key %q", key)
	}
	return nil
}

// DataDir returns the base directory for askai data (~/.local/share/askai).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, ".local", "share", "askai"), nil
}

// DefaultPath returns the default location for the given driver:
// a directory for the file backend, a database file for SQLite.
func DefaultPath(driver string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	switch driver {
	case DriverSQLite:
		return filepath.Join(dir, "chats.db"), nil
	default:
		return filepath.Join(dir, "chats"), nil
	}
}

// Open returns the backend named by driver. An empty path selects DefaultPath.
func Open(driver, path string) (KV, error) {
	if driver == "" {
		driver = DriverFile
	}
	if driver == DriverMemory {
		return NewMemory(), nil
	}
	if path == "" {
		p, err := DefaultPath(driver)
		if err != nil {
			return nil, err
		}
		path = p
	}
	switch driver {
	case DriverFile:
		return NewFileKV(path)
	case DriverSQLite:
		return NewSQLiteKV(path)
	default:
		return nil, errors.Errorf("unknown storage driver %q (want file, sqlite or memory)", driver)
	}
}
