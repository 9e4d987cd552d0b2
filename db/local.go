package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	dvotedb "go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/db/prefixeddb"
	"go.vocdoni.io/dvote/log"
)

// LocalStorage implements Storage over an embedded key-value database. It
// is the default backend and plays the role of the browser local storage
// the stores were designed around.
type LocalStorage struct {
	parent dvotedb.Database
	db     dvotedb.Database
	mutex  sync.RWMutex
}

// NewLocalStorage opens (or creates) a pebble database in dataDir.
func NewLocalStorage(dataDir string) (*LocalStorage, error) {
	database, err := metadb.New(dvotedb.TypePebble, filepath.Clean(dataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Infow("local storage ready", "datadir", dataDir)
	return NewLocalStorageWithDB(database), nil
}

// NewLocalStorageWithDB wraps an already opened database.
func NewLocalStorageWithDB(database dvotedb.Database) *LocalStorage {
	return &LocalStorage{
		parent: database,
		db:     prefixeddb.NewPrefixedDatabase(database, []byte(Namespace)),
	}
}

// Load decodes the value stored at key into v.
func (s *LocalStorage) Load(key string, v any) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	data, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, dvotedb.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: cannot decode %s: %v", ErrInvalidData, key, err)
	}
	return nil
}

// Save replaces the value stored at key with the JSON encoding of v.
func (s *LocalStorage) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	tx := s.db.WriteTx()
	defer tx.Discard()
	if err := tx.Set([]byte(key), data); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return tx.Commit()
}

// Delete removes key. Deleting a missing key is not an error.
func (s *LocalStorage) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	tx := s.db.WriteTx()
	defer tx.Discard()
	if err := tx.Delete([]byte(key)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *LocalStorage) Close() {
	if err := s.parent.Close(); err != nil {
		log.Warnw("failed to close local storage", "error", err)
	}
}
