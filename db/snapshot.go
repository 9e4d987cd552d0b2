package db

import (
	"errors"

	"go.vocdoni.io/dvote/log"
)

// LoadOrSeed loads the collection snapshot stored at key. When the snapshot
// is missing, unreadable or empty, the seed is used instead and written
// back so the next load finds it. A nil storage always yields the seed.
func LoadOrSeed[T any](storage Storage, key string, seed func() []T) []T {
	if storage == nil {
		return seed()
	}
	var list []T
	err := storage.Load(key, &list)
	switch {
	case err == nil && len(list) > 0:
		return list
	case err != nil && !errors.Is(err, ErrNotFound):
		log.Warnw("discarding unreadable snapshot", "key", key, "error", err)
	}
	list = seed()
	if err := storage.Save(key, list); err != nil {
		log.Warnw("failed to persist seed data", "key", key, "error", err)
	}
	return list
}

// SaveSnapshot writes the collection at key, logging instead of failing.
// In-memory state stays authoritative when the backend is unavailable.
func SaveSnapshot(storage Storage, key string, v any) {
	if storage == nil {
		return
	}
	if err := storage.Save(key, v); err != nil {
		log.Warnw("failed to persist snapshot", "key", key, "error", err)
	}
}
