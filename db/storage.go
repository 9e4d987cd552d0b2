// Package db holds the survey platform data model, its static reference
// data and the key-value snapshot backends the stores persist to.
package db

// Storage persists JSON snapshots by key. Every backend applies the
// Namespace prefix to the keys it receives. Load returns ErrNotFound when
// the key has never been saved or was deleted.
type Storage interface {
	Load(key string, v any) error
	Save(key string, v any) error
	Delete(key string) error
	Close()
}
