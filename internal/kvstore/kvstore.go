// Package kvstore provides the key-value persistence used by the ticket store.
// Values are opaque JSON documents; keys are restricted to a safe alphabet so
// that no key can address anything outside the store.
package kvstore

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrInvalidKey is returned for keys that could escape the store.
	ErrInvalidKey = errors.New("kvstore: invalid key")
)

// validKey matches alphanumeric, dash, underscore, and dot characters only.
var validKey = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateKey rejects keys that could cause path traversal.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key must not be empty", ErrInvalidKey)
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("%w: key must not contain '..'", ErrInvalidKey)
	}
	if !validKey.MatchString(key) {
		return fmt.Errorf("%w: only alphanumeric, dash, underscore, and dot are allowed", ErrInvalidKey)
	}
	return nil
}

// Item describes one stored key.
type Item struct {
	Key       string
	UpdatedAt time.Time
}

// Store is the persistence contract. Implementations must be safe for
// concurrent use; Put must replace a value atomically.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	// List returns every key, most recently updated first.
	List() ([]Item, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open constructs a store for the named backend rooted at location.
// For the file backend location is a directory; for sqlite it is a database file.
func Open(backend, location string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(location)
	case BackendSQLite:
		return NewSQLiteStore(location)
	default:
		return nil, fmt.Errorf("kvstore: unknown backend %q", backend)
	}
}
