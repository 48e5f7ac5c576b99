// Package docstore is a small document store with live listeners. Documents
// are JSON bodies addressed by "collection/id" paths; every write assigns a
// new ETag, and listeners receive a fresh snapshot whenever the ETag or the
// document's existence changes.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPath = errors.New("invalid document path")
	ErrNotFound    = errors.New("document not found")
	ErrConflict    = errors.New("document was modified concurrently")
)

// Listener receives snapshot events. Exactly one of snap and err is non-nil
// for events produced by this package.
type Listener func(snap *Snapshot, err error)

// ListenerRegistration is the handle of an active listener. Remove is idempotent.
type ListenerRegistration interface {
	Remove()
}

// UpdateFunc receives the current snapshot (possibly non-existent) and returns
// the value to store. Returning a nil value leaves the document untouched.
// It may be called more than once when the write races with another writer.
type UpdateFunc func(current *Snapshot) (any, error)

type Store interface {
	Get(ctx context.Context, path string) (*Snapshot, error)
	Set(ctx context.Context, path string, v any) error
	Update(ctx context.Context, path string, fn UpdateFunc) error
	Delete(ctx context.Context, path string) error
	// Listen delivers the current snapshot right away and then every change
	// until the registration is removed or ctx is done.
	Listen(ctx context.Context, path string, l Listener) (ListenerRegistration, error)
}

// Doc builds the path of a document in a collection.
func Doc(collection, id string) (string, error) {
	path := collection + "/" + id
	if _, _, err := SplitPath(path); err != nil {
		return "", err
	}
	return path, nil
}

// SplitPath validates a document path and returns its collection and id.
func SplitPath(path string) (collection, id string, err error) {
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return parts[0], parts[1], nil
}
