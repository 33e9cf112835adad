// Package snapshot persists last-known fleet state across daemon restarts.
// Records are raw JSON blobs keyed by /-separated paths (e.g. "drones/d1");
// the filesystem store maps keys 1:1 to files under its root directory.
package snapshot

import "context"

// Record is one persisted blob.
type Record struct {
	Key  string
	Data []byte
}

// Store is the persistence boundary. Implementations are stateless and
// perform I/O on each call; Cache layers dirty tracking on top.
type Store interface {
	// List returns every key present in the store, sorted.
	List(ctx context.Context) ([]string, error)
	// Load retrieves the records for the given keys.
	Load(ctx context.Context, keys ...string) ([]Record, error)
	// Save writes records, creating or overwriting as needed.
	Save(ctx context.Context, records ...Record) error
	// Delete removes records. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
