package docgap

import "context"

// ObjectStore persists JSON blobs under string keys.
type ObjectStore interface {
	// Get returns the blob stored under key.
	// Returns ENOTFOUND if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
