package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a key has no stored value
var ErrNotFound = errors.New("storage: key not found")

// Store is the cache layer contract. Set always overwrites and entries are
// never evicted on staleness: freshness is decided by the caller comparing the
// returned write time against its own window, so the last good value survives
// upstream outages until a fresh write replaces it.
type Store interface {
	// Get unmarshals the stored value into dest and returns its write time.
	// Returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string, dest interface{}) (time.Time, error)

	// Set stores the value under key, stamping the current write time.
	Set(ctx context.Context, key string, value interface{}) error

	// Keys returns all keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Prepend pushes a value onto the front of the list stored at key.
	Prepend(ctx context.Context, key string, value interface{}) error

	// Close releases backend resources.
	Close() error
}

// entry is the stored envelope. The write time lives with the entry so that
// callers with different freshness windows can share one cached value.
type entry struct {
	Value     json.RawMessage `json:"value"`
	WrittenAt time.Time       `json:"written_at"`
}

func encodeEntry(value interface{}, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entry{Value: raw, WrittenAt: now})
}

func decodeEntry(data []byte, dest interface{}) (time.Time, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return time.Time{}, err
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return time.Time{}, err
	}
	return e.WrittenAt, nil
}
