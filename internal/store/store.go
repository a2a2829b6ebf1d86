// Package store persists progression records as opaque values under string
// keys. Every backend behaves like a durable string-keyed map: a Set replaces
// the previous value whole and a missing key is reported as absent, not as an
// error.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed marks a stored value that could not be decoded.
var ErrMalformed = errors.New("store: malformed value")

type Store interface {
	// Get returns the value under key. ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// LoadJSON decodes the value under key into v. It reports false with a nil
// error when the key is absent and wraps ErrMalformed when decoding fails.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
