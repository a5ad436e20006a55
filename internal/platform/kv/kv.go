// Package kv is the named-blob storage the tracker persists into. Every
// backend writes a whole value atomically: readers see the old blob or the
// new one, never a mix.
package kv

import (
	"context"
	"fmt"
	"regexp"

	apperrors "studytrack/internal/platform/errors"
)

type Store interface {
	// Get returns apperrors.ErrNotFound when the key has never been set.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,199}$`)

// ValidateKey rejects keys that could escape a directory or confuse SQL tooling.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: blob key %q", apperrors.ErrInvalidInput, key)
	}
	return nil
}

func notFound(key string) error {
	return fmt.Errorf("%w: blob %s", apperrors.ErrNotFound, key)
}
