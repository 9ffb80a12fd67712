package repository

import (
	"context"
	"errors"

	"skillbridge/internal/domain"
)

var (
	// ErrCorruptProfile is returned when a stored record cannot be decoded.
	ErrCorruptProfile = errors.New("stored profile is corrupt")
	// ErrUnsupportedSchema is returned for records written by a newer schema.
	ErrUnsupportedSchema = errors.New("unsupported profile schema version")
)

// ProfileRepository is a keyed record store holding one profile per key.
type ProfileRepository interface {
	Init(ctx context.Context) error
	// Get returns the stored record, or nil when the key has none.
	Get(ctx context.Context, key string) (*domain.StoredProfile, error)
	Save(ctx context.Context, key string, profile domain.UserProfile) error
	// Update runs fn against the current profile (or base when the key is empty)
	// and persists the result atomically.
	Update(ctx context.Context, key string, base domain.UserProfile, fn func(*domain.UserProfile) error) (*domain.UserProfile, error)
	Delete(ctx context.Context, key string) error
}
