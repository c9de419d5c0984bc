package types

import "errors"

// Storage is a string-keyed persistent store, the local stand-in for browser
// localStorage. Every value is written whole; there is no partial update.
type Storage interface {
	// Attach connects the Storage to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach flushes pending writes and releases backend resources.
	// Idempotent. After Detach, operations return ErrStorageDetached.
	Detach() error

	// GetItem returns the value stored under key.
	// Returns ErrNotFound if the key has never been set or was removed.
	GetItem(key string) (string, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(key string) error

	// Keys returns all stored keys in ascending order.
	Keys() ([]string, error)
}

// Storage lifecycle and entry errors.
var (
	ErrStorageDetached = errors.New("storage is detached")
	ErrAlreadyAttached = errors.New("storage is already attached")
	ErrNotFound        = errors.New("entry not found")
	ErrInvalidKey      = errors.New("invalid storage key")
	ErrQuotaExceeded   = errors.New("storage quota exceeded")
)
