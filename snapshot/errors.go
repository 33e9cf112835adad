package snapshot

import "errors"

// Sentinel errors for store operations.
var (
	ErrKeyNotFound = errors.New("snapshot key not found")
	ErrLoadFailed  = errors.New("snapshot load failed")
	ErrSaveFailed  = errors.New("snapshot save failed")
)
