package alert

import "github.com/pkg/errors"

var (
	// ErrInvalidAlert rejects a malformed add request before it reaches the store
	ErrInvalidAlert = errors.New("invalid alert")

	// ErrStoreCorruption means the store broke one of its own invariants
	ErrStoreCorruption = errors.New("alert store corrupted")
)
