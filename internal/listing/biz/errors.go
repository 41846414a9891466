package biz

import "errors"

var (
	// ErrStoreUnavailable wraps any failure of the listing store
	ErrStoreUnavailable = errors.New("listing store unavailable")
)
