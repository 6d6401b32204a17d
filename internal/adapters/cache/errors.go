package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrFetchFailed  = errors.New("fetch failed with no cached fallback")
	ErrCorruptEntry = errors.New("corrupt cache entry")
	ErrEncode       = errors.New("cache payload not encodable")
)
