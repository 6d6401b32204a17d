package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrFlushFailed = errors.New("closing spread flush failed")
)
