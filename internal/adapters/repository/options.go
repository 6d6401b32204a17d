// Package repository defines the closing-spread store interface and errors.
package repository

import "github.com/cameronntaylor/nba-watchability/pkg/logger"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLogger overrides the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}
