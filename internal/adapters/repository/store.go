// Package repository defines the closing-spread store interface and errors.
package repository

// Store persists frozen closing spreads keyed by game id.
//
// Writes accumulate in memory; Flush lands them on disk in one atomic
// rewrite. A single process owns the store for the duration of a batch.
type Store interface {
	// Get returns the frozen home spread for a game id.
	Get(gameID string) (float64, bool)
	// Put records the frozen home spread for a game id.
	Put(gameID string, homeSpread float64)
	// Flush writes the full state to the backing file.
	Flush() error
	// Len returns the number of games tracked.
	Len() int
}
