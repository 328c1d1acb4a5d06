package config

import "time"

// StoreOptions tunes the SQLite connection. Set from CLI flags at startup.
type StoreOptions struct {
	// BusyTimeout is how long a statement waits on a locked database
	// before failing. Default: 5s
	BusyTimeout time.Duration

	MaxOpenConns int
	MaxIdleConns int
}

// DefaultStoreOptions returns the default connection settings
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}
}
