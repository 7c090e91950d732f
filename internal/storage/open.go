package storage

import (
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open opens the named backend rooted at dir.
func Open(backend, dir string) (DB, error) {
	switch backend {
	case BackendBadger, "":
		return NewBadger(filepath.Join(dir, "db"))
	case BackendSQLite:
		return NewSQLite(filepath.Join(dir, "wallet.sqlite"))
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
