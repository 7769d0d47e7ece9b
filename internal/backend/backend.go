// Package backend selects and constructs the ledger store named by the
// configuration.
package backend

import (
	"fmt"

	"cuotas/internal/services"
)

// CleanupFunc releases backend resources
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function
type Result struct {
	Store   services.LedgerStore
	Cleanup CleanupFunc
}

// Type represents the kind of backing store
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types
func Types() []Type {
	return []Type{MemoryBackend, SQLiteBackend}
}

// Config holds what the factory needs to build a store
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}

// Validate checks the configuration for the selected type
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	return nil
}
