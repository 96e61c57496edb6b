package storage

import (
	"testing"

	"github.com/chancenmarket/chancen/internal/db"
)

// NewTestStorage creates an in-memory store for testing.
// It is closed automatically when the test finishes.
func NewTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(db.Memory)
	if err != nil {
		t.Fatalf("opening test storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
