package store

import (
	"context"
	"testing"
)

func TestInitDB_RejectsBadInput(t *testing.T) {
	ctx := context.Background()

	if err := InitDB(ctx, ""); err == nil {
		t.Error("Expected error for an empty database url")
	}
	// The empty-URL check happens before the one-time setup, so a later
	// call with a real URL is still possible.
	if GetPool() != nil {
		t.Error("Pool must stay nil after rejected input")
	}

	if err := InitDB(ctx, "://not-a-url"); err == nil {
		t.Error("Expected error for a malformed database url")
	}
	// The first real attempt decides the outcome for the process.
	if err := InitDB(ctx, "://not-a-url"); err == nil {
		t.Error("Repeated calls must return the first outcome")
	}

	t.Logf("✓ Bad database URLs rejected, pool left uninitialized")
}
