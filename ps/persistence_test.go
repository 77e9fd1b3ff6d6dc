package ps

import (
	"testing"

	"github.com/nickyhof/SchemaSpec/core"
)

func TestNewMemoryPersistence(t *testing.T) {
	persistence, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create memory persistence: %v", err)
	}

	if !persistence.IsInitialized() {
		t.Error("Expected persistence to be initialized")
	}
}

func TestPersistenceNotInitialized(t *testing.T) {
	var persistence Persistence

	if persistence.IsInitialized() {
		t.Error("Expected uninitialized persistence to return false")
	}

	err := persistence.ensureInitialized()
	if err != ErrNotInitialized {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}

	if _, err := persistence.SaveSnapshot(core.NewServerSchema(), core.Identity{}, ""); err != ErrNotInitialized {
		t.Errorf("Expected ErrNotInitialized from SaveSnapshot, got %v", err)
	}
	if got := persistence.LatestTransaction(); got.Id != "" {
		t.Errorf("Expected empty transaction, got %v", got)
	}
}

func TestNewFilePersistenceReopens(t *testing.T) {
	dir := t.TempDir()
	identity := core.Identity{Name: "test", Email: "test@test.com"}

	persistence, err := NewFilePersistence(dir, nil)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	txn, err := persistence.SaveSnapshot(sampleServer(), identity, "first")
	if err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	reopened, err := NewFilePersistence(dir, nil)
	if err != nil {
		t.Fatalf("Failed to reopen file persistence: %v", err)
	}

	if got := reopened.LatestTransaction(); got.Id != txn.Id {
		t.Errorf("Expected latest transaction %s, got %s", txn.Id, got.Id)
	}
	if got := reopened.ListDatabases(); len(got) != 2 {
		t.Errorf("Expected 2 databases after reopen, got %v", got)
	}
}

func TestEmptyRepository(t *testing.T) {
	persistence, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	if dbs := persistence.ListDatabases(); len(dbs) != 0 {
		t.Errorf("Expected no databases, got %v", dbs)
	}

	if _, err := persistence.LoadSnapshot(Transaction{}); err != ErrNoSnapshot {
		t.Errorf("Expected ErrNoSnapshot, got %v", err)
	}

	history, err := persistence.History(0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(history))
	}
}
