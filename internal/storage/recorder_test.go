package storage

import (
	"context"
	"testing"
	"time"
)

func TestRecorderPrunesExpiredSnapshots(t *testing.T) {
	db := setupTestDB(t)
	rec := NewRecorder(db, 24*time.Hour)

	now := time.Now().UTC()
	if _, err := db.SaveSnapshot(statsFor(1, 1), now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if err := rec.Consume(context.Background(), statsFor(2, 2), now); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	history, err := db.GetContainerHistory("abc123", 10)
	if err != nil {
		t.Fatalf("GetContainerHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected expired snapshot to be pruned, got %d rows", len(history))
	}
}

func TestRecorderWithoutRetention(t *testing.T) {
	db := setupTestDB(t)
	rec := NewRecorder(db, 0)

	now := time.Now().UTC()
	if _, err := db.SaveSnapshot(statsFor(1, 1), now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if err := rec.Consume(context.Background(), statsFor(2, 2), now); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	history, err := db.GetContainerHistory("abc123", 10)
	if err != nil {
		t.Fatalf("GetContainerHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("Expected both snapshots kept, got %d", len(history))
	}
}
