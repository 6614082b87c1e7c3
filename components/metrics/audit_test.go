package metrics

import (
	"testing"
	"time"
)

func TestAuditTrailRecordsNewestFirst(t *testing.T) {
	trail := NewAuditTrail(10)
	trail.Record(AuditEntry{UserID: "admin", Action: ActionSyncDatabase, Granted: true})
	trail.Record(AuditEntry{UserID: "user", Action: ActionExportCSV, Reason: "denied"})

	entries := trail.Recent(0)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserID != "user" || entries[1].UserID != "admin" {
		t.Fatalf("expected newest first ordering, got %#v", entries)
	}
}

func TestAuditTrailAssignsIDAndTimestamp(t *testing.T) {
	trail := NewAuditTrail(10)
	entry := trail.Record(AuditEntry{UserID: "admin", Action: ActionExportCSV, Granted: true})
	if entry.ID == "" {
		t.Fatal("expected an assigned entry ID")
	}
	if entry.At.IsZero() {
		t.Fatal("expected an assigned timestamp")
	}
	at := Day(2025, time.October, 7)
	stamped := trail.Record(AuditEntry{ID: "fixed", At: at})
	if stamped.ID != "fixed" || !stamped.At.Equal(at) {
		t.Fatalf("expected provided ID/timestamp preserved, got %#v", stamped)
	}
}

func TestAuditTrailBoundsRetention(t *testing.T) {
	trail := NewAuditTrail(3)
	for i := 0; i < 5; i++ {
		trail.Record(AuditEntry{UserID: "admin", Action: ActionExportCSV})
	}
	if got := len(trail.Recent(0)); got != 3 {
		t.Fatalf("expected retention cap of 3, got %d", got)
	}
}

func TestAuditTrailRecentLimit(t *testing.T) {
	trail := NewAuditTrail(10)
	for i := 0; i < 4; i++ {
		trail.Record(AuditEntry{UserID: "admin", Action: ActionExportCSV})
	}
	if got := len(trail.Recent(2)); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
}
