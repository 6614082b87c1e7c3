package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one privileged-action attempt, granted or denied.
type AuditEntry struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	Role    Role      `json:"role"`
	Action  Action    `json:"action"`
	Granted bool      `json:"granted"`
	Reason  string    `json:"reason,omitempty"`
	At      time.Time `json:"at"`
}

// AuditTrail keeps a bounded in-memory log of privileged-action attempts,
// newest first. It backs the admin activity view and tests that assert
// denials are explicit rather than silent.
type AuditTrail struct {
	mu      sync.RWMutex
	entries []AuditEntry
	limit   int
}

// NewAuditTrail creates a trail retaining at most limit entries.
func NewAuditTrail(limit int) *AuditTrail {
	if limit <= 0 {
		limit = 64
	}
	return &AuditTrail{limit: limit}
}

// Record appends an attempt, assigning an ID and timestamp when absent.
func (t *AuditTrail) Record(entry AuditEntry) AuditEntry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append([]AuditEntry{entry}, t.entries...)
	if len(t.entries) > t.limit {
		t.entries = t.entries[:t.limit]
	}
	return entry
}

// Recent returns up to limit entries, newest first.
func (t *AuditTrail) Recent(limit int) []AuditEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if limit <= 0 || limit > len(t.entries) {
		limit = len(t.entries)
	}
	out := make([]AuditEntry, limit)
	copy(out, t.entries[:limit])
	return out
}
