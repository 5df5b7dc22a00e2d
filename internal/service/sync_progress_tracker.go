package service

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/noah-isme/mru-results-api/internal/models"
)

// SyncProgressTracker holds the live counters of one sync run. Increments are
// atomic so the tracker may be shared by several row workers.
type SyncProgressTracker struct {
	synced   atomic.Int64
	inserted atomic.Int64
	updated  atomic.Int64
	skipped  atomic.Int64
	failed   atomic.Int64

	mu    sync.RWMutex
	total *int64
}

// SyncProgress is a point-in-time copy of the tracker.
type SyncProgress struct {
	Synced     int64   `json:"synced"`
	Inserted   int64   `json:"inserted"`
	Updated    int64   `json:"updated"`
	Skipped    int64   `json:"skipped"`
	Failed     int64   `json:"failed"`
	Total      *int64  `json:"total,omitempty"`
	Percentage float64 `json:"percentage"`
}

// NewSyncProgressTracker seeds a tracker from a run so resumed runs keep their counters.
func NewSyncProgressTracker(run *models.SyncRun) *SyncProgressTracker {
	t := &SyncProgressTracker{}
	if run == nil {
		return t
	}
	t.synced.Store(run.RecordsSynced)
	t.inserted.Store(run.RecordsInserted)
	t.updated.Store(run.RecordsUpdated)
	t.skipped.Store(run.RecordsSkipped)
	t.failed.Store(run.RecordsFailed)
	if run.TotalRecords != nil {
		t.SetTotal(*run.TotalRecords)
	}
	return t
}

// IncrementInserted counts a new local row.
func (t *SyncProgressTracker) IncrementInserted() {
	t.inserted.Add(1)
	t.synced.Add(1)
}

// IncrementUpdated counts an overwritten local row.
func (t *SyncProgressTracker) IncrementUpdated() {
	t.updated.Add(1)
	t.synced.Add(1)
}

// IncrementSkipped counts a row rejected by validation.
func (t *SyncProgressTracker) IncrementSkipped() {
	t.skipped.Add(1)
}

// IncrementFailed counts a row whose write failed.
func (t *SyncProgressTracker) IncrementFailed() {
	t.failed.Add(1)
}

// SetTotal records the remote row count.
func (t *SyncProgressTracker) SetTotal(total int64) {
	t.mu.Lock()
	t.total = &total
	t.mu.Unlock()
}

// Total returns the remote row count, or nil when unknown.
func (t *SyncProgressTracker) Total() *int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.total == nil {
		return nil
	}
	total := *t.total
	return &total
}

// Percentage is synced/total*100, rounded to two decimals and capped at 100.
func (t *SyncProgressTracker) Percentage() float64 {
	return models.Percentage(t.synced.Load(), t.Total())
}

// Snapshot copies the counters.
func (t *SyncProgressTracker) Snapshot() SyncProgress {
	return SyncProgress{
		Synced:     t.synced.Load(),
		Inserted:   t.inserted.Load(),
		Updated:    t.updated.Load(),
		Skipped:    t.skipped.Load(),
		Failed:     t.failed.Load(),
		Total:      t.Total(),
		Percentage: t.Percentage(),
	}
}

// ProgressMessage is the status line persisted after each page.
func (t *SyncProgressTracker) ProgressMessage() string {
	return fmt.Sprintf("Processing... %d records synced", t.synced.Load())
}

// CompletionMessage is the status line persisted when a run finishes.
func (t *SyncProgressTracker) CompletionMessage() string {
	s := t.Snapshot()
	return fmt.Sprintf("Successfully synced %d records. Inserted: %d, Updated: %d, Skipped: %d, Failed: %d",
		s.Synced, s.Inserted, s.Updated, s.Skipped, s.Failed)
}
