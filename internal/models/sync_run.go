package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// SyncStatus captures the lifecycle of a remote sync run.
type SyncStatus string

const (
	SyncStatusPending    SyncStatus = "pending"
	SyncStatusProcessing SyncStatus = "processing"
	SyncStatusCompleted  SyncStatus = "completed"
	SyncStatusFailed     SyncStatus = "failed"
	SyncStatusPaused     SyncStatus = "paused"
)

// Valid reports whether s is a known status.
func (s SyncStatus) Valid() bool {
	switch s {
	case SyncStatusPending, SyncStatusProcessing, SyncStatusCompleted, SyncStatusFailed, SyncStatusPaused:
		return true
	}
	return false
}

// SyncRun is the persisted audit record of one remote_database_syncs run.
type SyncRun struct {
	ID              string     `db:"id" json:"id"`
	TableName       string     `db:"table_name" json:"table_name"`
	Status          SyncStatus `db:"status" json:"status"`
	Message         *string    `db:"message" json:"message,omitempty"`
	StartID         int64      `db:"start_id" json:"start_id"`
	RangeLimit      int        `db:"range_limit" json:"range_limit"`
	TotalRecords    *int64     `db:"total_records" json:"total_records,omitempty"`
	RecordsSynced   int64      `db:"number_of_records_synced" json:"number_of_records_synced"`
	RecordsInserted int64      `db:"records_inserted" json:"records_inserted"`
	RecordsUpdated  int64      `db:"records_updated" json:"records_updated"`
	RecordsSkipped  int64      `db:"records_skipped" json:"records_skipped"`
	RecordsFailed   int64      `db:"records_failed" json:"records_failed"`
	LastSyncedAt    *time.Time `db:"last_synced_at" json:"last_synced_at,omitempty"`
	SyncStartedAt   *time.Time `db:"sync_started_at" json:"sync_started_at,omitempty"`
	SyncCompletedAt *time.Time `db:"sync_completed_at" json:"sync_completed_at,omitempty"`
	DurationSeconds *int64     `db:"duration_seconds" json:"duration_seconds,omitempty"`
	TriggeredBy     *string    `db:"triggered_by" json:"triggered_by,omitempty"`
	SyncConfig      SyncConfig `db:"sync_config" json:"sync_config"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// ProgressPercentage returns synced/total as a percentage rounded to two
// decimals and capped at 100. Unknown or zero totals yield 0.
func (r SyncRun) ProgressPercentage() float64 {
	return Percentage(r.RecordsSynced, r.TotalRecords)
}

// IsTerminal reports whether the run can no longer be processed.
func (r SyncRun) IsTerminal() bool {
	return r.Status == SyncStatusCompleted || r.Status == SyncStatusFailed
}

// Percentage computes a capped, two-decimal progress percentage.
func Percentage(synced int64, total *int64) float64 {
	if total == nil || *total <= 0 {
		return 0
	}
	pct := math.Round(float64(synced)/float64(*total)*100*100) / 100
	return math.Min(100, pct)
}

// SyncConfig stores run options persisted as JSON.
type SyncConfig struct {
	MinAcademicYear string `json:"min_academic_year,omitempty"`
	UpsertMode      string `json:"upsert_mode,omitempty"`
}

// Value marshals the config to JSON for persistence.
func (c SyncConfig) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal sync config: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the config.
func (c *SyncConfig) Scan(value interface{}) error {
	if value == nil {
		*c = SyncConfig{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for SyncConfig", value)
	}
	if len(data) == 0 {
		*c = SyncConfig{}
		return nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unmarshal sync config: %w", err)
	}
	return nil
}

// SyncRunFilter narrows run listings.
type SyncRunFilter struct {
	TableName string
	Status    SyncStatus
	Limit     int
}

// SyncStatistics aggregates run history for a table.
type SyncStatistics struct {
	TableName          string   `db:"-" json:"table_name,omitempty"`
	TotalSyncs         int64    `db:"total_syncs" json:"total_syncs"`
	Completed          int64    `db:"completed" json:"completed"`
	Failed             int64    `db:"failed" json:"failed"`
	Processing         int64    `db:"processing" json:"processing"`
	TotalRecordsSynced int64    `db:"total_records_synced" json:"total_records_synced"`
	LatestSync         *SyncRun `db:"-" json:"latest_sync,omitempty"`
}
