package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mru-results-api/internal/models"
)

const syncRunColumns = `id, table_name, status, message, start_id, range_limit, total_records, number_of_records_synced,
records_inserted, records_updated, records_skipped, records_failed, last_synced_at, sync_started_at, sync_completed_at,
duration_seconds, triggered_by, sync_config, created_at, updated_at`

// SyncRunRepository persists remote_database_syncs audit rows.
type SyncRunRepository struct {
	db *sqlx.DB
}

// NewSyncRunRepository constructs the repository.
func NewSyncRunRepository(db *sqlx.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Create inserts a new run with generated defaults.
func (r *SyncRunRepository) Create(ctx context.Context, run *models.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.SyncStatusPending
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = run.CreatedAt

	const query = `INSERT INTO remote_database_syncs (id, table_name, status, message, start_id, range_limit, total_records, number_of_records_synced,
records_inserted, records_updated, records_skipped, records_failed, triggered_by, sync_config, created_at, updated_at)
VALUES (:id, :table_name, :status, :message, :start_id, :range_limit, :total_records, :number_of_records_synced,
:records_inserted, :records_updated, :records_skipped, :records_failed, :triggered_by, :sync_config, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create sync run: %w", err)
	}
	return nil
}

// FindByID returns a run by identifier.
func (r *SyncRunRepository) FindByID(ctx context.Context, id string) (*models.SyncRun, error) {
	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM remote_database_syncs WHERE id = ?", syncRunColumns))
	var run models.SyncRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, fmt.Errorf("get sync run: %w", err)
	}
	return &run, nil
}

// UpdateSyncRunParams defines the mutable fields of a run.
type UpdateSyncRunParams struct {
	Status          *models.SyncStatus
	Message         *string
	StartID         *int64
	TotalRecords    *int64
	RecordsSynced   *int64
	RecordsInserted *int64
	RecordsUpdated  *int64
	RecordsSkipped  *int64
	RecordsFailed   *int64
	LastSyncedAt    *time.Time
	SyncStartedAt   *time.Time
	SyncCompletedAt *time.Time
	DurationSeconds *int64
}

// Update persists the provided changes and bumps updated_at.
func (r *SyncRunRepository) Update(ctx context.Context, id string, params UpdateSyncRunParams) error {
	set := make([]string, 0, 14)
	args := make([]interface{}, 0, 15)

	add := func(column string, value interface{}) {
		set = append(set, column+" = ?")
		args = append(args, value)
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.Message != nil {
		add("message", *params.Message)
	}
	if params.StartID != nil {
		add("start_id", *params.StartID)
	}
	if params.TotalRecords != nil {
		add("total_records", *params.TotalRecords)
	}
	if params.RecordsSynced != nil {
		add("number_of_records_synced", *params.RecordsSynced)
	}
	if params.RecordsInserted != nil {
		add("records_inserted", *params.RecordsInserted)
	}
	if params.RecordsUpdated != nil {
		add("records_updated", *params.RecordsUpdated)
	}
	if params.RecordsSkipped != nil {
		add("records_skipped", *params.RecordsSkipped)
	}
	if params.RecordsFailed != nil {
		add("records_failed", *params.RecordsFailed)
	}
	if params.LastSyncedAt != nil {
		add("last_synced_at", *params.LastSyncedAt)
	}
	if params.SyncStartedAt != nil {
		add("sync_started_at", *params.SyncStartedAt)
	}
	if params.SyncCompletedAt != nil {
		add("sync_completed_at", *params.SyncCompletedAt)
	}
	if params.DurationSeconds != nil {
		add("duration_seconds", *params.DurationSeconds)
	}

	if len(set) == 0 {
		return nil
	}
	add("updated_at", time.Now().UTC())

	query := r.db.Rebind(fmt.Sprintf("UPDATE remote_database_syncs SET %s WHERE id = ?", strings.Join(set, ", ")))
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update sync run: %w", err)
	}
	return nil
}

// List returns recent runs, newest first.
func (r *SyncRunRepository) List(ctx context.Context, filter models.SyncRunFilter) ([]models.SyncRun, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 3)
	if filter.TableName != "" {
		conditions = append(conditions, "table_name = ?")
		args = append(args, filter.TableName)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)

	query := fmt.Sprintf("SELECT %s FROM remote_database_syncs WHERE %s ORDER BY created_at DESC LIMIT ?", syncRunColumns, strings.Join(conditions, " AND "))
	var runs []models.SyncRun
	if err := r.db.SelectContext(ctx, &runs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	return runs, nil
}

// Statistics aggregates run history, optionally for one table.
func (r *SyncRunRepository) Statistics(ctx context.Context, table string) (*models.SyncStatistics, error) {
	where := ""
	var args []interface{}
	if table != "" {
		where = " WHERE table_name = ?"
		args = append(args, table)
	}
	query := fmt.Sprintf(`SELECT COUNT(*) AS total_syncs,
COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed,
COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0) AS processing,
COALESCE(SUM(number_of_records_synced), 0) AS total_records_synced
FROM remote_database_syncs%s`, where)

	var stats models.SyncStatistics
	if err := r.db.GetContext(ctx, &stats, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sync run statistics: %w", err)
	}
	stats.TableName = table

	runs, err := r.List(ctx, models.SyncRunFilter{TableName: table, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) > 0 {
		stats.LatestSync = &runs[0]
	}
	return &stats, nil
}

// ListByStatus returns runs in the given state, oldest first.
func (r *SyncRunRepository) ListByStatus(ctx context.Context, status models.SyncStatus, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM remote_database_syncs WHERE status = ? ORDER BY created_at ASC LIMIT ?", syncRunColumns))
	var runs []models.SyncRun
	if err := r.db.SelectContext(ctx, &runs, query, status, limit); err != nil {
		return nil, fmt.Errorf("list %s sync runs: %w", status, err)
	}
	return runs, nil
}
