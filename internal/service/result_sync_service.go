package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mru-results-api/internal/dto"
	"github.com/noah-isme/mru-results-api/internal/models"
	"github.com/noah-isme/mru-results-api/internal/repository"
	appErrors "github.com/noah-isme/mru-results-api/pkg/errors"
	"github.com/noah-isme/mru-results-api/pkg/jobs"
	"github.com/noah-isme/mru-results-api/pkg/logger"
)

// JobTypeResultSync identifies queued sync runs.
const JobTypeResultSync = "result_sync"

// TableAcadResults is the only remote table with a transformation.
const TableAcadResults = "acad_results"

const (
	upsertModeNative = "native"
	upsertModeCheck  = "check"
)

var academicYearTag = regexp.MustCompile(`^\d{4}/\d{4}$`)

type remoteResultReader interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context, table string, filter repository.RemoteResultFilter) (int64, error)
	FetchPage(ctx context.Context, table string, afterID int64, limit int, filter repository.RemoteResultFilter) ([]models.RawResultRecord, error)
	ListTables(ctx context.Context) ([]string, error)
}

type localResultWriter interface {
	Exists(ctx context.Context, regno, courseID string) (bool, error)
	Insert(ctx context.Context, record models.LocalResultRecord) error
	Update(ctx context.Context, regno, courseID string, record models.LocalResultRecord) error
	Upsert(ctx context.Context, record models.LocalResultRecord) (bool, error)
}

type syncRunStore interface {
	Create(ctx context.Context, run *models.SyncRun) error
	FindByID(ctx context.Context, id string) (*models.SyncRun, error)
	Update(ctx context.Context, id string, params repository.UpdateSyncRunParams) error
	List(ctx context.Context, filter models.SyncRunFilter) ([]models.SyncRun, error)
	Statistics(ctx context.Context, table string) (*models.SyncStatistics, error)
	ListByStatus(ctx context.Context, status models.SyncStatus, limit int) ([]models.SyncRun, error)
}

type syncLocker interface {
	Acquire(ctx context.Context, table, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, table, owner string) error
}

type transformFunc func(models.RawResultRecord) (*models.LocalResultRecord, models.SkipReason)

// ResultSyncConfig tunes the sync engine.
type ResultSyncConfig struct {
	DefaultRangeLimit int
	MinRangeLimit     int
	MaxRangeLimit     int
	UpsertMode        string
	MinAcademicYear   string
	LockTTL           time.Duration
	RemoteHost        string
	RemoteDatabase    string
}

// ResultSyncService moves acad_results rows from the remote database into the
// local store and manages the lifecycle of the SyncRun audit records.
type ResultSyncService struct {
	remote     remoteResultReader
	local      localResultWriter
	runs       syncRunStore
	locks      syncLocker
	queue      jobDispatcher
	reports    *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ResultSyncConfig
	transforms map[string]transformFunc
	now        func() time.Time
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// NewResultSyncService constructs the sync service. queue, locks and metrics may be nil.
func NewResultSyncService(remote remoteResultReader, local localResultWriter, runs syncRunStore, locks syncLocker, queue jobDispatcher, transformer *RecordTransformer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ResultSyncConfig) *ResultSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if transformer == nil {
		transformer = NewRecordTransformer(logger)
	}
	if cfg.DefaultRangeLimit <= 0 {
		cfg.DefaultRangeLimit = 1000
	}
	if cfg.MinRangeLimit <= 0 {
		cfg.MinRangeLimit = 100
	}
	if cfg.MaxRangeLimit < cfg.MinRangeLimit {
		cfg.MaxRangeLimit = 10000
	}
	if cfg.UpsertMode != upsertModeCheck {
		cfg.UpsertMode = upsertModeNative
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Hour
	}
	svc := &ResultSyncService{
		remote:    remote,
		local:     local,
		runs:      runs,
		locks:     locks,
		queue:     queue,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		transforms: map[string]transformFunc{
			TableAcadResults: transformer.Transform,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	svc.validator.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
		return academicYearTag.MatchString(fl.Field().String())
	})
	return svc
}

// SetQueue attaches the background dispatcher once it has been built.
func (s *ResultSyncService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// SetReportCache attaches the report cache that completed runs invalidate.
func (s *ResultSyncService) SetReportCache(cache *CacheService) {
	s.reports = cache
}

// SupportedTables lists the tables that have a transformation.
func (s *ResultSyncService) SupportedTables() []string {
	tables := make([]string, 0, len(s.transforms))
	for table := range s.transforms {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}

// CreateRun validates the request and persists a pending run.
func (s *ResultSyncService) CreateRun(ctx context.Context, req dto.StartSyncRequest) (*models.SyncRun, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, ok := s.transforms[req.TableName]; !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedTable, fmt.Sprintf("Transformation logic for table %s is not implemented", req.TableName))
	}

	limit := req.RangeLimit
	if limit == 0 {
		limit = s.cfg.DefaultRangeLimit
	}
	if limit < s.cfg.MinRangeLimit || limit > s.cfg.MaxRangeLimit {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("range_limit must be between %d and %d", s.cfg.MinRangeLimit, s.cfg.MaxRangeLimit))
	}

	mode := req.UpsertMode
	if mode == "" {
		mode = s.cfg.UpsertMode
	}
	minYear := req.MinAcademicYear
	if minYear == "" {
		minYear = s.cfg.MinAcademicYear
	}

	run := &models.SyncRun{
		TableName:  req.TableName,
		Status:     models.SyncStatusPending,
		StartID:    req.StartID,
		RangeLimit: limit,
		SyncConfig: models.SyncConfig{MinAcademicYear: minYear, UpsertMode: mode},
	}
	if req.TriggeredBy != "" {
		triggeredBy := req.TriggeredBy
		run.TriggeredBy = &triggeredBy
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sync run")
	}
	s.logger.Info("sync run created", zap.String("sync_id", run.ID), zap.String("table", run.TableName), zap.Int("range_limit", limit), zap.Int64("start_id", run.StartID))
	return run, nil
}

// Start creates a run and queues it for background processing.
func (s *ResultSyncService) Start(ctx context.Context, req dto.StartSyncRequest) (*models.SyncRun, error) {
	run, err := s.CreateRun(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.enqueue(run.ID); err != nil {
		return run, err
	}
	return run, nil
}

// Process queues an existing pending, paused or failed run.
func (s *ResultSyncService) Process(ctx context.Context, id string) (*models.SyncRun, error) {
	run, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureProcessable(run); err != nil {
		return nil, err
	}
	if run.Status != models.SyncStatusPending {
		status := models.SyncStatusPending
		message := fmt.Sprintf("Queued to resume from ID %d", run.StartID)
		if err := s.checkpoint(ctx, run, repository.UpdateSyncRunParams{Status: &status, Message: &message}); err != nil {
			return nil, err
		}
	}
	if err := s.enqueue(run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// Pause marks a pending or processing run as paused. A running engine stops
// after its current page and records the cursor it reached.
func (s *ResultSyncService) Pause(ctx context.Context, id string) (*models.SyncRun, error) {
	run, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status != models.SyncStatusPending && run.Status != models.SyncStatusProcessing {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("sync run is %s and cannot be paused", run.Status))
	}
	status := models.SyncStatusPaused
	message := fmt.Sprintf("Paused at ID %d", run.StartID)
	if run.Status == models.SyncStatusProcessing {
		message = "Pause requested, stopping after the current page"
	}
	if err := s.runs.Update(ctx, run.ID, repository.UpdateSyncRunParams{Status: &status, Message: &message}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to pause sync run")
	}
	run.Status = status
	run.Message = &message
	return run, nil
}

// Status returns the current state of a run.
func (s *ResultSyncService) Status(ctx context.Context, id string) (*models.SyncRun, error) {
	return s.find(ctx, id)
}

// List returns recent runs.
func (s *ResultSyncService) List(ctx context.Context, filter models.SyncRunFilter) ([]models.SyncRun, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", filter.Status))
	}
	runs, err := s.runs.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sync runs")
	}
	return runs, nil
}

// Statistics aggregates run history for a table, or all tables when empty.
func (s *ResultSyncService) Statistics(ctx context.Context, table string) (*models.SyncStatistics, error) {
	stats, err := s.runs.Statistics(ctx, table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync statistics")
	}
	return stats, nil
}

// TestConnection pings the remote database.
func (s *ResultSyncService) TestConnection(ctx context.Context) dto.ConnectionStatus {
	status := dto.ConnectionStatus{Host: s.cfg.RemoteHost, Database: s.cfg.RemoteDatabase}
	start := time.Now()
	err := s.remote.Ping(ctx)
	status.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		s.logger.Warn("remote connection test failed", zap.Error(err))
		status.Message = err.Error()
		return status
	}
	status.Connected = true
	status.Message = "Connection successful"
	return status
}

// RemoteTables lists the tables of the remote schema.
func (s *ResultSyncService) RemoteTables(ctx context.Context) ([]string, error) {
	tables, err := s.remote.ListTables(ctx)
	if err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrRemoteUnavailable, err, "failed to list remote tables")
	}
	return tables, nil
}

// RunSync creates a run for table and executes it synchronously. The returned
// run is non-nil whenever it was created, including on failure.
func (s *ResultSyncService) RunSync(ctx context.Context, req dto.StartSyncRequest) (*models.SyncRun, error) {
	run, err := s.CreateRun(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, run.ID)
}

// HandleJob is the queue handler for background runs. Run-level failures are
// already recorded on the run and are not retried.
func (s *ResultSyncService) HandleJob(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(string)
	if !ok {
		return jobs.Permanent(fmt.Errorf("invalid payload for job %s", job.ID))
	}
	run, err := s.find(ctx, id)
	if err != nil {
		return jobs.Permanent(err)
	}
	if run.Status == models.SyncStatusPaused {
		s.logger.Info("skipping paused sync run", zap.String("sync_id", id))
		return nil
	}
	if _, err := s.Execute(ctx, id); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return jobs.Permanent(err)
	}
	return nil
}

// RecoverInterrupted pauses runs left processing by a previous process so they can be resumed.
func (s *ResultSyncService) RecoverInterrupted(ctx context.Context) (int, error) {
	runs, err := s.runs.ListByStatus(ctx, models.SyncStatusProcessing, 100)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interrupted sync runs")
	}
	status := models.SyncStatusPaused
	for _, run := range runs {
		message := fmt.Sprintf("Interrupted at ID %d, resume to continue", run.StartID)
		if err := s.runs.Update(ctx, run.ID, repository.UpdateSyncRunParams{Status: &status, Message: &message}); err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to pause interrupted sync run")
		}
		s.logger.Warn("interrupted sync run paused", zap.String("sync_id", run.ID), zap.Int64("start_id", run.StartID))
	}
	return len(runs), nil
}

// Execute runs the engine for an existing run until it completes, fails or is paused.
func (s *ResultSyncService) Execute(ctx context.Context, id string) (*models.SyncRun, error) {
	run, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureProcessable(run); err != nil {
		return run, err
	}

	log := logger.ForRun(s.logger, run.ID, run.TableName)
	store := context.WithoutCancel(ctx)

	if s.locks != nil {
		acquired, err := s.locks.Acquire(store, run.TableName, run.ID, s.cfg.LockTTL)
		if err != nil {
			return run, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire sync lock")
		}
		if !acquired {
			return run, appErrors.Clone(appErrors.ErrSyncInProgress, fmt.Sprintf("another sync for %s is running", run.TableName))
		}
		defer func() {
			if err := s.locks.Release(store, run.TableName, run.ID); err != nil {
				log.Warn("failed to release sync lock", zap.Error(err))
			}
		}()
	}

	started := s.now()
	tracker := NewSyncProgressTracker(run)
	processing := models.SyncStatusProcessing
	startedMsg := "Sync started..."
	if err := s.checkpoint(store, run, repository.UpdateSyncRunParams{Status: &processing, Message: &startedMsg, SyncStartedAt: &started}); err != nil {
		return run, err
	}
	log.Info("sync run started", zap.Int64("start_id", run.StartID), zap.Int("range_limit", run.RangeLimit))

	transform, ok := s.transforms[run.TableName]
	if !ok {
		message := fmt.Sprintf("Transformation logic for table %s is not implemented", run.TableName)
		return s.fail(store, log, run, tracker, started, message, appErrors.Clone(appErrors.ErrUnsupportedTable, message))
	}

	if ctx.Err() != nil {
		return s.pause(store, log, run, tracker, started, run.StartID, ctx.Err())
	}
	if err := s.remote.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return s.pause(store, log, run, tracker, started, run.StartID, ctx.Err())
		}
		return s.fail(store, log, run, tracker, started, "Remote database unreachable: "+err.Error(), appErrors.CloneWrap(appErrors.ErrRemoteUnavailable, err, ""))
	}

	filter := repository.RemoteResultFilter{MinAcademicYear: run.SyncConfig.MinAcademicYear}
	if total, err := s.remote.Count(ctx, run.TableName, filter); err != nil {
		log.Warn("failed to count remote records", zap.Error(err))
	} else {
		tracker.SetTotal(total)
		if err := s.checkpoint(store, run, repository.UpdateSyncRunParams{TotalRecords: &total}); err != nil {
			return run, err
		}
	}

	mode := run.SyncConfig.UpsertMode
	if mode == "" {
		mode = s.cfg.UpsertMode
	}
	limit := run.RangeLimit
	if limit <= 0 {
		limit = s.cfg.DefaultRangeLimit
	}
	cursor := run.StartID

	for {
		page, err := s.remote.FetchPage(ctx, run.TableName, cursor, limit, filter)
		if err != nil {
			if ctx.Err() != nil {
				return s.pause(store, log, run, tracker, started, cursor, ctx.Err())
			}
			return s.fail(store, log, run, tracker, started, "Remote read failed: "+err.Error(), appErrors.CloneWrap(appErrors.ErrRemoteUnavailable, err, ""))
		}
		s.metrics.ObserveSyncPage(len(page))

		for _, raw := range page {
			if ctx.Err() != nil {
				return s.pause(store, log, run, tracker, started, cursor, ctx.Err())
			}
			s.processRow(store, log, run.TableName, mode, transform, raw, tracker)
			if raw.RemoteID > cursor {
				cursor = raw.RemoteID
			}
		}

		if err := s.saveProgress(store, run, tracker, cursor, tracker.ProgressMessage()); err != nil {
			return run, err
		}
		log.Debug("sync page processed", zap.Int("rows", len(page)), zap.Int64("cursor", cursor), zap.Float64("percentage", tracker.Percentage()))

		if len(page) < limit {
			break
		}
		if ctx.Err() != nil {
			return s.pause(store, log, run, tracker, started, cursor, ctx.Err())
		}
		if current, err := s.runs.FindByID(store, run.ID); err == nil && current.Status == models.SyncStatusPaused {
			return s.pause(store, log, run, tracker, started, cursor, nil)
		}
	}

	return s.complete(store, log, run, tracker, started, cursor)
}

func (s *ResultSyncService) processRow(ctx context.Context, log *zap.Logger, table, mode string, transform transformFunc, raw models.RawResultRecord, tracker *SyncProgressTracker) {
	var record *models.LocalResultRecord
	defer func() {
		if r := recover(); r != nil {
			tracker.IncrementFailed()
			s.metrics.RecordSyncRecord(table, SyncOutcomeFailed)
			fields := []zap.Field{zap.Int64("remote_id", raw.RemoteID), zap.Any("panic", r)}
			if record != nil {
				fields = append(fields, zap.String("regno", record.Regno), zap.String("courseid", record.CourseID))
			}
			log.Error("record sync panicked", fields...)
		}
	}()

	record, reason := transform(raw)
	if reason != models.SkipNone || record == nil {
		tracker.IncrementSkipped()
		s.metrics.RecordSyncRecord(table, SyncOutcomeSkipped)
		return
	}

	inserted, err := s.write(ctx, mode, *record)
	if err != nil {
		tracker.IncrementFailed()
		s.metrics.RecordSyncRecord(table, SyncOutcomeFailed)
		log.Error("failed to sync record",
			zap.Int64("remote_id", raw.RemoteID),
			zap.String("regno", record.Regno),
			zap.String("courseid", record.CourseID),
			zap.Error(err),
		)
		return
	}
	if inserted {
		tracker.IncrementInserted()
		s.metrics.RecordSyncRecord(table, SyncOutcomeInserted)
		return
	}
	tracker.IncrementUpdated()
	s.metrics.RecordSyncRecord(table, SyncOutcomeUpdated)
}

// write stores record keyed by (regno, courseid) and reports whether it was inserted.
func (s *ResultSyncService) write(ctx context.Context, mode string, record models.LocalResultRecord) (bool, error) {
	if mode != upsertModeCheck {
		return s.local.Upsert(ctx, record)
	}

	exists, err := s.local.Exists(ctx, record.Regno, record.CourseID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, s.local.Update(ctx, record.Regno, record.CourseID, record)
	}
	if err := s.local.Insert(ctx, record); err != nil {
		if repository.IsDuplicateKey(err) {
			return false, s.local.Update(ctx, record.Regno, record.CourseID, record)
		}
		return false, err
	}
	return true, nil
}

func (s *ResultSyncService) saveProgress(ctx context.Context, run *models.SyncRun, tracker *SyncProgressTracker, cursor int64, message string) error {
	params := progressParams(tracker.Snapshot())
	params.StartID = &cursor
	params.Message = &message
	return s.checkpoint(ctx, run, params)
}

func (s *ResultSyncService) complete(ctx context.Context, log *zap.Logger, run *models.SyncRun, tracker *SyncProgressTracker, started time.Time, cursor int64) (*models.SyncRun, error) {
	finished := s.now()
	duration := int64(finished.Sub(started).Seconds())
	status := models.SyncStatusCompleted
	message := tracker.CompletionMessage()

	params := progressParams(tracker.Snapshot())
	params.Status = &status
	params.Message = &message
	params.StartID = &cursor
	params.SyncCompletedAt = &finished
	params.LastSyncedAt = &finished
	params.DurationSeconds = &duration
	if err := s.checkpoint(ctx, run, params); err != nil {
		return run, err
	}

	s.metrics.ObserveSyncRun(run.TableName, status, finished.Sub(started))
	if snap := tracker.Snapshot(); snap.Inserted+snap.Updated > 0 {
		if err := s.reports.Invalidate(context.WithoutCancel(ctx), ReportCachePattern); err != nil {
			log.Warn("report cache invalidation failed", zap.Error(err))
		}
	}
	log.Info("sync run completed", zap.String("message", message), zap.Int64("duration_seconds", duration))
	return run, nil
}

func (s *ResultSyncService) fail(ctx context.Context, log *zap.Logger, run *models.SyncRun, tracker *SyncProgressTracker, started time.Time, message string, cause error) (*models.SyncRun, error) {
	finished := s.now()
	duration := int64(finished.Sub(started).Seconds())
	status := models.SyncStatusFailed

	params := progressParams(tracker.Snapshot())
	params.Status = &status
	params.Message = &message
	params.SyncCompletedAt = &finished
	params.DurationSeconds = &duration
	if err := s.checkpoint(ctx, run, params); err != nil {
		log.Error("failed to record sync failure", zap.Error(err))
	}

	s.metrics.ObserveSyncRun(run.TableName, status, finished.Sub(started))
	log.Error("sync run failed", zap.String("message", message), zap.Error(cause))
	return run, cause
}

func (s *ResultSyncService) pause(ctx context.Context, log *zap.Logger, run *models.SyncRun, tracker *SyncProgressTracker, started time.Time, cursor int64, cause error) (*models.SyncRun, error) {
	status := models.SyncStatusPaused
	message := fmt.Sprintf("Paused at ID %d: %d records synced", cursor, tracker.Snapshot().Synced)

	params := progressParams(tracker.Snapshot())
	params.Status = &status
	params.Message = &message
	params.StartID = &cursor
	if err := s.checkpoint(ctx, run, params); err != nil {
		return run, err
	}

	s.metrics.ObserveSyncRun(run.TableName, status, s.now().Sub(started))
	if cause == nil {
		log.Info("sync run paused externally", zap.Int64("cursor", cursor))
		return run, nil
	}
	log.Warn("sync run paused", zap.Int64("cursor", cursor), zap.Error(cause))
	return run, cause
}

// checkpoint persists params and mirrors them onto run.
func (s *ResultSyncService) checkpoint(ctx context.Context, run *models.SyncRun, params repository.UpdateSyncRunParams) error {
	if err := s.runs.Update(ctx, run.ID, params); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist sync progress")
	}
	applySyncRunParams(run, params)
	return nil
}

func (s *ResultSyncService) enqueue(id string) error {
	if s.queue == nil {
		return appErrors.Clone(appErrors.ErrInternal, "sync queue not configured")
	}
	err := s.queue.Enqueue(jobs.Job{ID: id, Type: JobTypeResultSync, Payload: id})
	if err == nil {
		return nil
	}
	if errors.Is(err, jobs.ErrDuplicateJob) {
		return appErrors.Clone(appErrors.ErrSyncInProgress, "sync run is already queued")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue sync run")
}

func (s *ResultSyncService) find(ctx context.Context, id string) (*models.SyncRun, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sync run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync run")
	}
	return run, nil
}

func ensureProcessable(run *models.SyncRun) error {
	switch run.Status {
	case models.SyncStatusProcessing:
		return appErrors.Clone(appErrors.ErrSyncInProgress, "Sync is already processing")
	case models.SyncStatusCompleted:
		return appErrors.Clone(appErrors.ErrSyncCompleted, "Sync has already been completed")
	}
	return nil
}

func progressParams(p SyncProgress) repository.UpdateSyncRunParams {
	return repository.UpdateSyncRunParams{
		RecordsSynced:   &p.Synced,
		RecordsInserted: &p.Inserted,
		RecordsUpdated:  &p.Updated,
		RecordsSkipped:  &p.Skipped,
		RecordsFailed:   &p.Failed,
	}
}

func applySyncRunParams(run *models.SyncRun, p repository.UpdateSyncRunParams) {
	if p.Status != nil {
		run.Status = *p.Status
	}
	if p.Message != nil {
		message := *p.Message
		run.Message = &message
	}
	if p.StartID != nil {
		run.StartID = *p.StartID
	}
	if p.TotalRecords != nil {
		total := *p.TotalRecords
		run.TotalRecords = &total
	}
	if p.RecordsSynced != nil {
		run.RecordsSynced = *p.RecordsSynced
	}
	if p.RecordsInserted != nil {
		run.RecordsInserted = *p.RecordsInserted
	}
	if p.RecordsUpdated != nil {
		run.RecordsUpdated = *p.RecordsUpdated
	}
	if p.RecordsSkipped != nil {
		run.RecordsSkipped = *p.RecordsSkipped
	}
	if p.RecordsFailed != nil {
		run.RecordsFailed = *p.RecordsFailed
	}
	if p.LastSyncedAt != nil {
		at := *p.LastSyncedAt
		run.LastSyncedAt = &at
	}
	if p.SyncStartedAt != nil {
		at := *p.SyncStartedAt
		run.SyncStartedAt = &at
	}
	if p.SyncCompletedAt != nil {
		at := *p.SyncCompletedAt
		run.SyncCompletedAt = &at
	}
	if p.DurationSeconds != nil {
		d := *p.DurationSeconds
		run.DurationSeconds = &d
	}
}
