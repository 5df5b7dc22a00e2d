package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mru-results-api/internal/dto"
	"github.com/noah-isme/mru-results-api/internal/models"
	appErrors "github.com/noah-isme/mru-results-api/pkg/errors"
)

// ReportCachePattern matches every cached academic report.
const ReportCachePattern = "academics:*"

type scopedResultReader interface {
	ListByRegno(ctx context.Context, regno string) ([]models.LocalResultRecord, error)
	ListHistories(ctx context.Context, regnos []string) (map[string][]models.LocalResultRecord, error)
	ListScoped(ctx context.Context, filter models.ResultFilter) ([]models.StudentResultRow, error)
}

type catalogReader interface {
	FindProgramme(ctx context.Context, progCode string) (*models.Programme, error)
	CourseNames(ctx context.Context, courseIDs []string) (map[string]string, error)
}

// AcademicReportService builds student snapshots and cohort reports from local results.
type AcademicReportService struct {
	results    scopedResultReader
	catalog    catalogReader
	aggregator *AcademicAggregator
	cache      *CacheService
	cacheTTL   time.Duration
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAcademicReportService constructs the service. cache may be nil.
func NewAcademicReportService(results scopedResultReader, catalog catalogReader, aggregator *AcademicAggregator, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *AcademicReportService {
	if aggregator == nil {
		aggregator = NewAcademicAggregator(DefaultAcademicPolicy())
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicReportService{
		results:    results,
		catalog:    catalog,
		aggregator: aggregator,
		cache:      cache,
		cacheTTL:   cacheTTL,
		validator:  validate,
		logger:     logger,
	}
}

// Snapshot derives a student's academic standing from the full result history.
func (s *AcademicReportService) Snapshot(ctx context.Context, regno string, q dto.SnapshotQuery) (*models.AcademicSnapshot, error) {
	regno = strings.TrimSpace(regno)
	if regno == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "regno is required")
	}
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	records, err := s.results.ListByRegno(ctx, regno)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student results")
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no results found for student")
	}

	level := q.ProgrammeLevel
	if level == nil {
		if progID := latestProgID(records); progID != "" {
			levels, err := s.programmeLevels(ctx, []string{progID})
			if err != nil {
				return nil, err
			}
			level = levels[progID]
		}
	}

	snapshot := s.aggregator.Snapshot(regno, records, level, q.ExpectedCourses)
	return &snapshot, nil
}

// Summary classifies every student in scope into the summary buckets.
func (s *AcademicReportService) Summary(ctx context.Context, q dto.AcademicFilterQuery) (*models.SummaryReport, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	filter := q.Filter()

	key := summaryCacheKey(filter, q.ExpectedCourses)
	var cached models.SummaryReport
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	rows, err := s.results.ListScoped(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scoped results")
	}

	regnos, progIDs := studentKeys(rows)
	histories := map[string][]models.LocalResultRecord{}
	if len(regnos) > 0 {
		histories, err = s.results.ListHistories(ctx, regnos)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result histories")
		}
	}
	levels, err := s.programmeLevels(ctx, progIDs)
	if err != nil {
		return nil, err
	}

	report := s.aggregator.BuildSummary(SummaryInput{
		Filter:          filter,
		Rows:            rows,
		Histories:       histories,
		Levels:          levels,
		ExpectedCourses: q.ExpectedCourses,
	})

	if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache summary report", zap.String("key", key), zap.Error(err))
	}
	s.logger.Info("summary report built",
		zap.Int("students", report.Total),
		zap.Int("vc_list", len(report.VCList)),
		zap.Int("deans_list", len(report.DeansList)),
		zap.Int("incomplete", len(report.IncompleteCases)),
	)
	return &report, nil
}

// MissingMarks lists students with fewer marks than their specialisation's offered courses.
func (s *AcademicReportService) MissingMarks(ctx context.Context, q dto.MissingMarksQuery) (*models.MissingMarksReport, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	filter := q.Filter()

	rows, err := s.results.ListScoped(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scoped results")
	}

	offered := offeredBySpecialisation(rows)
	students, order := groupByStudent(rows)
	tracker := NewIncompleteMarksTracker()

	for _, regno := range order {
		group := students[regno]
		marked := make([]models.LocalResultRecord, 0, len(group))
		for _, row := range group {
			if row.Score != nil {
				marked = append(marked, row.LocalResultRecord)
			}
		}
		if len(marked) == 0 {
			continue
		}

		spec := valueOr(group[0].Specialisation, "")
		identity := summaryIdentity(group[0])
		identity.Name = strings.TrimSpace(valueOr(group[0].FirstName, "") + " " + valueOr(group[0].OtherName, ""))
		tracker.TrackStudent(identity, offered[spec], marked, spec)
	}

	report := &models.MissingMarksReport{
		Filter:           filter,
		Students:         tracker.Sorted(q.Sort, q.Order),
		BySpecialization: tracker.BySpecialization(),
		Statistics:       tracker.Statistics(),
	}

	if tracker.HasIncompleteStudents() {
		report.CourseNames = s.missingCourseNames(ctx, report.Students)
	}
	return report, nil
}

func (s *AcademicReportService) missingCourseNames(ctx context.Context, students []models.IncompleteStudent) map[string]string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, student := range students {
		for _, course := range strings.Split(student.MissingCourses, ", ") {
			if course == "" {
				continue
			}
			if _, ok := seen[course]; ok {
				continue
			}
			seen[course] = struct{}{}
			ids = append(ids, course)
		}
	}
	sort.Strings(ids)

	names, err := s.catalog.CourseNames(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load course names", zap.Int("courses", len(ids)), zap.Error(err))
		return nil
	}
	return names
}

// programmeLevels resolves programme codes to levels. Unknown programmes map to nil.
func (s *AcademicReportService) programmeLevels(ctx context.Context, progIDs []string) (map[string]*int, error) {
	levels := make(map[string]*int, len(progIDs))
	for _, progID := range progIDs {
		programme, err := s.catalog.FindProgramme(ctx, progID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.logger.Debug("programme not found, using undergraduate pass mark", zap.String("progid", progID))
				levels[progID] = nil
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load programme")
		}
		levels[progID] = programme.Level
	}
	return levels, nil
}

func studentKeys(rows []models.StudentResultRow) ([]string, []string) {
	regnoSet := make(map[string]struct{})
	progSet := make(map[string]struct{})
	regnos := make([]string, 0)
	progIDs := make([]string, 0)
	for _, row := range rows {
		if _, ok := regnoSet[row.Regno]; !ok {
			regnoSet[row.Regno] = struct{}{}
			regnos = append(regnos, row.Regno)
		}
		if row.ProgID == nil || *row.ProgID == "" {
			continue
		}
		if _, ok := progSet[*row.ProgID]; !ok {
			progSet[*row.ProgID] = struct{}{}
			progIDs = append(progIDs, *row.ProgID)
		}
	}
	return regnos, progIDs
}

// latestProgID picks the programme of the most recent academic year.
func latestProgID(records []models.LocalResultRecord) string {
	var progID, acad string
	for _, r := range records {
		if r.ProgID == nil || *r.ProgID == "" {
			continue
		}
		if r.Acad >= acad {
			acad = r.Acad
			progID = *r.ProgID
		}
	}
	return progID
}

func summaryCacheKey(filter models.ResultFilter, expected int) string {
	return fmt.Sprintf("academics:summary:%s:%d:%s:%d:%s:%d",
		filter.Acad, filter.Semester, filter.ProgID, filter.StudyYear, filter.Specialisation, expected)
}
