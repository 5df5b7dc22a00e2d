package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/mru-results-api/internal/models"
)

const (
	maxRegnoLength    = 85
	maxCourseIDLength = 25
	maxShortText      = 25
)

var (
	academicYearPattern = regexp.MustCompile(`^\d{4}/\d{4}$`)

	knownGrades = map[string]struct{}{
		"A": {}, "B+": {}, "B": {}, "C+": {}, "C": {}, "D+": {}, "D": {},
		"F": {}, "E": {}, "R": {}, "I": {}, "W": {}, "X": {},
	}
)

// RecordTransformer validates and normalises remote acad_results rows.
type RecordTransformer struct {
	logger *zap.Logger
}

// NewRecordTransformer constructs a transformer that reports warnings to logger.
func NewRecordTransformer(logger *zap.Logger) *RecordTransformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordTransformer{logger: logger}
}

// Transform converts raw into a local record. A non-empty SkipReason means the
// row must not be written.
func (t *RecordTransformer) Transform(raw models.RawResultRecord) (*models.LocalResultRecord, models.SkipReason) {
	log := t.logger.With(zap.Int64("remote_id", raw.RemoteID))

	regno := trimmed(raw.Regno)
	courseID := trimmed(raw.CourseID)
	if regno == "" || courseID == "" {
		return t.reject(log, models.SkipMissingIdentifier, regno, courseID)
	}
	if utf8.RuneCountInString(regno) > maxRegnoLength {
		return t.reject(log, models.SkipRegnoTooLong, regno, courseID)
	}
	if utf8.RuneCountInString(courseID) > maxCourseIDLength {
		return t.reject(log, models.SkipCourseidTooLong, regno, courseID)
	}
	log = log.With(zap.String("regno", regno), zap.String("courseid", courseID))

	semester, ok := parseInt(raw.Semester)
	if !ok || semester < 1 || semester > 3 {
		return t.reject(log, models.SkipInvalidSemester, regno, courseID)
	}

	acad := trimmed(raw.Acad)
	if acad == "" {
		return t.reject(log, models.SkipMissingAcademicYear, regno, courseID)
	}
	if !academicYearPattern.MatchString(acad) {
		log.Warn("academic year does not match YYYY/YYYY", zap.String("acad", acad))
	}

	record := &models.LocalResultRecord{
		Regno:    regno,
		CourseID: courseID,
		Semester: semester,
		Acad:     acad,
	}

	record.Score = t.score(log, raw.Score)

	if grade := trimmed(raw.Grade); grade != "" {
		if _, known := knownGrades[grade]; !known {
			log.Info("non-standard grade", zap.String("grade", grade))
		}
		record.Grade = &grade
	}

	if raw.StudyYear != nil {
		if year, ok := parseInt(raw.StudyYear); ok {
			if year < 1 || year > 7 {
				log.Warn("study year out of range", zap.Int("studyyear", year))
			}
			record.StudyYear = &year
		} else if trimmed(raw.StudyYear) != "" {
			log.Warn("study year is not numeric", zap.String("studyyear", *raw.StudyYear))
		}
	}

	record.GradePt = t.gradeScale(log, "gradept", raw.GradePt)
	record.GPA = t.gradeScale(log, "gpa", raw.GPA)
	if units, ok := parseFloat(raw.CreditUnits); ok {
		record.CreditUnits = &units
	}

	record.ResultComment = truncated(raw.ResultComment, maxShortText)
	record.ProgID = truncated(raw.ProgID, maxShortText)

	if record.Regno == "" || record.CourseID == "" || record.Semester == 0 || record.Acad == "" {
		return t.reject(log, models.SkipPostBuildValidationFailure, regno, courseID)
	}
	return record, models.SkipNone
}

func (t *RecordTransformer) reject(log *zap.Logger, reason models.SkipReason, regno, courseID string) (*models.LocalResultRecord, models.SkipReason) {
	log.Warn("record skipped", zap.String("reason", string(reason)), zap.String("regno", regno), zap.String("courseid", courseID))
	return nil, reason
}

func (t *RecordTransformer) score(log *zap.Logger, raw *string) *int {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		log.Warn("score is not numeric, storing as absent", zap.String("score", *raw))
		return nil
	}
	switch {
	case value < 0:
		log.Warn("score below 0 clamped", zap.Float64("score", value))
		value = 0
	case value > 100:
		log.Warn("score above 100 clamped", zap.Float64("score", value))
		value = 100
	}
	score := int(value)
	return &score
}

func (t *RecordTransformer) gradeScale(log *zap.Logger, field string, raw *string) *float64 {
	value, ok := parseFloat(raw)
	if !ok {
		return nil
	}
	if value < 0 || value > 5 {
		log.Warn(field+" out of range", zap.Float64(field, value))
	}
	return &value
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func truncated(value *string, limit int) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	if utf8.RuneCountInString(out) > limit {
		out = string([]rune(out)[:limit])
	}
	return &out
}

func parseInt(value *string) (int, bool) {
	f, ok := parseFloat(value)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func parseFloat(value *string) (float64, bool) {
	s := trimmed(value)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
