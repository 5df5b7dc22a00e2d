package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/mru-results-api/internal/models"
)

func strPtr(s string) *string { return &s }

func validRaw() models.RawResultRecord {
	return models.RawResultRecord{
		RemoteID: 99,
		Regno:    strPtr(" S21/001 "),
		CourseID: strPtr("CSC201"),
		Semester: strPtr("2"),
		Acad:     strPtr("2023/2024"),
		Score:    strPtr("105"),
		Grade:    strPtr("A"),
	}
}

func observedTransformer() (*RecordTransformer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewRecordTransformer(zap.New(core)), logs
}

func TestTransformNormalisesRow(t *testing.T) {
	transformer, logs := observedTransformer()

	record, reason := transformer.Transform(validRaw())
	require.Equal(t, models.SkipNone, reason)
	require.NotNil(t, record)
	assert.Equal(t, "S21/001", record.Regno)
	assert.Equal(t, "CSC201", record.CourseID)
	assert.Equal(t, 2, record.Semester)
	assert.Equal(t, "2023/2024", record.Acad)
	require.NotNil(t, record.Score)
	assert.Equal(t, 100, *record.Score)
	assert.Equal(t, "A", *record.Grade)
	assert.Nil(t, record.StudyYear)
	assert.Equal(t, 1, logs.FilterMessage("score above 100 clamped").Len())
}

func TestTransformRejections(t *testing.T) {
	cases := map[string]struct {
		mutate func(*models.RawResultRecord)
		reason models.SkipReason
	}{
		"empty regno":       {func(r *models.RawResultRecord) { r.Regno = strPtr("") }, models.SkipMissingIdentifier},
		"blank courseid":    {func(r *models.RawResultRecord) { r.CourseID = strPtr("   ") }, models.SkipMissingIdentifier},
		"nil regno":         {func(r *models.RawResultRecord) { r.Regno = nil }, models.SkipMissingIdentifier},
		"regno too long":    {func(r *models.RawResultRecord) { r.Regno = strPtr(strings.Repeat("R", 86)) }, models.SkipRegnoTooLong},
		"courseid too long": {func(r *models.RawResultRecord) { r.CourseID = strPtr(strings.Repeat("C", 26)) }, models.SkipCourseidTooLong},
		"semester 4":        {func(r *models.RawResultRecord) { r.Semester = strPtr("4") }, models.SkipInvalidSemester},
		"semester 0":        {func(r *models.RawResultRecord) { r.Semester = strPtr("0") }, models.SkipInvalidSemester},
		"semester text":     {func(r *models.RawResultRecord) { r.Semester = strPtr("first") }, models.SkipInvalidSemester},
		"semester missing":  {func(r *models.RawResultRecord) { r.Semester = nil }, models.SkipInvalidSemester},
		"acad empty":        {func(r *models.RawResultRecord) { r.Acad = strPtr(" ") }, models.SkipMissingAcademicYear},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			transformer, logs := observedTransformer()
			raw := validRaw()
			tc.mutate(&raw)

			record, reason := transformer.Transform(raw)
			require.Nil(t, record)
			require.Equal(t, tc.reason, reason)
			require.Equal(t, 1, logs.FilterMessage("record skipped").Len())
		})
	}
}

func TestTransformLengthBoundaries(t *testing.T) {
	transformer, _ := observedTransformer()
	raw := validRaw()
	raw.Regno = strPtr(strings.Repeat("R", 85))
	raw.CourseID = strPtr(strings.Repeat("é", 25))

	record, reason := transformer.Transform(raw)
	require.Equal(t, models.SkipNone, reason)
	require.Len(t, record.Regno, 85)
}

func TestTransformScoreClamping(t *testing.T) {
	cases := []struct {
		in   *string
		want *int
	}{
		{strPtr("-5"), intPtr(0)},
		{strPtr("0"), intPtr(0)},
		{strPtr("59.9"), intPtr(59)},
		{strPtr("100"), intPtr(100)},
		{strPtr("250"), intPtr(100)},
		{strPtr("1e20"), intPtr(100)},
		{strPtr("9.3e18"), intPtr(100)},
		{strPtr("1e300"), intPtr(100)},
		{strPtr("-1e20"), intPtr(0)},
		{nil, nil},
		{strPtr(""), nil},
		{strPtr("absent"), nil},
	}
	transformer, _ := observedTransformer()
	for _, tc := range cases {
		raw := validRaw()
		raw.Score = tc.in
		record, reason := transformer.Transform(raw)
		require.Equal(t, models.SkipNone, reason)
		if tc.want == nil {
			assert.Nil(t, record.Score)
			continue
		}
		require.NotNil(t, record.Score)
		assert.Equal(t, *tc.want, *record.Score)
	}
}

func TestTransformWarnsWithoutRejecting(t *testing.T) {
	transformer, logs := observedTransformer()
	raw := validRaw()
	raw.Acad = strPtr("2023-24")
	raw.Grade = strPtr("AB")
	raw.StudyYear = strPtr("9")
	raw.GradePt = strPtr("6")
	raw.GPA = strPtr("-1")
	raw.CreditUnits = strPtr("3")

	record, reason := transformer.Transform(raw)
	require.Equal(t, models.SkipNone, reason)
	assert.Equal(t, "2023-24", record.Acad)
	assert.Equal(t, "AB", *record.Grade)
	assert.Equal(t, 9, *record.StudyYear)
	assert.Equal(t, 6.0, *record.GradePt)
	assert.Equal(t, -1.0, *record.GPA)
	assert.Equal(t, 3.0, *record.CreditUnits)

	assert.Equal(t, 1, logs.FilterMessage("academic year does not match YYYY/YYYY").FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("non-standard grade").FilterLevelExact(zapcore.InfoLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("study year out of range").Len())
	assert.Equal(t, 1, logs.FilterMessage("gradept out of range").Len())
	assert.Equal(t, 1, logs.FilterMessage("gpa out of range").Len())
}

func TestTransformTruncatesShortText(t *testing.T) {
	transformer, _ := observedTransformer()
	raw := validRaw()
	raw.ResultComment = strPtr("  Carried over from supplementary exam sitting ")
	raw.ProgID = strPtr(strings.Repeat("P", 30))

	record, reason := transformer.Transform(raw)
	require.Equal(t, models.SkipNone, reason)
	assert.Equal(t, "Carried over from supplem", *record.ResultComment)
	assert.Equal(t, strings.Repeat("P", 25), *record.ProgID)
}

func TestTransformKnownGradeIsQuiet(t *testing.T) {
	transformer, logs := observedTransformer()
	raw := validRaw()
	raw.Score = strPtr("70")
	raw.Grade = strPtr(" B+ ")

	record, _ := transformer.Transform(raw)
	assert.Equal(t, "B+", *record.Grade)
	assert.Equal(t, 0, logs.Len())
}

func intPtr(v int) *int { return &v }
