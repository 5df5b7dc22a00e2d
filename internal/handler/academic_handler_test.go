package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mru-results-api/internal/dto"
	"github.com/noah-isme/mru-results-api/internal/models"
	appErrors "github.com/noah-isme/mru-results-api/pkg/errors"
)

type academicServiceMock struct {
	snapshot *models.AcademicSnapshot
	summary  *models.SummaryReport
	missing  *models.MissingMarksReport
	err      error

	regno        string
	snapshotQ    dto.SnapshotQuery
	summaryQ     dto.AcademicFilterQuery
	missingMarkQ dto.MissingMarksQuery
}

func (m *academicServiceMock) Snapshot(ctx context.Context, regno string, q dto.SnapshotQuery) (*models.AcademicSnapshot, error) {
	m.regno = regno
	m.snapshotQ = q
	return m.snapshot, m.err
}

func (m *academicServiceMock) Summary(ctx context.Context, q dto.AcademicFilterQuery) (*models.SummaryReport, error) {
	m.summaryQ = q
	return m.summary, m.err
}

func (m *academicServiceMock) MissingMarks(ctx context.Context, q dto.MissingMarksQuery) (*models.MissingMarksReport, error) {
	m.missingMarkQ = q
	return m.missing, m.err
}

func TestAcademicHandlerSnapshotDecodesRegno(t *testing.T) {
	cgpa := 3.43
	svc := &academicServiceMock{snapshot: &models.AcademicSnapshot{Regno: "S21/001", CGPA: &cgpa, PassMark: 50}}
	r := newTestRouter(&syncServiceMock{}, svc)

	w, env := perform(t, r, http.MethodGet, "/api/v1/academics/students/S21%2F001/snapshot?programme_level=4&expected_courses=6", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "S21/001", svc.regno)
	require.NotNil(t, svc.snapshotQ.ProgrammeLevel)
	assert.Equal(t, 4, *svc.snapshotQ.ProgrammeLevel)
	assert.Equal(t, 6, svc.snapshotQ.ExpectedCourses)

	var snapshot models.AcademicSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.InDelta(t, 3.43, *snapshot.CGPA, 1e-9)
}

func TestAcademicHandlerSnapshotNotFound(t *testing.T) {
	svc := &academicServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "no results found for student")}
	r := newTestRouter(&syncServiceMock{}, svc)

	w, env := perform(t, r, http.MethodGet, "/api/v1/academics/students/X1/snapshot", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, env.Error.Code)
}

func TestAcademicHandlerSummaryBindsFilter(t *testing.T) {
	svc := &academicServiceMock{summary: &models.SummaryReport{Total: 4}}
	r := newTestRouter(&syncServiceMock{}, svc)

	w, env := perform(t, r, http.MethodGet, "/api/v1/academics/summary?acad=2023%2F2024&semester=1&progid=BSC-CS&studyyear=2&specialisation=Software&expected_courses=6", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.AcademicFilterQuery{
		Acad:            "2023/2024",
		Semester:        1,
		ProgID:          "BSC-CS",
		StudyYear:       2,
		Specialisation:  "Software",
		ExpectedCourses: 6,
	}, svc.summaryQ)

	var report models.SummaryReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 4, report.Total)
}

func TestAcademicHandlerSummaryRejectsNonNumeric(t *testing.T) {
	r := newTestRouter(&syncServiceMock{}, &academicServiceMock{})

	w, _ := perform(t, r, http.MethodGet, "/api/v1/academics/summary?semester=first", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcademicHandlerMissingMarks(t *testing.T) {
	svc := &academicServiceMock{missing: &models.MissingMarksReport{
		Students:   []models.IncompleteStudent{{Regno: "S21/002", MarksMissingCount: 3}},
		Statistics: models.IncompleteStatistics{TotalStudents: 1, TotalMissingMarks: 3},
	}}
	r := newTestRouter(&syncServiceMock{}, svc)

	w, env := perform(t, r, http.MethodGet, "/api/v1/academics/missing-marks?acad=2023%2F2024&sort=name&order=asc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2023/2024", svc.missingMarkQ.Acad)
	assert.Equal(t, "name", svc.missingMarkQ.Sort)
	assert.Equal(t, "asc", svc.missingMarkQ.Order)
	assert.Equal(t, float64(1), env.Meta["incomplete_students"])
}
