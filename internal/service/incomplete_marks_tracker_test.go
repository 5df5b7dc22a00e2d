package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mru-results-api/internal/models"
)

func marks(courses ...string) []models.LocalResultRecord {
	out := make([]models.LocalResultRecord, 0, len(courses))
	for _, c := range courses {
		out = append(out, models.LocalResultRecord{CourseID: c, Score: intPtr(70)})
	}
	return out
}

func TestTrackStudentRecordsShortfall(t *testing.T) {
	tracker := NewIncompleteMarksTracker()
	expected := []string{"CSC101", "CSC102", "CSC103", "CSC104", "CSC105"}

	added := tracker.TrackStudent(
		models.StudentIdentity{Regno: "S21/001", Name: "Ann Akello"},
		expected,
		marks("CSC101", "CSC104"),
		"Software",
	)

	require.True(t, added)
	students := tracker.IncompleteStudents()
	require.Len(t, students, 1)
	assert.Equal(t, models.IncompleteStudent{
		Regno:             "S21/001",
		Name:              "Ann Akello",
		Specialization:    "Software",
		TotalCourses:      5,
		MarksObtained:     2,
		MarksMissingCount: 3,
		MissingCourses:    "CSC102, CSC103, CSC105",
	}, students[0])
}

func TestTrackStudentIgnoresCompleteStudents(t *testing.T) {
	tracker := NewIncompleteMarksTracker()

	assert.False(t, tracker.TrackStudent(models.StudentIdentity{Regno: "S21/002"}, []string{"CSC101"}, marks("CSC101"), ""))
	assert.False(t, tracker.TrackStudent(models.StudentIdentity{Regno: "S21/003"}, []string{"CSC101"}, marks("CSC101", "CSC102"), ""))
	assert.False(t, tracker.HasIncompleteStudents())
	assert.Equal(t, 0, tracker.Count())
}

func TestTrackStudentFallsBackToRegno(t *testing.T) {
	tracker := NewIncompleteMarksTracker()

	tracker.TrackStudent(models.StudentIdentity{Regno: "S21/004", Name: "  "}, []string{"CSC101", "CSC102"}, marks("CSC101"), "")
	assert.Equal(t, "S21/004", tracker.IncompleteStudents()[0].Name)
}

func seededTracker() *IncompleteMarksTracker {
	tracker := NewIncompleteMarksTracker()
	all := []string{"C1", "C2", "C3", "C4"}
	tracker.TrackStudent(models.StudentIdentity{Regno: "S3", Name: "Cal"}, all, marks("C1"), "Networks")
	tracker.TrackStudent(models.StudentIdentity{Regno: "S1", Name: "Ann"}, all, marks("C1", "C2", "C3"), "Software")
	tracker.TrackStudent(models.StudentIdentity{Regno: "S2", Name: "Ben"}, all, marks("C1", "C2"), "Software")
	return tracker
}

func TestTrackerStatistics(t *testing.T) {
	stats := seededTracker().Statistics()

	assert.Equal(t, models.IncompleteStatistics{
		TotalStudents:        3,
		TotalMissingMarks:    6,
		AvgMissingPerStudent: 2,
		MaxMissing:           3,
		MinMissing:           1,
	}, stats)

	assert.Equal(t, models.IncompleteStatistics{}, NewIncompleteMarksTracker().Statistics())
}

func TestTrackerSorted(t *testing.T) {
	tracker := seededTracker()

	regnos := func(students []models.IncompleteStudent) []string {
		out := make([]string, 0, len(students))
		for _, s := range students {
			out = append(out, s.Regno)
		}
		return out
	}

	assert.Equal(t, []string{"S3", "S2", "S1"}, regnos(tracker.Sorted("", "")))
	assert.Equal(t, []string{"S1", "S2", "S3"}, regnos(tracker.Sorted(SortByMarksMissingCount, "asc")))
	assert.Equal(t, []string{"S1", "S2", "S3"}, regnos(tracker.Sorted(SortByName, "asc")))
	assert.Equal(t, []string{"S1", "S2", "S3"}, regnos(tracker.Sorted(SortByMarksObtained, "desc")))
	assert.Equal(t, []string{"S1", "S2", "S3"}, regnos(tracker.Sorted(SortByRegno, "ASC")))
	assert.Equal(t, []string{"S3", "S1", "S2"}, regnos(tracker.Sorted(SortBySpecialization, "asc")))
}

func TestTrackerGroupingAndClear(t *testing.T) {
	tracker := seededTracker()

	grouped := tracker.BySpecialization()
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["Software"], 2)
	assert.Equal(t, "S1", grouped["Software"][0].Regno)
	assert.Len(t, grouped["Networks"], 1)

	assert.True(t, tracker.HasIncompleteStudents())
	tracker.Clear()
	assert.Equal(t, 0, tracker.Count())
	assert.Empty(t, tracker.IncompleteStudents())
}

func TestTrackStudentCountsOnlyExpectedCourses(t *testing.T) {
	tracker := NewIncompleteMarksTracker()
	expected := []string{"CSC101", "CSC102", "CSC103"}

	require.True(t, tracker.TrackStudent(models.StudentIdentity{Regno: "S21/010"}, expected, marks("CSC101", "MTH201"), "Software"))
	require.True(t, tracker.TrackStudent(models.StudentIdentity{Regno: "S21/011"}, expected, marks("CSC101", "CSC101", "CSC101"), "Software"))

	students := tracker.IncompleteStudents()
	require.Len(t, students, 2)
	for _, s := range students {
		assert.Equal(t, 3, s.TotalCourses, s.Regno)
		assert.Equal(t, 1, s.MarksObtained, s.Regno)
		assert.Equal(t, 2, s.MarksMissingCount, s.Regno)
		assert.Equal(t, "CSC102, CSC103", s.MissingCourses, s.Regno)
	}
	assert.Equal(t, 4, tracker.Statistics().TotalMissingMarks)

	assert.False(t, tracker.TrackStudent(models.StudentIdentity{Regno: "S21/012"}, expected, marks("CSC103", "CSC102", "CSC101", "MTH201"), "Software"))
}
