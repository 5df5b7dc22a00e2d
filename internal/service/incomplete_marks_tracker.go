package service

import (
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/mru-results-api/internal/models"
)

// Sort fields accepted by IncompleteMarksTracker.Sorted.
const (
	SortByRegno             = "regno"
	SortByName              = "name"
	SortBySpecialization    = "specialization"
	SortByTotalCourses      = "total_courses"
	SortByMarksObtained     = "marks_obtained"
	SortByMarksMissingCount = "marks_missing_count"
)

// IncompleteMarksTracker accumulates students who have fewer marks than
// their specialisation expects. It is safe for concurrent use.
type IncompleteMarksTracker struct {
	mu       sync.Mutex
	students []models.IncompleteStudent
}

// NewIncompleteMarksTracker returns an empty tracker.
func NewIncompleteMarksTracker() *IncompleteMarksTracker {
	return &IncompleteMarksTracker{}
}

// TrackStudent records the student when any expected course has no result
// and reports whether an entry was added. Results for other courses are ignored.
func (t *IncompleteMarksTracker) TrackStudent(student models.StudentIdentity, expectedCourses []string, actual []models.LocalResultRecord, specialization string) bool {
	obtained := make(map[string]struct{}, len(actual))
	for _, r := range actual {
		obtained[r.CourseID] = struct{}{}
	}
	missing := make([]string, 0, len(expectedCourses))
	for _, course := range expectedCourses {
		if _, ok := obtained[course]; !ok {
			missing = append(missing, course)
		}
	}
	if len(missing) == 0 {
		return false
	}

	name := strings.TrimSpace(student.Name)
	if name == "" {
		name = student.Regno
	}

	entry := models.IncompleteStudent{
		Regno:             student.Regno,
		Name:              name,
		Specialization:    specialization,
		TotalCourses:      len(expectedCourses),
		MarksObtained:     len(expectedCourses) - len(missing),
		MarksMissingCount: len(missing),
		MissingCourses:    strings.Join(missing, ", "),
	}

	t.mu.Lock()
	t.students = append(t.students, entry)
	t.mu.Unlock()
	return true
}

// IncompleteStudents returns entries in insertion order.
func (t *IncompleteMarksTracker) IncompleteStudents() []models.IncompleteStudent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.IncompleteStudent, len(t.students))
	copy(out, t.students)
	return out
}

// Statistics summarises missing marks across tracked students.
func (t *IncompleteMarksTracker) Statistics() models.IncompleteStatistics {
	students := t.IncompleteStudents()
	stats := models.IncompleteStatistics{TotalStudents: len(students)}
	if len(students) == 0 {
		return stats
	}

	stats.MinMissing = students[0].MarksMissingCount
	for _, s := range students {
		stats.TotalMissingMarks += s.MarksMissingCount
		if s.MarksMissingCount > stats.MaxMissing {
			stats.MaxMissing = s.MarksMissingCount
		}
		if s.MarksMissingCount < stats.MinMissing {
			stats.MinMissing = s.MarksMissingCount
		}
	}
	stats.AvgMissingPerStudent = round2(float64(stats.TotalMissingMarks) / float64(len(students)))
	return stats
}

// Sorted returns entries ordered by field. Defaults are marks_missing_count descending.
func (t *IncompleteMarksTracker) Sorted(field, direction string) []models.IncompleteStudent {
	students := t.IncompleteStudents()
	if field == "" {
		field = SortByMarksMissingCount
	}
	desc := !strings.EqualFold(direction, "asc")

	compare := func(a, b models.IncompleteStudent) int {
		switch field {
		case SortByName:
			return strings.Compare(a.Name, b.Name)
		case SortBySpecialization:
			return strings.Compare(a.Specialization, b.Specialization)
		case SortByTotalCourses:
			return a.TotalCourses - b.TotalCourses
		case SortByMarksObtained:
			return a.MarksObtained - b.MarksObtained
		case SortByMarksMissingCount:
			return a.MarksMissingCount - b.MarksMissingCount
		}
		return strings.Compare(a.Regno, b.Regno)
	}

	sort.SliceStable(students, func(i, j int) bool {
		cmp := compare(students[i], students[j])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return students
}

// BySpecialization groups entries, keeping insertion order within each group.
func (t *IncompleteMarksTracker) BySpecialization() map[string][]models.IncompleteStudent {
	grouped := make(map[string][]models.IncompleteStudent)
	for _, s := range t.IncompleteStudents() {
		grouped[s.Specialization] = append(grouped[s.Specialization], s)
	}
	return grouped
}

// Count returns the number of tracked students.
func (t *IncompleteMarksTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.students)
}

// HasIncompleteStudents reports whether any student is tracked.
func (t *IncompleteMarksTracker) HasIncompleteStudents() bool {
	return t.Count() > 0
}

// Clear removes every tracked student.
func (t *IncompleteMarksTracker) Clear() {
	t.mu.Lock()
	t.students = nil
	t.mu.Unlock()
}
