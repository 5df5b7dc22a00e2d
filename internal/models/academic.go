package models

// HonorsBracket is a CGPA-range recognition list.
type HonorsBracket string

const (
	HonorsNone      HonorsBracket = ""
	HonorsVCList    HonorsBracket = "VC's List"
	HonorsDeansList HonorsBracket = "Dean's List"
)

// ResultFilter scopes report queries. Zero values mean "any".
type ResultFilter struct {
	Acad           string `json:"acad,omitempty"`
	Semester       int    `json:"semester,omitempty"`
	ProgID         string `json:"progid,omitempty"`
	StudyYear      int    `json:"studyyear,omitempty"`
	Specialisation string `json:"specialisation,omitempty"`
}

// Matches reports whether a result row falls inside the filter scope.
// Specialisation is a student attribute and is applied by the query layer.
func (f ResultFilter) Matches(r LocalResultRecord) bool {
	if f.Acad != "" && r.Acad != f.Acad {
		return false
	}
	if f.Semester != 0 && r.Semester != f.Semester {
		return false
	}
	if f.ProgID != "" && (r.ProgID == nil || *r.ProgID != f.ProgID) {
		return false
	}
	if f.StudyYear != 0 && (r.StudyYear == nil || *r.StudyYear != f.StudyYear) {
		return false
	}
	return true
}

// AcademicSnapshot is derived per query from a student's full result history.
type AcademicSnapshot struct {
	Regno           string        `json:"regno"`
	CGPA            *float64      `json:"cgpa"`
	TotalCredits    float64       `json:"total_credits"`
	DistinctCourses int           `json:"distinct_courses"`
	FailingCourses  int           `json:"failing_courses"`
	PassMark        int           `json:"pass_mark"`
	Honors          HonorsBracket `json:"honors,omitempty"`
	Complete        bool          `json:"complete"`
	ExpectedCourses int           `json:"expected_courses,omitempty"`
}

// StudentIdentity carries the display fields reports need.
type StudentIdentity struct {
	Regno          string  `json:"regno"`
	EntryNo        *string `json:"entryno,omitempty"`
	Name           string  `json:"name"`
	Gender         *string `json:"gender,omitempty"`
	ProgID         *string `json:"progid,omitempty"`
	Specialisation *string `json:"specialisation,omitempty"`
}

// SummaryStudent is one line of a summary bucket.
type SummaryStudent struct {
	StudentIdentity
	CGPA           *float64 `json:"cgpa,omitempty"`
	FailedCourses  string   `json:"failed_courses,omitempty"`
	FailedCount    int      `json:"failed_count,omitempty"`
	MissingCourses []string `json:"missing_courses,omitempty"`
}

// SummaryReport holds mutually exclusive classification buckets.
type SummaryReport struct {
	Filter          ResultFilter     `json:"filter"`
	VCList          []SummaryStudent `json:"vc_list"`
	DeansList       []SummaryStudent `json:"deans_list"`
	PassCases       []SummaryStudent `json:"pass_cases"`
	IncompleteCases []SummaryStudent `json:"incomplete_cases"`
	HaltedCases     []SummaryStudent `json:"halted_cases"`
	RetakeCases     []SummaryStudent `json:"retake_cases"`
	Total           int              `json:"total"`
}

// IncompleteStudent is a missing-marks entry.
type IncompleteStudent struct {
	Regno             string `json:"regno"`
	Name              string `json:"name"`
	Specialization    string `json:"specialization"`
	TotalCourses      int    `json:"total_courses"`
	MarksObtained     int    `json:"marks_obtained"`
	MarksMissingCount int    `json:"marks_missing_count"`
	MissingCourses    string `json:"missing_courses"`
}

// IncompleteStatistics summarises a missing-marks run.
type IncompleteStatistics struct {
	TotalStudents        int     `json:"total_students"`
	TotalMissingMarks    int     `json:"total_missing_marks"`
	AvgMissingPerStudent float64 `json:"avg_missing_per_student"`
	MaxMissing           int     `json:"max_missing"`
	MinMissing           int     `json:"min_missing"`
}

// MissingMarksReport groups incomplete students by specialisation.
type MissingMarksReport struct {
	Filter           ResultFilter                   `json:"filter"`
	Students         []IncompleteStudent            `json:"students"`
	BySpecialization map[string][]IncompleteStudent `json:"by_specialization"`
	Statistics       IncompleteStatistics           `json:"statistics"`
	CourseNames      map[string]string              `json:"course_names,omitempty"`
}
