package dto

import "github.com/noah-isme/mru-results-api/internal/models"

// AcademicFilterQuery captures report scope query parameters.
type AcademicFilterQuery struct {
	Acad            string `form:"acad" validate:"omitempty,max=20"`
	Semester        int    `form:"semester" validate:"omitempty,min=1,max=3"`
	ProgID          string `form:"progid" validate:"omitempty,max=25"`
	StudyYear       int    `form:"studyyear" validate:"omitempty,min=1,max=7"`
	Specialisation  string `form:"specialisation" validate:"omitempty,max=100"`
	ExpectedCourses int    `form:"expected_courses" validate:"omitempty,min=1"`
}

// Filter converts the query into a result filter.
func (q AcademicFilterQuery) Filter() models.ResultFilter {
	return models.ResultFilter{
		Acad:           q.Acad,
		Semester:       q.Semester,
		ProgID:         q.ProgID,
		StudyYear:      q.StudyYear,
		Specialisation: q.Specialisation,
	}
}

// MissingMarksQuery adds ordering to the report scope.
type MissingMarksQuery struct {
	AcademicFilterQuery
	Sort  string `form:"sort" validate:"omitempty,oneof=regno name specialization total_courses marks_obtained marks_missing_count"`
	Order string `form:"order" validate:"omitempty,oneof=asc desc"`
}

// SnapshotQuery captures GET /academics/students/:regno/snapshot parameters.
type SnapshotQuery struct {
	ProgrammeLevel  *int `form:"programme_level" validate:"omitempty,min=1,max=9"`
	ExpectedCourses int  `form:"expected_courses" validate:"omitempty,min=1"`
}
