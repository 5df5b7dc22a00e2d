package models

// RawResultRecord is one acad_results row as delivered by the remote
// Campus Dynamics database. Every business column is optional so that
// absence can be told apart from a present zero value.
type RawResultRecord struct {
	RemoteID      int64   `db:"ID" json:"-"`
	Regno         *string `db:"regno" json:"regno,omitempty"`
	CourseID      *string `db:"courseid" json:"courseid,omitempty"`
	Semester      *string `db:"semester" json:"semester,omitempty"`
	Acad          *string `db:"acad" json:"acad,omitempty"`
	Score         *string `db:"score" json:"score,omitempty"`
	Grade         *string `db:"grade" json:"grade,omitempty"`
	StudyYear     *string `db:"studyyear" json:"studyyear,omitempty"`
	GradePt       *string `db:"gradept" json:"gradept,omitempty"`
	GPA           *string `db:"gpa" json:"gpa,omitempty"`
	ResultComment *string `db:"result_comment" json:"result_comment,omitempty"`
	CreditUnits   *string `db:"CreditUnits" json:"CreditUnits,omitempty"`
	ProgID        *string `db:"progid" json:"progid,omitempty"`
}

// LocalResultRecord is a validated acad_results row ready for the local store.
// It never carries a primary key; storage assigns one.
type LocalResultRecord struct {
	Regno         string   `db:"regno" json:"regno"`
	CourseID      string   `db:"courseid" json:"courseid"`
	Semester      int      `db:"semester" json:"semester"`
	Acad          string   `db:"acad" json:"acad"`
	StudyYear     *int     `db:"studyyear" json:"studyyear,omitempty"`
	Score         *int     `db:"score" json:"score,omitempty"`
	Grade         *string  `db:"grade" json:"grade,omitempty"`
	GradePt       *float64 `db:"gradept" json:"gradept,omitempty"`
	GPA           *float64 `db:"gpa" json:"gpa,omitempty"`
	ResultComment *string  `db:"result_comment" json:"result_comment,omitempty"`
	CreditUnits   *float64 `db:"CreditUnits" json:"CreditUnits,omitempty"`
	ProgID        *string  `db:"progid" json:"progid,omitempty"`
}

// SkipReason explains why a raw row was rejected by the transformer.
type SkipReason string

const (
	SkipNone                       SkipReason = ""
	SkipMissingIdentifier          SkipReason = "MissingIdentifier"
	SkipRegnoTooLong               SkipReason = "RegnoTooLong"
	SkipCourseidTooLong            SkipReason = "CourseidTooLong"
	SkipInvalidSemester            SkipReason = "InvalidSemester"
	SkipMissingAcademicYear        SkipReason = "MissingAcademicYear"
	SkipPostBuildValidationFailure SkipReason = "PostBuildValidationFailure"
)

// StudentResultRow is a local result joined with the owning student's identity.
type StudentResultRow struct {
	LocalResultRecord
	EntryNo        *string `db:"entryno" json:"entryno,omitempty"`
	FirstName      *string `db:"firstname" json:"firstname,omitempty"`
	OtherName      *string `db:"othername" json:"othername,omitempty"`
	Gender         *string `db:"gender" json:"gender,omitempty"`
	Specialisation *string `db:"specialisation" json:"specialisation,omitempty"`
}

// Programme is the subset of acad_programme needed for pass marks.
type Programme struct {
	ProgCode string  `db:"progcode" json:"progcode"`
	ProgName *string `db:"progname" json:"progname,omitempty"`
	Level    *int    `db:"levelCode" json:"level,omitempty"`
}
