package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/noah-isme/mru-results-api/internal/models"
)

// AcademicPolicy holds the numeric rules for classification.
type AcademicPolicy struct {
	UndergraduatePassMark int
	PostgraduatePassMark  int
	PostgraduateLevel     int
	MaxSemesterLoad       int
	VCListMin             float64
	DeansListMin          float64
	HonorsMax             float64
}

// DefaultAcademicPolicy returns the university's standard rules.
func DefaultAcademicPolicy() AcademicPolicy {
	return AcademicPolicy{
		UndergraduatePassMark: 50,
		PostgraduatePassMark:  60,
		PostgraduateLevel:     4,
		MaxSemesterLoad:       6,
		VCListMin:             4.40,
		DeansListMin:          4.00,
		HonorsMax:             5.00,
	}
}

// AcademicAggregator derives CGPA, pass/fail and list classifications from
// result rows. It performs no I/O and never returns errors.
type AcademicAggregator struct {
	policy AcademicPolicy
}

// NewAcademicAggregator constructs an aggregator, filling zero policy fields with defaults.
func NewAcademicAggregator(policy AcademicPolicy) *AcademicAggregator {
	defaults := DefaultAcademicPolicy()
	if policy.UndergraduatePassMark <= 0 {
		policy.UndergraduatePassMark = defaults.UndergraduatePassMark
	}
	if policy.PostgraduatePassMark <= 0 {
		policy.PostgraduatePassMark = defaults.PostgraduatePassMark
	}
	if policy.PostgraduateLevel <= 0 {
		policy.PostgraduateLevel = defaults.PostgraduateLevel
	}
	if policy.MaxSemesterLoad <= 0 {
		policy.MaxSemesterLoad = defaults.MaxSemesterLoad
	}
	if policy.VCListMin <= 0 {
		policy.VCListMin = defaults.VCListMin
	}
	if policy.DeansListMin <= 0 {
		policy.DeansListMin = defaults.DeansListMin
	}
	if policy.HonorsMax <= 0 {
		policy.HonorsMax = defaults.HonorsMax
	}
	return &AcademicAggregator{policy: policy}
}

// Policy returns the active rules.
func (a *AcademicAggregator) Policy() AcademicPolicy {
	return a.policy
}

// CGPA is the credit-weighted mean of grade points over rows that have both
// CreditUnits and gradept. It is nil when the credit total is zero.
func (a *AcademicAggregator) CGPA(records []models.LocalResultRecord) *float64 {
	var points, credits float64
	for _, r := range records {
		if r.CreditUnits == nil || r.GradePt == nil {
			continue
		}
		points += *r.CreditUnits * *r.GradePt
		credits += *r.CreditUnits
	}
	if credits == 0 {
		return nil
	}
	cgpa := points / credits
	return &cgpa
}

// PassThreshold is the minimum passing score for a programme level.
func (a *AcademicAggregator) PassThreshold(level *int) int {
	if level != nil && *level >= a.policy.PostgraduateLevel {
		return a.policy.PostgraduatePassMark
	}
	return a.policy.UndergraduatePassMark
}

// IsFailing reports whether a row's score is below threshold. Rows without a score never fail.
func (a *AcademicAggregator) IsFailing(record models.LocalResultRecord, threshold int) bool {
	return record.Score != nil && *record.Score < threshold
}

// Honors classifies a CGPA, compared at two decimal places.
func (a *AcademicAggregator) Honors(cgpa *float64) models.HonorsBracket {
	if cgpa == nil {
		return models.HonorsNone
	}
	value := round2(*cgpa)
	switch {
	case value >= a.policy.VCListMin && value <= a.policy.HonorsMax:
		return models.HonorsVCList
	case value >= a.policy.DeansListMin && value < a.policy.VCListMin:
		return models.HonorsDeansList
	}
	return models.HonorsNone
}

// FailedCourses lists distinct "courseid (grade)" pairs of failing rows.
func (a *AcademicAggregator) FailedCourses(records []models.LocalResultRecord, threshold int) []string {
	seen := make(map[string]struct{})
	failed := make([]string, 0)
	for _, r := range records {
		if !a.IsFailing(r, threshold) {
			continue
		}
		grade := ""
		if r.Grade != nil {
			grade = *r.Grade
		}
		entry := fmt.Sprintf("%s (%s)", r.CourseID, grade)
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		failed = append(failed, entry)
	}
	return failed
}

// FailingCourseCount counts distinct failing course identifiers.
func (a *AcademicAggregator) FailingCourseCount(records []models.LocalResultRecord, threshold int) int {
	courses := make(map[string]struct{})
	for _, r := range records {
		if a.IsFailing(r, threshold) {
			courses[r.CourseID] = struct{}{}
		}
	}
	return len(courses)
}

// MissingCourses returns offered courses the student has no row for, sorted.
func (a *AcademicAggregator) MissingCourses(offered []string, records []models.LocalResultRecord) []string {
	taken := make(map[string]struct{}, len(records))
	for _, r := range records {
		taken[r.CourseID] = struct{}{}
	}
	missing := make([]string, 0)
	for _, course := range distinctSorted(offered) {
		if _, ok := taken[course]; !ok {
			missing = append(missing, course)
		}
	}
	return missing
}

// IsIncomplete reports whether registrations fall short of the expected count.
// An expected count of zero means no expectation.
func (a *AcademicAggregator) IsIncomplete(records []models.LocalResultRecord, expected int) bool {
	return expected > 0 && len(records) < expected
}

// Snapshot summarises a student's full history.
func (a *AcademicAggregator) Snapshot(regno string, records []models.LocalResultRecord, level *int, expected int) models.AcademicSnapshot {
	threshold := a.PassThreshold(level)
	cgpa := a.CGPA(records)

	var credits float64
	courses := make(map[string]struct{})
	for _, r := range records {
		courses[r.CourseID] = struct{}{}
		if r.CreditUnits != nil {
			credits += *r.CreditUnits
		}
	}

	snapshot := models.AcademicSnapshot{
		Regno:           regno,
		CGPA:            roundPtr(cgpa),
		TotalCredits:    credits,
		DistinctCourses: len(courses),
		FailingCourses:  a.FailingCourseCount(records, threshold),
		PassMark:        threshold,
		Honors:          a.Honors(cgpa),
		Complete:        !a.IsIncomplete(records, expected),
		ExpectedCourses: expected,
	}
	return snapshot
}

// SummaryInput carries the data a combined summary report is built from.
type SummaryInput struct {
	Filter models.ResultFilter
	// Rows are the in-scope results joined with student identity.
	Rows []models.StudentResultRow
	// Histories hold every result per regno for CGPA; missing entries fall back to in-scope rows.
	Histories map[string][]models.LocalResultRecord
	// Levels maps programme code to programme level.
	Levels map[string]*int
	// ExpectedCourses overrides the per-specialisation offered-course count when positive.
	ExpectedCourses int
}

// BuildSummary classifies every in-scope student into exactly one bucket,
// applying exclusions in the order incomplete, honors, then halted, retake or pass.
func (a *AcademicAggregator) BuildSummary(in SummaryInput) models.SummaryReport {
	report := models.SummaryReport{
		Filter:          in.Filter,
		VCList:          []models.SummaryStudent{},
		DeansList:       []models.SummaryStudent{},
		PassCases:       []models.SummaryStudent{},
		IncompleteCases: []models.SummaryStudent{},
		HaltedCases:     []models.SummaryStudent{},
		RetakeCases:     []models.SummaryStudent{},
	}

	students, order := groupByStudent(in.Rows)
	offered := offeredBySpecialisation(in.Rows)

	for _, regno := range order {
		group := students[regno]
		records := localRecords(group)
		identity := summaryIdentity(group[0])
		line := models.SummaryStudent{StudentIdentity: identity}

		spec := valueOr(group[0].Specialisation, "")
		expected := in.ExpectedCourses
		if expected <= 0 {
			expected = len(offered[spec])
		}
		if a.IsIncomplete(records, expected) {
			line.MissingCourses = a.MissingCourses(offered[spec], records)
			report.IncompleteCases = append(report.IncompleteCases, line)
			continue
		}

		history, ok := in.Histories[regno]
		if !ok || len(history) == 0 {
			history = records
		}
		cgpa := a.CGPA(history)
		line.CGPA = roundPtr(cgpa)
		switch a.Honors(cgpa) {
		case models.HonorsVCList:
			report.VCList = append(report.VCList, line)
			continue
		case models.HonorsDeansList:
			report.DeansList = append(report.DeansList, line)
			continue
		}

		var level *int
		if identity.ProgID != nil {
			level = in.Levels[*identity.ProgID]
		}
		threshold := a.PassThreshold(level)
		failCount := a.FailingCourseCount(records, threshold)
		switch {
		case failCount > a.policy.MaxSemesterLoad:
			line.FailedCount = failCount
			line.FailedCourses = strings.Join(a.FailedCourses(records, threshold), ", ")
			report.HaltedCases = append(report.HaltedCases, line)
		case failCount > 0:
			line.FailedCount = failCount
			line.FailedCourses = strings.Join(a.FailedCourses(records, threshold), ", ")
			report.RetakeCases = append(report.RetakeCases, line)
		default:
			report.PassCases = append(report.PassCases, line)
		}
	}

	sortByCGPA(report.VCList)
	sortByCGPA(report.DeansList)
	sortByName(report.PassCases)
	sortByName(report.IncompleteCases)
	sortByName(report.HaltedCases)
	sortByName(report.RetakeCases)

	report.Total = len(order)
	return report
}

func groupByStudent(rows []models.StudentResultRow) (map[string][]models.StudentResultRow, []string) {
	students := make(map[string][]models.StudentResultRow)
	order := make([]string, 0)
	for _, row := range rows {
		if _, ok := students[row.Regno]; !ok {
			order = append(order, row.Regno)
		}
		students[row.Regno] = append(students[row.Regno], row)
	}
	return students, order
}

// offeredBySpecialisation collects the distinct courses registered by each specialisation's students.
func offeredBySpecialisation(rows []models.StudentResultRow) map[string][]string {
	sets := make(map[string]map[string]struct{})
	for _, row := range rows {
		spec := valueOr(row.Specialisation, "")
		if sets[spec] == nil {
			sets[spec] = make(map[string]struct{})
		}
		sets[spec][row.CourseID] = struct{}{}
	}
	offered := make(map[string][]string, len(sets))
	for spec, set := range sets {
		courses := make([]string, 0, len(set))
		for course := range set {
			courses = append(courses, course)
		}
		sort.Strings(courses)
		offered[spec] = courses
	}
	return offered
}

func localRecords(rows []models.StudentResultRow) []models.LocalResultRecord {
	records := make([]models.LocalResultRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.LocalResultRecord)
	}
	return records
}

func summaryIdentity(row models.StudentResultRow) models.StudentIdentity {
	name := strings.TrimSpace(valueOr(row.OtherName, "") + " " + valueOr(row.FirstName, ""))
	if name == "" {
		name = row.Regno
	}
	return models.StudentIdentity{
		Regno:          row.Regno,
		EntryNo:        row.EntryNo,
		Name:           name,
		Gender:         row.Gender,
		ProgID:         row.ProgID,
		Specialisation: row.Specialisation,
	}
}

func sortByCGPA(students []models.SummaryStudent) {
	sort.SliceStable(students, func(i, j int) bool {
		ci, cj := valueOrZero(students[i].CGPA), valueOrZero(students[j].CGPA)
		if ci != cj {
			return ci > cj
		}
		return students[i].Name < students[j].Name
	})
}

func sortByName(students []models.SummaryStudent) {
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].Regno < students[j].Regno
	})
}

func distinctSorted(values []string) []string {
	set := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
