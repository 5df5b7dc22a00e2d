package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/mru-results-api/internal/models"
)

const (
	mysqlDuplicateEntry = 1062
	pgUniqueViolation   = "23505"
)

const resultColumns = "regno, courseid, semester, acad, studyyear, score, grade, gradept, gpa, result_comment, CreditUnits, progid"

const insertResultQuery = `INSERT INTO acad_results (regno, courseid, semester, acad, studyyear, score, grade, gradept, gpa, result_comment, CreditUnits, progid)
VALUES (:regno, :courseid, :semester, :acad, :studyyear, :score, :grade, :gradept, :gpa, :result_comment, :CreditUnits, :progid)`

var resultUpdateColumns = []string{"semester", "acad", "studyyear", "score", "grade", "gradept", "gpa", "result_comment", "CreditUnits", "progid"}

// ResultRepository persists acad_results rows in the local database, keyed by (regno, courseid).
type ResultRepository struct {
	db      *sqlx.DB
	dialect string
}

// NewResultRepository constructs the local result store. Dialect is "mysql" or "postgres".
func NewResultRepository(db *sqlx.DB, dialect string) *ResultRepository {
	if dialect != "postgres" {
		dialect = "mysql"
	}
	return &ResultRepository{db: db, dialect: dialect}
}

// Exists reports whether a row with the natural key is already stored.
func (r *ResultRepository) Exists(ctx context.Context, regno, courseID string) (bool, error) {
	query := r.db.Rebind("SELECT COUNT(1) FROM acad_results WHERE regno = ? AND courseid = ?")
	var count int
	if err := r.db.GetContext(ctx, &count, query, regno, courseID); err != nil {
		return false, fmt.Errorf("check result %s/%s: %w", regno, courseID, err)
	}
	return count > 0, nil
}

// Insert stores a new row; the primary key is assigned by the database.
func (r *ResultRepository) Insert(ctx context.Context, record models.LocalResultRecord) error {
	if _, err := r.db.NamedExecContext(ctx, insertResultQuery, record); err != nil {
		return fmt.Errorf("insert result %s/%s: %w", record.Regno, record.CourseID, err)
	}
	return nil
}

// Update overwrites every transformed column of the row matching the natural key.
func (r *ResultRepository) Update(ctx context.Context, regno, courseID string, record models.LocalResultRecord) error {
	set := make([]string, 0, len(resultUpdateColumns))
	for _, column := range resultUpdateColumns {
		set = append(set, fmt.Sprintf("%s = :%s", column, column))
	}
	query := fmt.Sprintf("UPDATE acad_results SET %s WHERE regno = :key_regno AND courseid = :key_courseid", strings.Join(set, ", "))

	args := map[string]interface{}{
		"semester":       record.Semester,
		"acad":           record.Acad,
		"studyyear":      record.StudyYear,
		"score":          record.Score,
		"grade":          record.Grade,
		"gradept":        record.GradePt,
		"gpa":            record.GPA,
		"result_comment": record.ResultComment,
		"CreditUnits":    record.CreditUnits,
		"progid":         record.ProgID,
		"key_regno":      regno,
		"key_courseid":   courseID,
	}
	if _, err := r.db.NamedExecContext(ctx, query, args); err != nil {
		return fmt.Errorf("update result %s/%s: %w", regno, courseID, err)
	}
	return nil
}

// Upsert inserts or updates the row in a single statement and reports whether a new row was created.
func (r *ResultRepository) Upsert(ctx context.Context, record models.LocalResultRecord) (bool, error) {
	if r.dialect == "postgres" {
		return r.upsertPostgres(ctx, record)
	}

	set := make([]string, 0, len(resultUpdateColumns))
	for _, column := range resultUpdateColumns {
		set = append(set, fmt.Sprintf("%s = VALUES(%s)", column, column))
	}
	query := insertResultQuery + " ON DUPLICATE KEY UPDATE " + strings.Join(set, ", ")

	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return false, fmt.Errorf("upsert result %s/%s: %w", record.Regno, record.CourseID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert result %s/%s rows affected: %w", record.Regno, record.CourseID, err)
	}
	// MySQL reports 1 for an insert, 2 for a changed update and 0 for an unchanged one.
	return affected == 1, nil
}

func (r *ResultRepository) upsertPostgres(ctx context.Context, record models.LocalResultRecord) (bool, error) {
	set := make([]string, 0, len(resultUpdateColumns))
	for _, column := range resultUpdateColumns {
		set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}
	named := insertResultQuery + " ON CONFLICT (regno, courseid) DO UPDATE SET " + strings.Join(set, ", ") + " RETURNING (xmax = 0) AS inserted"

	query, args, err := sqlx.Named(named, record)
	if err != nil {
		return false, fmt.Errorf("bind upsert result: %w", err)
	}
	var inserted bool
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).Scan(&inserted); err != nil {
		return false, fmt.Errorf("upsert result %s/%s: %w", record.Regno, record.CourseID, err)
	}
	return inserted, nil
}

// ListByRegno returns the full result history of a student.
func (r *ResultRepository) ListByRegno(ctx context.Context, regno string) ([]models.LocalResultRecord, error) {
	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM acad_results WHERE regno = ? ORDER BY acad, semester, courseid", resultColumns))
	var records []models.LocalResultRecord
	if err := r.db.SelectContext(ctx, &records, query, regno); err != nil {
		return nil, fmt.Errorf("list results for %s: %w", regno, err)
	}
	return records, nil
}

// ListHistories returns the full result history for each of the given students.
func (r *ResultRepository) ListHistories(ctx context.Context, regnos []string) (map[string][]models.LocalResultRecord, error) {
	histories := make(map[string][]models.LocalResultRecord, len(regnos))
	if len(regnos) == 0 {
		return histories, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM acad_results WHERE regno IN (?) ORDER BY regno, acad, semester, courseid", resultColumns), regnos)
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}
	var records []models.LocalResultRecord
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list result histories: %w", err)
	}
	for _, record := range records {
		histories[record.Regno] = append(histories[record.Regno], record)
	}
	return histories, nil
}

// ListScoped returns result rows inside the filter scope joined with student identity.
func (r *ResultRepository) ListScoped(ctx context.Context, filter models.ResultFilter) ([]models.StudentResultRow, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, 5)

	if filter.Acad != "" {
		conditions = append(conditions, "r.acad = ?")
		args = append(args, filter.Acad)
	}
	if filter.Semester != 0 {
		conditions = append(conditions, "r.semester = ?")
		args = append(args, filter.Semester)
	}
	if filter.ProgID != "" {
		conditions = append(conditions, "r.progid = ?")
		args = append(args, filter.ProgID)
	}
	if filter.StudyYear != 0 {
		conditions = append(conditions, "r.studyyear = ?")
		args = append(args, filter.StudyYear)
	}
	if filter.Specialisation != "" {
		conditions = append(conditions, "s.specialisation = ?")
		args = append(args, filter.Specialisation)
	}

	query := fmt.Sprintf(`SELECT r.regno, r.courseid, r.semester, r.acad, r.studyyear, r.score, r.grade, r.gradept, r.gpa, r.result_comment, r.CreditUnits, r.progid,
        s.entryno, s.firstname, s.othername, s.gender, s.specialisation
        FROM acad_results r LEFT JOIN acad_student s ON s.regno = r.regno
        WHERE %s ORDER BY r.regno, r.courseid`, strings.Join(conditions, " AND "))

	var rows []models.StudentResultRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list scoped results: %w", err)
	}
	return rows, nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation from MySQL or PostgreSQL.
func IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return string(pgErr.Code) == pgUniqueViolation
	}
	return false
}
