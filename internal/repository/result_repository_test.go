package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mru-results-api/internal/models"
)

func sampleRecord() models.LocalResultRecord {
	score := 100
	grade := "A"
	units := 3.0
	return models.LocalResultRecord{
		Regno:       "S21/001",
		CourseID:    "CSC201",
		Semester:    2,
		Acad:        "2023/2024",
		Score:       &score,
		Grade:       &grade,
		CreditUnits: &units,
	}
}

func TestResultRepositoryUpsertMySQL(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewResultRepository(db, "mysql")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO acad_results") + ".*" + regexp.QuoteMeta("ON DUPLICATE KEY UPDATE semester = VALUES(semester)")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Upsert(context.Background(), sampleRecord())
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = repo.Upsert(context.Background(), sampleRecord())
	require.NoError(t, err)
	require.False(t, inserted)

	inserted, err = repo.Upsert(context.Background(), sampleRecord())
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryUpsertPostgres(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewResultRepository(db, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (regno, courseid) DO UPDATE SET") + ".*" + regexp.QuoteMeta("RETURNING (xmax = 0) AS inserted")).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(false))

	inserted, err := repo.Upsert(context.Background(), sampleRecord())
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryExistsInsertUpdate(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewResultRepository(db, "mysql")
	record := sampleRecord()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM acad_results WHERE regno = ? AND courseid = ?")).
		WithArgs("S21/001", "CSC201").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO acad_results (regno, courseid, semester, acad")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE acad_results SET semester = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	exists, err := repo.Exists(context.Background(), record.Regno, record.CourseID)
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, repo.Insert(context.Background(), record))
	require.NoError(t, repo.Update(context.Background(), record.Regno, record.CourseID, record))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListScoped(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewResultRepository(db, "mysql")

	columns := []string{"regno", "courseid", "semester", "acad", "studyyear", "score", "grade", "gradept", "gpa", "result_comment", "CreditUnits", "progid", "entryno", "firstname", "othername", "gender", "specialisation"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM acad_results r LEFT JOIN acad_student s ON s.regno = r.regno WHERE 1=1 AND r.acad = ? AND r.semester = ? AND s.specialisation = ?")).
		WithArgs("2023/2024", 1, "SE").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("S21/001", "CSC201", 1, "2023/2024", 2, 71, "A", 5.0, 4.5, nil, 3.0, "BSCS", "E001", "Jane", "Doe", "F", "SE"))

	rows, err := repo.ListScoped(context.Background(), models.ResultFilter{Acad: "2023/2024", Semester: 1, Specialisation: "SE"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "S21/001", rows[0].Regno)
	require.Equal(t, 71, *rows[0].Score)
	require.Equal(t, "Jane", *rows[0].FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListHistories(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewResultRepository(db, "mysql")

	columns := []string{"regno", "courseid", "semester", "acad", "studyyear", "score", "grade", "gradept", "gpa", "result_comment", "CreditUnits", "progid"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM acad_results WHERE regno IN (?, ?)")).
		WithArgs("S1", "S2").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("S1", "C1", 1, "2022/2023", 1, 80, "A", 5.0, nil, nil, 3.0, nil).
			AddRow("S1", "C2", 1, "2022/2023", 1, 40, "F", 0.0, nil, nil, 3.0, nil).
			AddRow("S2", "C1", 1, "2022/2023", 1, 65, "B", 4.0, nil, nil, 3.0, nil))

	histories, err := repo.ListHistories(context.Background(), []string{"S1", "S2"})
	require.NoError(t, err)
	require.Len(t, histories["S1"], 2)
	require.Len(t, histories["S2"], 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateKey(t *testing.T) {
	require.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	require.True(t, IsDuplicateKey(&pq.Error{Code: "23505"}))
	require.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1213}))
	require.False(t, IsDuplicateKey(errors.New("boom")))
}
