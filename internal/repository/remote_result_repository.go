package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mru-results-api/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

const remoteResultColumns = "`ID`, regno, courseid, semester, acad, score, grade, studyyear, gradept, gpa, result_comment, CreditUnits, progid"

// RemoteResultFilter narrows remote reads.
type RemoteResultFilter struct {
	MinAcademicYear string
}

// RemoteResultRepository reads result rows from the remote Campus Dynamics MySQL database.
type RemoteResultRepository struct {
	db *sqlx.DB
}

// NewRemoteResultRepository constructs the remote reader.
func NewRemoteResultRepository(db *sqlx.DB) *RemoteResultRepository {
	return &RemoteResultRepository{db: db}
}

// Ping checks that the remote database is reachable.
func (r *RemoteResultRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping remote database: %w", err)
	}
	return nil
}

// ListTables returns the remote schema's table names.
func (r *RemoteResultRepository) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	if err := r.db.SelectContext(ctx, &tables, "SHOW TABLES"); err != nil {
		return nil, fmt.Errorf("list remote tables: %w", err)
	}
	return tables, nil
}

// Count returns the number of remote rows matching the filter.
func (r *RemoteResultRepository) Count(ctx context.Context, table string, filter RemoteResultFilter) (int64, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return 0, err
	}
	where, args := remoteConditions(filter, nil)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", quoted, where)

	var total int64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count remote %s: %w", table, err)
	}
	return total, nil
}

// FetchPage returns up to limit rows with a remote ID greater than afterID, ascending.
func (r *RemoteResultRepository) FetchPage(ctx context.Context, table string, afterID int64, limit int, filter RemoteResultFilter) ([]models.RawResultRecord, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1000
	}
	where, args := remoteConditions(filter, []string{"`ID` > ?"})
	args = append([]interface{}{afterID}, args...)
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY `ID` ASC LIMIT ?", remoteResultColumns, quoted, where)
	args = append(args, limit)

	var rows []models.RawResultRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("fetch remote %s page after %d: %w", table, afterID, err)
	}
	return rows, nil
}

func remoteConditions(filter RemoteResultFilter, conditions []string) (string, []interface{}) {
	var args []interface{}
	if filter.MinAcademicYear != "" {
		conditions = append(conditions, "acad >= ?")
		args = append(args, filter.MinAcademicYear)
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func quoteTable(table string) (string, error) {
	if !tableNamePattern.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return "`" + table + "`", nil
}
