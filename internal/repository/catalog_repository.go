package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mru-results-api/internal/models"
)

// CatalogRepository reads programme and course reference data.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindProgramme returns the programme by code.
func (r *CatalogRepository) FindProgramme(ctx context.Context, progCode string) (*models.Programme, error) {
	query := r.db.Rebind("SELECT progcode, progname, levelCode FROM acad_programme WHERE progcode = ?")
	var programme models.Programme
	if err := r.db.GetContext(ctx, &programme, query, progCode); err != nil {
		return nil, fmt.Errorf("get programme %s: %w", progCode, err)
	}
	return &programme, nil
}

// CourseNames maps course identifiers to their titles.
func (r *CatalogRepository) CourseNames(ctx context.Context, courseIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(courseIDs))
	if len(courseIDs) == 0 {
		return names, nil
	}
	query, args, err := sqlx.In("SELECT courseID, courseName FROM acad_course WHERE courseID IN (?)", courseIDs)
	if err != nil {
		return nil, fmt.Errorf("build course query: %w", err)
	}
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list course names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan course name: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course names: %w", err)
	}
	return names, nil
}
