package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sumire/issuetracker/internal/domain"
)

type projectRow struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`
}

func (r projectRow) toDomain() *domain.Project {
	return &domain.Project{ID: r.ID.String(), Name: r.Name}
}

// ProjectRepository handles project data access.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByName retrieves a project by its exact name.
func (r *ProjectRepository) FindByName(ctx context.Context, name string) (*domain.Project, error) {
	var row projectRow
	err := r.db.GetContext(ctx, &row, `SELECT id, name FROM projects WHERE name = $1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project by name %q: %w", name, err)
	}
	return row.toDomain(), nil
}

// Resolve creates the project called name or returns the existing one.
// The no-op update on conflict makes RETURNING yield the existing row.
func (r *ProjectRepository) Resolve(ctx context.Context, name string) (*domain.Project, error) {
	query, args, err := psql.Insert("projects").
		Columns("id", "name").
		Values(uuid.New(), name).
		Suffix(`ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id, name`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build project upsert: %w", err)
	}

	var row projectRow
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		return nil, fmt.Errorf("upsert project %q: %w", name, err)
	}
	return row.toDomain(), nil
}
