package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sumire/issuetracker/internal/domain"
)

type issueRow struct {
	ID         uuid.UUID `db:"id"`
	ProjectID  uuid.UUID `db:"project_id"`
	Title      string    `db:"issue_title"`
	Text       string    `db:"issue_text"`
	CreatedOn  time.Time `db:"created_on"`
	UpdatedOn  time.Time `db:"updated_on"`
	CreatedBy  string    `db:"created_by"`
	AssignedTo string    `db:"assigned_to"`
	Open       bool      `db:"open"`
	StatusText string    `db:"status_text"`
}

func (r issueRow) toDomain() domain.Issue {
	return domain.Issue{
		ID:         r.ID.String(),
		ProjectID:  r.ProjectID.String(),
		Title:      r.Title,
		Text:       r.Text,
		CreatedOn:  r.CreatedOn.UTC(),
		UpdatedOn:  r.UpdatedOn.UTC(),
		CreatedBy:  r.CreatedBy,
		AssignedTo: r.AssignedTo,
		Open:       r.Open,
		StatusText: r.StatusText,
	}
}

// IssueRepository handles issue data access.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new IssueRepository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create inserts issue under a new UUID.
func (r *IssueRepository) Create(ctx context.Context, issue domain.Issue) (*domain.Issue, error) {
	projectID, err := parseID(issue.ProjectID)
	if err != nil {
		return nil, err
	}

	row := issueRow{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Title:      issue.Title,
		Text:       issue.Text,
		CreatedOn:  issue.CreatedOn,
		UpdatedOn:  issue.UpdatedOn,
		CreatedBy:  issue.CreatedBy,
		AssignedTo: issue.AssignedTo,
		Open:       issue.Open,
		StatusText: issue.StatusText,
	}

	_, err = r.db.NamedExecContext(ctx,
		`INSERT INTO issues (id, project_id, issue_title, issue_text, created_on, updated_on,
		                     created_by, assigned_to, open, status_text)
		 VALUES (:id, :project_id, :issue_title, :issue_text, :created_on, :updated_on,
		         :created_by, :assigned_to, :open, :status_text)`, row)
	if err != nil {
		return nil, fmt.Errorf("insert issue: %w", err)
	}

	created := row.toDomain()
	return &created, nil
}

// Find returns the issues matching filter in insertion order.
func (r *IssueRepository) Find(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	builder, err := selectIssues(filter)
	if err != nil {
		return nil, err
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build issue query: %w", err)
	}

	var rows []issueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select issues: %w", err)
	}

	issues := make([]domain.Issue, 0, len(rows))
	for _, row := range rows {
		issues = append(issues, row.toDomain())
	}
	return issues, nil
}

// Update applies update and updated_on in a single statement.
func (r *IssueRepository) Update(ctx context.Context, id string, update domain.IssueUpdate, now time.Time) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}

	query, args, err := updateIssue(uid, update, now).ToSql()
	if err != nil {
		return fmt.Errorf("build issue update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update issue %s: %w", id, err)
	}
	return requireRow(res.RowsAffected())
}

// Delete removes the issue with the given id.
func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete issue %s: %w", id, err)
	}
	return requireRow(res.RowsAffected())
}

func requireRow(n int64, err error) error {
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
