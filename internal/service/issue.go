package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sumire/issuetracker/internal/domain"
)

// IssueService implements project resolution and the issue operations.
type IssueService struct {
	projects  ProjectStore
	issues    IssueStore
	validator Validator
	now       func() time.Time
}

// Option configures an IssueService.
type Option func(*IssueService)

// WithClock replaces the clock used for created_on and updated_on.
func WithClock(now func() time.Time) Option {
	return func(s *IssueService) {
		s.now = now
	}
}

// NewIssueService creates a new IssueService.
func NewIssueService(projects ProjectStore, issues IssueStore, validator Validator, opts ...Option) *IssueService {
	s := &IssueService{
		projects:  projects,
		issues:    issues,
		validator: validator,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp returns the current time at the millisecond precision every
// store can round-trip.
func (s *IssueService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// ResolveProject returns the project called name, creating it if absent.
func (s *IssueService) ResolveProject(ctx context.Context, name string) (*domain.Project, error) {
	project, err := s.projects.Resolve(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve project %q: %w", name, err)
	}
	return project, nil
}

// ListIssues returns the issues of the named project matching query.
// It returns domain.ErrNotFound when the project does not exist.
func (s *IssueService) ListIssues(ctx context.Context, projectName string, query url.Values) ([]domain.Issue, error) {
	project, err := s.projects.FindByName(ctx, projectName)
	if err != nil {
		return nil, err
	}

	filter, ok, err := BuildIssueFilter(project.ID, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !ok {
		return []domain.Issue{}, nil
	}

	issues, err := s.issues.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find issues of project %q: %w", projectName, err)
	}
	return issues, nil
}

// CreateIssue validates input and stores a new issue under the named
// project, creating the project on first use.
func (s *IssueService) CreateIssue(ctx context.Context, projectName string, input domain.NewIssue) (*domain.Issue, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	project, err := s.ResolveProject(ctx, projectName)
	if err != nil {
		return nil, err
	}

	issue, err := s.issues.Create(ctx, input.Build(project.ID, s.timestamp()))
	if err != nil {
		return nil, fmt.Errorf("create issue in project %q: %w", projectName, err)
	}
	return issue, nil
}

// UpdateIssue applies update to the issue with the given id.
func (s *IssueService) UpdateIssue(ctx context.Context, id string, update domain.IssueUpdate) error {
	if id == "" {
		return domain.ErrMissingID
	}
	if update.Empty() {
		return domain.ErrNoUpdateFields
	}

	if err := s.issues.Update(ctx, id, update, s.timestamp()); err != nil {
		return fmt.Errorf("update issue %s: %w", id, err)
	}
	return nil
}

// DeleteIssue permanently removes the issue with the given id.
func (s *IssueService) DeleteIssue(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingID
	}

	if err := s.issues.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete issue %s: %w", id, err)
	}
	return nil
}
