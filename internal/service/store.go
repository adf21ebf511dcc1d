package service

import (
	"context"
	"time"

	"github.com/sumire/issuetracker/internal/domain"
)

// ProjectStore defines the project data access interface consumed by IssueService.
type ProjectStore interface {
	// FindByName returns domain.ErrNotFound when no project has the name.
	FindByName(ctx context.Context, name string) (*domain.Project, error)
	// Resolve returns the project called name, creating it if absent. Two
	// concurrent calls for the same unseen name return the same project.
	Resolve(ctx context.Context, name string) (*domain.Project, error)
}

// IssueStore defines the issue data access interface consumed by IssueService.
type IssueStore interface {
	Create(ctx context.Context, issue domain.Issue) (*domain.Issue, error)
	Find(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error)
	// Update applies update and sets updated_on to now in a single write.
	// It returns domain.ErrNotFound when no issue has the id and
	// domain.ErrInvalidID when the id is not in the store's format.
	Update(ctx context.Context, id string, update domain.IssueUpdate, now time.Time) error
	// Delete returns domain.ErrNotFound or domain.ErrInvalidID like Update.
	Delete(ctx context.Context, id string) error
}

// Validator validates tagged structs.
type Validator interface {
	Validate(i any) error
}
