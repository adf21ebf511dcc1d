// Package memory implements the project and issue stores with in-memory data
// structures. Identifiers use the same ObjectID hex format as the Mongo store
// so clients cannot tell the backends apart.
package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sumire/issuetracker/internal/domain"
)

// Store holds projects and issues in memory.
type Store struct {
	mu sync.RWMutex

	projects map[string]domain.Project // name -> project
	issues   []*domain.Issue           // insertion order
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		projects: make(map[string]domain.Project),
	}
}

// Projects returns the project repository backed by s.
func (s *Store) Projects() *ProjectRepository { return &ProjectRepository{s: s} }

// Issues returns the issue repository backed by s.
func (s *Store) Issues() *IssueRepository { return &IssueRepository{s: s} }

func (s *Store) EnsureSchema(context.Context) error { return nil }
func (s *Store) Ping(context.Context) error         { return nil }
func (s *Store) Close(context.Context) error        { return nil }

// ProjectRepository handles project data access.
type ProjectRepository struct {
	s *Store
}

// FindByName retrieves a project by its exact name.
func (r *ProjectRepository) FindByName(_ context.Context, name string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// Resolve returns the project called name, creating it if absent.
func (r *ProjectRepository) Resolve(_ context.Context, name string) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[name]
	if !ok {
		p = domain.Project{ID: primitive.NewObjectID().Hex(), Name: name}
		r.s.projects[name] = p
	}
	return &p, nil
}

// IssueRepository handles issue data access.
type IssueRepository struct {
	s *Store
}

// Create stores issue under a new identifier.
func (r *IssueRepository) Create(_ context.Context, issue domain.Issue) (*domain.Issue, error) {
	issue.ID = primitive.NewObjectID().Hex()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := issue
	r.s.issues = append(r.s.issues, &stored)
	return &issue, nil
}

// Find returns the issues matching filter in insertion order.
func (r *IssueRepository) Find(_ context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	conditions := make([]domain.Condition, len(filter.Conditions))
	for i, c := range filter.Conditions {
		conditions[i] = c
		if c.Field != domain.FieldID {
			continue
		}
		ids := make([]any, len(c.Values))
		for j, v := range c.Values {
			id, err := canonicalID(v.(string))
			if err != nil {
				return nil, err
			}
			ids[j] = id
		}
		conditions[i].Values = ids
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Issue{}
	for _, issue := range r.s.issues {
		if issue.ProjectID == filter.ProjectID && matches(issue, conditions) {
			result = append(result, *issue)
		}
	}
	return result, nil
}

// Update applies update to the issue with the given id.
func (r *IssueRepository) Update(_ context.Context, id string, update domain.IssueUpdate, now time.Time) error {
	id, err := canonicalID(id)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, issue := range r.s.issues {
		if issue.ID == id {
			update.Apply(issue, now)
			return nil
		}
	}
	return domain.ErrNotFound
}

// Delete removes the issue with the given id.
func (r *IssueRepository) Delete(_ context.Context, id string) error {
	id, err := canonicalID(id)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, issue := range r.s.issues {
		if issue.ID == id {
			r.s.issues = append(r.s.issues[:i], r.s.issues[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// canonicalID returns id in the lowercase hex form issues are stored under.
func canonicalID(id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", domain.ErrInvalidID
	}
	return oid.Hex(), nil
}

func matches(issue *domain.Issue, conditions []domain.Condition) bool {
	for _, c := range conditions {
		got := fieldValue(issue, c.Field)
		found := false
		for _, want := range c.Values {
			if equal(got, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func fieldValue(issue *domain.Issue, field domain.IssueField) any {
	switch field {
	case domain.FieldID:
		return issue.ID
	case domain.FieldTitle:
		return issue.Title
	case domain.FieldText:
		return issue.Text
	case domain.FieldCreatedBy:
		return issue.CreatedBy
	case domain.FieldAssignedTo:
		return issue.AssignedTo
	case domain.FieldStatusText:
		return issue.StatusText
	case domain.FieldOpen:
		return issue.Open
	case domain.FieldCreatedOn:
		return issue.CreatedOn
	case domain.FieldUpdatedOn:
		return issue.UpdatedOn
	}
	return nil
}

func equal(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}
