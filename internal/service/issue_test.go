package service_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/issuetracker/internal/domain"
	"github.com/sumire/issuetracker/internal/handler"
	"github.com/sumire/issuetracker/internal/repository"
	"github.com/sumire/issuetracker/internal/service"
)

var t0 = time.Date(2024, 9, 23, 10, 0, 0, 123456789, time.UTC)

func newService(t *testing.T, now *time.Time) (*service.IssueService, *repository.Backend) {
	t.Helper()
	backend := repository.NewMemory()
	svc := service.NewIssueService(backend.Projects, backend.Issues, handler.NewAppValidator(),
		service.WithClock(func() time.Time { return *now }))
	return svc, backend
}

func validIssue() domain.NewIssue {
	return domain.NewIssue{Title: "Issue1", Text: "Functional Test", CreatedBy: "Zoe"}
}

func TestCreateIssueDefaultsAndTimestamps(t *testing.T) {
	now := t0
	svc, _ := newService(t, &now)

	issue, err := svc.CreateIssue(context.Background(), "projects", validIssue())
	require.NoError(t, err)

	assert.NotEmpty(t, issue.ID)
	assert.Empty(t, issue.AssignedTo)
	assert.Empty(t, issue.StatusText)
	assert.True(t, issue.Open)
	assert.Equal(t, t0.Truncate(time.Millisecond), issue.CreatedOn)
	assert.Equal(t, issue.CreatedOn, issue.UpdatedOn)
}

func TestCreateIssueValidationStoresNothing(t *testing.T) {
	now := t0
	svc, backend := newService(t, &now)
	ctx := context.Background()

	input := validIssue()
	input.CreatedBy = ""
	_, err := svc.CreateIssue(ctx, "projects", input)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "created_by", validationErr.Field)

	_, err = backend.Projects.FindByName(ctx, "projects")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateIssueReusesProject(t *testing.T) {
	now := t0
	svc, _ := newService(t, &now)
	ctx := context.Background()

	a, err := svc.CreateIssue(ctx, "apitest", validIssue())
	require.NoError(t, err)
	b, err := svc.CreateIssue(ctx, "apitest", validIssue())
	require.NoError(t, err)
	c, err := svc.CreateIssue(ctx, "other", validIssue())
	require.NoError(t, err)

	assert.Equal(t, a.ProjectID, b.ProjectID)
	assert.NotEqual(t, a.ProjectID, c.ProjectID)

	project, err := svc.ResolveProject(ctx, "apitest")
	require.NoError(t, err)
	assert.Equal(t, a.ProjectID, project.ID)
}

func TestListIssues(t *testing.T) {
	now := t0
	svc, _ := newService(t, &now)
	ctx := context.Background()

	_, err := svc.ListIssues(ctx, "apitest", url.Values{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := svc.CreateIssue(ctx, "apitest", validIssue())
	require.NoError(t, err)

	issues, err := svc.ListIssues(ctx, "apitest", url.Values{"open": {"true"}})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, *created, issues[0])

	issues, err = svc.ListIssues(ctx, "apitest", url.Values{"open": {"false"}})
	require.NoError(t, err)
	assert.Empty(t, issues)

	issues, err = svc.ListIssues(ctx, "apitest", url.Values{"__v": {"0"}})
	require.NoError(t, err)
	assert.NotNil(t, issues)
	assert.Empty(t, issues)

	_, err = svc.ListIssues(ctx, "apitest", url.Values{"open": {"maybe"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateIssue(t *testing.T) {
	now := t0
	svc, _ := newService(t, &now)
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, "apitest", validIssue())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateIssue(ctx, "", domain.IssueUpdate{Title: strPtr("x")}), domain.ErrMissingID)
	assert.ErrorIs(t, svc.UpdateIssue(ctx, created.ID, domain.IssueUpdate{}), domain.ErrNoUpdateFields)
	assert.ErrorIs(t, svc.UpdateIssue(ctx, created.ID, domain.IssueUpdate{Title: strPtr("")}), domain.ErrNoUpdateFields)

	now = t0.Add(time.Minute)
	require.NoError(t, svc.UpdateIssue(ctx, created.ID, domain.IssueUpdate{AssignedTo: strPtr("jenny"), Open: true}))

	issues, err := svc.ListIssues(ctx, "apitest", url.Values{"assigned_to": {"jenny"}})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, now.Truncate(time.Millisecond), issues[0].UpdatedOn)
	assert.Equal(t, created.CreatedOn, issues[0].CreatedOn)

	err = svc.UpdateIssue(ctx, "66f0b704ac56aed1e57973ae", domain.IssueUpdate{Title: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = svc.UpdateIssue(ctx, "0b704ac56aed1e579", domain.IssueUpdate{Title: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestDeleteIssue(t *testing.T) {
	now := t0
	svc, _ := newService(t, &now)
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, "apitest", validIssue())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteIssue(ctx, ""), domain.ErrMissingID)
	require.NoError(t, svc.DeleteIssue(ctx, created.ID))
	assert.ErrorIs(t, svc.DeleteIssue(ctx, created.ID), domain.ErrNotFound)
}

type failingIssues struct{ service.IssueStore }

func (failingIssues) Create(context.Context, domain.Issue) (*domain.Issue, error) {
	return nil, errors.New("write concern error")
}

func TestCreateIssueStoreFailure(t *testing.T) {
	backend := repository.NewMemory()
	svc := service.NewIssueService(backend.Projects, failingIssues{backend.Issues}, handler.NewAppValidator())

	_, err := svc.CreateIssue(context.Background(), "apitest", validIssue())
	assert.ErrorContains(t, err, `create issue in project "apitest": write concern error`)
}

func strPtr(s string) *string { return &s }
