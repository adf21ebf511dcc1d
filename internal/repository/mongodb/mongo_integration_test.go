package mongodb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/issuetracker/internal/domain"
)

// connectTestStore connects to ISSUES_TEST_MONGO_URI using a throwaway
// database, or skips the test.
func connectTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("ISSUES_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ISSUES_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Connect(ctx, uri, fmt.Sprintf("issuetracker_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = store.db.Drop(ctx)
		_ = store.Close(ctx)
	})
	return store
}

func TestMongoResolveConcurrent(t *testing.T) {
	store := connectTestStore(t)
	ctx := context.Background()
	projects := store.Projects()

	ids := make([]string, 8)
	errs := make([]error, 8)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := projects.Resolve(ctx, "race")
			errs[i] = err
			if err == nil {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestMongoIssueLifecycle(t *testing.T) {
	store := connectTestStore(t)
	ctx := context.Background()

	project, err := store.Projects().Resolve(ctx, "apitest")
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	issues := store.Issues()
	created, err := issues.Create(ctx, domain.NewIssue{
		Title: "Issue1Test", Text: "this is issue 1", CreatedBy: "zoe", AssignedTo: "jenny", StatusText: "review",
	}.Build(project.ID, now))
	require.NoError(t, err)
	_, err = issues.Create(ctx, domain.NewIssue{Title: "other", Text: "x", CreatedBy: "zoe"}.Build(project.ID, now))
	require.NoError(t, err)

	got, err := issues.Find(ctx, domain.IssueFilter{ProjectID: project.ID, Conditions: []domain.Condition{
		{Field: domain.FieldOpen, Values: []any{true}},
		{Field: domain.FieldAssignedTo, Values: []any{"jenny"}},
	}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *created, got[0])

	later := now.Add(time.Second)
	require.NoError(t, issues.Update(ctx, created.ID, domain.IssueUpdate{Title: strPtr("Issue1Modify1"), Open: true}, later))
	got, err = issues.Find(ctx, domain.IssueFilter{ProjectID: project.ID, Conditions: []domain.Condition{
		{Field: domain.FieldID, Values: []any{created.ID}},
	}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Issue1Modify1", got[0].Title)
	assert.Equal(t, later, got[0].UpdatedOn)

	assert.ErrorIs(t, issues.Update(ctx, "66f0b704ac56aed1e57973ae", domain.IssueUpdate{Title: strPtr("x")}, later), domain.ErrNotFound)

	require.NoError(t, issues.Delete(ctx, created.ID))
	assert.ErrorIs(t, issues.Delete(ctx, created.ID), domain.ErrNotFound)
	assert.ErrorIs(t, issues.Delete(ctx, "66f0b502986a5d1_invalid"), domain.ErrInvalidID)
}
