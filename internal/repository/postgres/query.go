package postgres

import (
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/sumire/issuetracker/internal/domain"
)

var issueColumns = []string{
	"id", "project_id", "issue_title", "issue_text", "created_on",
	"updated_on", "created_by", "assigned_to", "open", "status_text",
}

func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return u, nil
}

// column maps a wire field name to its column.
func column(f domain.IssueField) string {
	if f == domain.FieldID {
		return "id"
	}
	return string(f)
}

// selectIssues builds the scoped listing query for filter in insertion order.
// UUIDs are bound as strings: squirrel would expand a [16]byte into a list.
func selectIssues(filter domain.IssueFilter) (sq.SelectBuilder, error) {
	projectID, err := parseID(filter.ProjectID)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	q := psql.Select(issueColumns...).
		From("issues").
		Where(sq.Eq{"project_id": projectID.String()})

	for _, c := range filter.Sorted() {
		values := make([]any, 0, len(c.Values))
		for _, v := range c.Values {
			if c.Field == domain.FieldID {
				u, err := parseID(v.(string))
				if err != nil {
					return sq.SelectBuilder{}, err
				}
				v = u.String()
			}
			values = append(values, v)
		}

		if len(values) == 1 {
			q = q.Where(sq.Eq{column(c.Field): values[0]})
		} else {
			q = q.Where(sq.Eq{column(c.Field): values})
		}
	}

	return q.OrderBy("seq"), nil
}

// updateIssue builds the single UPDATE applying update and updated_on.
func updateIssue(id uuid.UUID, update domain.IssueUpdate, now time.Time) sq.UpdateBuilder {
	changes := update.Changes()
	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	q := psql.Update("issues")
	for _, f := range fields {
		q = q.Set(column(domain.IssueField(f)), changes[domain.IssueField(f)])
	}
	return q.Set("updated_on", now).Where(sq.Eq{"id": id.String()})
}
