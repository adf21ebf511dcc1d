package service

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sumire/issuetracker/internal/domain"
)

// projectScopeKey is ignored in query strings; listing is always scoped to
// the project named in the path.
const projectScopeKey = "projectId"

// BuildIssueFilter translates a query string into a filter scoped to
// projectID. Every key becomes an equality condition; a key given several
// times matches any of its values. ok is false when a key names no stored
// field, in which case the filter matches nothing.
func BuildIssueFilter(projectID string, query url.Values) (filter domain.IssueFilter, ok bool, err error) {
	filter.ProjectID = projectID

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == projectScopeKey {
			continue
		}
		field, known := domain.LookupIssueField(key)
		if !known {
			return domain.IssueFilter{ProjectID: projectID}, false, nil
		}

		raw := query[key]
		values := make([]any, 0, len(raw))
		for _, v := range raw {
			value, err := coerce(field, v)
			if err != nil {
				return domain.IssueFilter{}, false, err
			}
			values = append(values, value)
		}
		filter.Conditions = append(filter.Conditions, domain.Condition{Field: field, Values: values})
	}

	return filter, true, nil
}

func coerce(field domain.IssueField, v string) (any, error) {
	switch field.Kind() {
	case domain.KindBool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, &domain.ValidationError{Field: string(field), Message: fmt.Sprintf("%q is not a boolean", v)}
		}
		return b, nil
	case domain.KindTime:
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, &domain.ValidationError{Field: string(field), Message: fmt.Sprintf("%q is not a timestamp", v)}
		}
		return t.UTC(), nil
	default:
		return v, nil
	}
}
