package domain

import "time"

// Issue represents a tracked work item belonging to exactly one project.
type Issue struct {
	ID         string    `json:"_id"`
	ProjectID  string    `json:"projectId"`
	Title      string    `json:"issue_title"`
	Text       string    `json:"issue_text"`
	CreatedOn  time.Time `json:"created_on"`
	UpdatedOn  time.Time `json:"updated_on"`
	CreatedBy  string    `json:"created_by"`
	AssignedTo string    `json:"assigned_to"`
	Open       bool      `json:"open"`
	StatusText string    `json:"status_text"`
}

// NewIssue holds the fields accepted when an issue is submitted.
type NewIssue struct {
	Title      string `json:"issue_title" validate:"required"`
	Text       string `json:"issue_text" validate:"required"`
	CreatedBy  string `json:"created_by" validate:"required"`
	AssignedTo string `json:"assigned_to"`
	StatusText string `json:"status_text"`
}

// Build returns the issue to persist under projectID, with defaults applied.
func (n NewIssue) Build(projectID string, now time.Time) Issue {
	return Issue{
		ProjectID:  projectID,
		Title:      n.Title,
		Text:       n.Text,
		CreatedOn:  now,
		UpdatedOn:  now,
		CreatedBy:  n.CreatedBy,
		AssignedTo: n.AssignedTo,
		Open:       true,
		StatusText: n.StatusText,
	}
}

// IssueUpdate carries the mutable fields of a PUT. A nil string was not
// sent; a sent empty string is written as is. Open is the normalized flag,
// false when it was not sent.
type IssueUpdate struct {
	Title      *string
	Text       *string
	CreatedBy  *string
	AssignedTo *string
	StatusText *string
	Open       bool
}

// Empty reports whether every field is absent or falsy. An explicit
// open=false is falsy, so it cannot be sent on its own.
func (u IssueUpdate) Empty() bool {
	falsy := func(v *string) bool { return v == nil || *v == "" }
	return falsy(u.Title) &&
		falsy(u.Text) &&
		falsy(u.CreatedBy) &&
		falsy(u.AssignedTo) &&
		falsy(u.StatusText) &&
		!u.Open
}

// Changes returns the field values the update writes, keyed by field. Open
// is always written.
func (u IssueUpdate) Changes() map[IssueField]any {
	changes := map[IssueField]any{FieldOpen: u.Open}
	set := func(f IssueField, v *string) {
		if v != nil {
			changes[f] = *v
		}
	}
	set(FieldTitle, u.Title)
	set(FieldText, u.Text)
	set(FieldCreatedBy, u.CreatedBy)
	set(FieldAssignedTo, u.AssignedTo)
	set(FieldStatusText, u.StatusText)
	return changes
}

// Apply writes the update onto issue and stamps UpdatedOn.
func (u IssueUpdate) Apply(issue *Issue, now time.Time) {
	for field, v := range u.Changes() {
		switch field {
		case FieldTitle:
			issue.Title = v.(string)
		case FieldText:
			issue.Text = v.(string)
		case FieldCreatedBy:
			issue.CreatedBy = v.(string)
		case FieldAssignedTo:
			issue.AssignedTo = v.(string)
		case FieldStatusText:
			issue.StatusText = v.(string)
		case FieldOpen:
			issue.Open = v.(bool)
		}
	}
	issue.UpdatedOn = now
}
