package domain

import "sort"

// IssueField names a stored issue field as it appears on the wire.
type IssueField string

const (
	FieldID         IssueField = "_id"
	FieldTitle      IssueField = "issue_title"
	FieldText       IssueField = "issue_text"
	FieldCreatedBy  IssueField = "created_by"
	FieldAssignedTo IssueField = "assigned_to"
	FieldStatusText IssueField = "status_text"
	FieldOpen       IssueField = "open"
	FieldCreatedOn  IssueField = "created_on"
	FieldUpdatedOn  IssueField = "updated_on"
)

// FieldKind is the stored type of an issue field.
type FieldKind int

const (
	KindString FieldKind = iota
	KindID
	KindBool
	KindTime
)

var issueFieldKinds = map[IssueField]FieldKind{
	FieldID:         KindID,
	FieldTitle:      KindString,
	FieldText:       KindString,
	FieldCreatedBy:  KindString,
	FieldAssignedTo: KindString,
	FieldStatusText: KindString,
	FieldOpen:       KindBool,
	FieldCreatedOn:  KindTime,
	FieldUpdatedOn:  KindTime,
}

// LookupIssueField returns the field called name, if issues store one.
func LookupIssueField(name string) (IssueField, bool) {
	f := IssueField(name)
	_, ok := issueFieldKinds[f]
	return f, ok
}

// Kind returns the stored type of f.
func (f IssueField) Kind() FieldKind {
	return issueFieldKinds[f]
}

// Condition matches issues whose field equals any of Values. Values hold
// string for KindString and KindID, bool for KindBool and time.Time for
// KindTime.
type Condition struct {
	Field  IssueField
	Values []any
}

// IssueFilter selects the issues of one project. All conditions must hold.
type IssueFilter struct {
	ProjectID  string
	Conditions []Condition
}

// Sorted returns the conditions ordered by field name.
func (f IssueFilter) Sorted() []Condition {
	out := make([]Condition, len(f.Conditions))
	copy(out, f.Conditions)
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
