package mongodb

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sumire/issuetracker/internal/domain"
)

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

// issueQuery builds the find document for filter: the project scope first,
// then one key per condition. Several values become an $in.
func issueQuery(filter domain.IssueFilter) (bson.D, error) {
	projectID, err := objectID(filter.ProjectID)
	if err != nil {
		return nil, err
	}

	query := bson.D{{Key: "projectId", Value: projectID}}
	for _, c := range filter.Sorted() {
		values := make(bson.A, 0, len(c.Values))
		for _, v := range c.Values {
			if c.Field == domain.FieldID {
				oid, err := objectID(v.(string))
				if err != nil {
					return nil, err
				}
				v = oid
			}
			values = append(values, v)
		}

		if len(values) == 1 {
			query = append(query, bson.E{Key: string(c.Field), Value: values[0]})
		} else {
			query = append(query, bson.E{Key: string(c.Field), Value: bson.D{{Key: "$in", Value: values}}})
		}
	}
	return query, nil
}

// updateSet returns the $set document for update, always refreshing
// updated_on.
func updateSet(update domain.IssueUpdate, now time.Time) bson.D {
	changes := update.Changes()
	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	set := make(bson.D, 0, len(fields)+1)
	for _, f := range fields {
		set = append(set, bson.E{Key: f, Value: changes[domain.IssueField(f)]})
	}
	return append(set, bson.E{Key: string(domain.FieldUpdatedOn), Value: now})
}
