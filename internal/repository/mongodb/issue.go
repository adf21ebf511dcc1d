package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sumire/issuetracker/internal/domain"
)

type issueDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ProjectID  primitive.ObjectID `bson:"projectId"`
	Title      string             `bson:"issue_title"`
	Text       string             `bson:"issue_text"`
	CreatedOn  time.Time          `bson:"created_on"`
	UpdatedOn  time.Time          `bson:"updated_on"`
	CreatedBy  string             `bson:"created_by"`
	AssignedTo string             `bson:"assigned_to"`
	Open       bool               `bson:"open"`
	StatusText string             `bson:"status_text"`
}

func (d issueDocument) toDomain() domain.Issue {
	return domain.Issue{
		ID:         d.ID.Hex(),
		ProjectID:  d.ProjectID.Hex(),
		Title:      d.Title,
		Text:       d.Text,
		CreatedOn:  d.CreatedOn.UTC(),
		UpdatedOn:  d.UpdatedOn.UTC(),
		CreatedBy:  d.CreatedBy,
		AssignedTo: d.AssignedTo,
		Open:       d.Open,
		StatusText: d.StatusText,
	}
}

// IssueRepository handles issue data access.
type IssueRepository struct {
	coll *mongo.Collection
}

// Create inserts issue under a new ObjectID.
func (r *IssueRepository) Create(ctx context.Context, issue domain.Issue) (*domain.Issue, error) {
	projectID, err := objectID(issue.ProjectID)
	if err != nil {
		return nil, err
	}

	doc := issueDocument{
		ID:         primitive.NewObjectID(),
		ProjectID:  projectID,
		Title:      issue.Title,
		Text:       issue.Text,
		CreatedOn:  issue.CreatedOn,
		UpdatedOn:  issue.UpdatedOn,
		CreatedBy:  issue.CreatedBy,
		AssignedTo: issue.AssignedTo,
		Open:       issue.Open,
		StatusText: issue.StatusText,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert issue: %w", err)
	}

	created := doc.toDomain()
	return &created, nil
}

// Find returns the issues matching filter in insertion order.
func (r *IssueRepository) Find(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	query, err := issueQuery(filter)
	if err != nil {
		return nil, err
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}

	var docs []issueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}

	issues := make([]domain.Issue, 0, len(docs))
	for _, d := range docs {
		issues = append(issues, d.toDomain())
	}
	return issues, nil
}

// Update applies update and updated_on in a single $set.
func (r *IssueRepository) Update(ctx context.Context, id string, update domain.IssueUpdate, now time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: updateSet(update, now)}})
	if err != nil {
		return fmt.Errorf("update issue %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the issue with the given id.
func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete issue %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
