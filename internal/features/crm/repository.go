package crm

import (
	"context"
	"errors"

	"go-callsync/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReferenceRepository feeds the identity resolver with CRM master data.
type ReferenceRepository interface {
	ListContacts(ctx context.Context) ([]Contact, error)
	ListAgents(ctx context.Context) ([]Agent, error)
}

// ActivityRepository is the bulk create/delete surface for output records.
type ActivityRepository interface {
	BulkCreate(ctx context.Context, activities []Activity) ([]WriteResult, error)
	QueryMarkedIDs(ctx context.Context, pageSize int) ([]string, error)
	BulkDelete(ctx context.Context, ids []string) error
}

type ReferenceRepositoryImpl struct {
	contacts *mongo.Collection
	agents   *mongo.Collection
}

func NewReferenceRepository(db *database.MongodbDB) ReferenceRepository {
	return &ReferenceRepositoryImpl{
		contacts: db.DB.Collection("contacts"),
		agents:   db.DB.Collection("agents"),
	}
}

// ListContacts materializes the full contact list. The driver pages the
// cursor internally; collisions across pages are the resolver's concern.
func (r *ReferenceRepositoryImpl) ListContacts(ctx context.Context) ([]Contact, error) {
	opts := options.Find().SetBatchSize(500)
	cursor, err := r.contacts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var contacts []Contact
	if err = cursor.All(ctx, &contacts); err != nil {
		return nil, err
	}

	return contacts, nil
}

func (r *ReferenceRepositoryImpl) ListAgents(ctx context.Context) ([]Agent, error) {
	opts := options.Find().SetBatchSize(500)
	cursor, err := r.agents.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var agents []Agent
	if err = cursor.All(ctx, &agents); err != nil {
		return nil, err
	}

	return agents, nil
}

type ActivityRepositoryImpl struct {
	collection *mongo.Collection
}

func NewActivityRepository(db *database.MongodbDB) ActivityRepository {
	return &ActivityRepositoryImpl{
		collection: db.DB.Collection("activities"),
	}
}

// BulkCreate inserts the batch unordered so one bad record does not abort
// the rest, then folds the driver's per-index write errors into one
// WriteResult per submitted activity.
func (r *ActivityRepositoryImpl) BulkCreate(ctx context.Context, activities []Activity) ([]WriteResult, error) {
	if len(activities) == 0 {
		return nil, nil
	}

	docs := make([]interface{}, len(activities))
	for i := range activities {
		docs[i] = activities[i]
	}

	results := make([]WriteResult, len(activities))
	for i := range results {
		results[i].Success = true
	}

	opts := options.InsertMany().SetOrdered(false)
	_, err := r.collection.InsertMany(ctx, docs, opts)
	if err != nil {
		var bwe mongo.BulkWriteException
		if !errors.As(err, &bwe) {
			// Transport-level failure: nothing in the batch landed.
			return nil, err
		}
		for _, we := range bwe.WriteErrors {
			if we.Index < 0 || we.Index >= len(results) {
				continue
			}
			results[we.Index].Success = false
			results[we.Index].Errors = append(results[we.Index].Errors, WriteError{
				Code:    we.Code,
				Message: we.Message,
			})
		}
	}

	return results, nil
}

// QueryMarkedIDs returns one page of ids for activities this pipeline
// produced, identified by the original-activity-date marker.
func (r *ActivityRepositoryImpl) QueryMarkedIDs(ctx context.Context, pageSize int) ([]string, error) {
	filter := bson.M{"original_activity_date": bson.M{"$exists": true, "$ne": ""}}
	opts := options.Find().
		SetLimit(int64(pageSize)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}

	return ids, nil
}

func (r *ActivityRepositoryImpl) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return err
		}
		oids = append(oids, oid)
	}

	_, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	return err
}
