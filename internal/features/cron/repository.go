package cron_feature

import (
	"context"
	"time"

	"go-callsync/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CronRepository interface {
	Create(ctx context.Context, job *CronJob) error
	GetByID(ctx context.Context, id string) (*CronJob, error)
	List(ctx context.Context) ([]CronJob, error)
	ListActive(ctx context.Context) ([]CronJob, error)
	Update(ctx context.Context, job *CronJob) error
	Delete(ctx context.Context, id string) error
	UpdateLastRun(ctx context.Context, id string, lastRun time.Time, nextRun *time.Time) error
}

type CronRepositoryImpl struct {
	collection *mongo.Collection
}

func NewCronRepository(db *database.MongodbDB) CronRepository {
	return &CronRepositoryImpl{
		collection: db.DB.Collection("cron_jobs"),
	}
}

func (r *CronRepositoryImpl) Create(ctx context.Context, job *CronJob) error {
	if job.ID.IsZero() {
		job.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, job)
	return err
}

func (r *CronRepositoryImpl) GetByID(ctx context.Context, id string) (*CronJob, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var job CronJob
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *CronRepositoryImpl) List(ctx context.Context) ([]CronJob, error) {
	return r.find(ctx, bson.M{})
}

func (r *CronRepositoryImpl) ListActive(ctx context.Context) ([]CronJob, error) {
	return r.find(ctx, bson.M{"active": true})
}

func (r *CronRepositoryImpl) find(ctx context.Context, filter bson.M) ([]CronJob, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var jobs []CronJob
	if err = cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *CronRepositoryImpl) Update(ctx context.Context, job *CronJob) error {
	job.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": job.ID}, job)
	return err
}

func (r *CronRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *CronRepositoryImpl) UpdateLastRun(ctx context.Context, id string, lastRun time.Time, nextRun *time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"last_run": lastRun,
		"next_run": nextRun,
	}})
	return err
}
