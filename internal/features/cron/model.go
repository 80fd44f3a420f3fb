package cron_feature

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CronJob is a scheduled sync trigger. Each firing starts a full pipeline
// run; outcomes land in the sync_runs collection like any other run.
type CronJob struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Schedule    string             `json:"schedule" bson:"schedule"`
	Purge       bool               `json:"purge" bson:"purge"`
	Active      bool               `json:"active" bson:"active"`
	LastRun     *time.Time         `json:"last_run,omitempty" bson:"last_run,omitempty"`
	NextRun     *time.Time         `json:"next_run,omitempty" bson:"next_run,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
