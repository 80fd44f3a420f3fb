package sync

import (
	"time"

	"go-callsync/internal/features/crm"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stage names the pipeline's sequential phases. Failed is reachable from
// any active stage.
type Stage string

const (
	StageIdle              Stage = "idle"
	StagePurging           Stage = "purging"
	StageLoadingIdentities Stage = "loading_identities"
	StageSyncing           Stage = "syncing"
	StageComplete          Stage = "complete"
	StageFailed            Stage = "failed"
)

// maxFailureSamples bounds the rejection details kept for diagnostics.
const maxFailureSamples = 3

// RunState holds one invocation's counters. It is mutated only by the
// pipeline's own sequential loop; created + skipped + errors == processed
// at every page boundary.
type RunState struct {
	Stage          Stage           `json:"stage" bson:"stage"`
	TotalRows      int             `json:"total_rows" bson:"total_rows"`
	Offset         int             `json:"offset" bson:"offset"`
	Processed      int             `json:"processed" bson:"processed"`
	Created        int             `json:"created" bson:"created"`
	Skipped        int             `json:"skipped" bson:"skipped"`
	Errors         int             `json:"errors" bson:"errors"`
	Purged         int             `json:"purged" bson:"purged"`
	FailureSamples []FailureDetail `json:"failure_samples,omitempty" bson:"failure_samples,omitempty"`
}

// FailureDetail is one rejected record's diagnostics. Only the first few
// per run are retained.
type FailureDetail struct {
	RowID  int64            `json:"row_id" bson:"row_id"`
	Errors []crm.WriteError `json:"errors" bson:"errors"`
}

// Snapshot is the progress payload pushed to the sink after every page.
type Snapshot struct {
	Stage     Stage `json:"stage"`
	Processed int   `json:"processed"`
	Total     int   `json:"total"`
	Created   int   `json:"created"`
	Skipped   int   `json:"skipped"`
	Errors    int   `json:"errors"`
}

// Snapshot derives the progress payload from the current counters.
func (s *RunState) Snapshot() Snapshot {
	return Snapshot{
		Stage:     s.Stage,
		Processed: s.Processed,
		Total:     s.TotalRows,
		Created:   s.Created,
		Skipped:   s.Skipped,
		Errors:    s.Errors,
	}
}

// addFailure records a rejection, keeping at most maxFailureSamples
// detail payloads.
func (s *RunState) addFailure(rowID int64, errs []crm.WriteError) {
	if len(s.FailureSamples) >= maxFailureSamples {
		return
	}
	s.FailureSamples = append(s.FailureSamples, FailureDetail{RowID: rowID, Errors: errs})
}

// SyncRun is the persisted record of one pipeline invocation.
type SyncRun struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	StartTime      time.Time          `json:"start_time" bson:"start_time"`
	EndTime        time.Time          `json:"end_time" bson:"end_time"`
	Status         string             `json:"status" bson:"status"` // "in_progress", "success", "failed", "stopped"
	Purge          bool               `json:"purge" bson:"purge"`
	Purged         int                `json:"purged" bson:"purged"`
	TotalRows      int                `json:"total_rows" bson:"total_rows"`
	Processed      int                `json:"processed" bson:"processed"`
	Created        int                `json:"created" bson:"created"`
	Skipped        int                `json:"skipped" bson:"skipped"`
	Errors         int                `json:"errors" bson:"errors"`
	FailureSamples []FailureDetail    `json:"failure_samples,omitempty" bson:"failure_samples,omitempty"`
	Error          string             `json:"error,omitempty" bson:"error,omitempty"`
}
