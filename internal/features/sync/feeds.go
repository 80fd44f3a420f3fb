package sync

import (
	"context"

	"go-callsync/internal/features/crm"
	"go-callsync/internal/features/staging"
)

// SourceFeed pages the staging store in stable ordinal order. Count is a
// progress hint only; the pipeline stops on the first empty page.
type SourceFeed interface {
	FetchPage(ctx context.Context, offset, limit int) ([]staging.CallRecord, error)
	Count(ctx context.Context) (int, error)
}

// ReferenceFeed materializes the CRM master data the identity resolver
// builds its lookup tables from. Implementations page internally and
// return the full list.
type ReferenceFeed interface {
	ListContacts(ctx context.Context) ([]crm.Contact, error)
	ListAgents(ctx context.Context) ([]crm.Agent, error)
}

// TargetWriter is the CRM's bulk surface for output activities. BulkCreate
// observes allOrNone=false semantics: one result per record, never atomic
// across the batch. QueryMarkedIDs and BulkDelete serve the purge stage.
type TargetWriter interface {
	BulkCreate(ctx context.Context, activities []crm.Activity) ([]crm.WriteResult, error)
	QueryMarkedIDs(ctx context.Context, pageSize int) ([]string, error)
	BulkDelete(ctx context.Context, ids []string) error
}

// ProgressSink receives a counters snapshot after every page and at every
// stage boundary. Implementations must not block the pipeline.
type ProgressSink interface {
	Publish(snapshot Snapshot)
}
