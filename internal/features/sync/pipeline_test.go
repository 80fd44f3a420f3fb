package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-callsync/internal/features/crm"
	"go-callsync/internal/features/staging"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	rows      []staging.CallRecord
	countHint int // overrides len(rows) when non-zero
	fetchErr  error
	pages     []int // observed page lengths
}

func (f *fakeSource) FetchPage(ctx context.Context, offset, limit int) ([]staging.CallRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if offset >= len(f.rows) {
		f.pages = append(f.pages, 0)
		return nil, nil
	}
	end := offset + limit
	if end > len(f.rows) {
		end = len(f.rows)
	}
	page := f.rows[offset:end]
	f.pages = append(f.pages, len(page))
	return page, nil
}

func (f *fakeSource) Count(ctx context.Context) (int, error) {
	if f.countHint != 0 {
		return f.countHint, nil
	}
	return len(f.rows), nil
}

type fakeTarget struct {
	created  []crm.Activity
	batches  []int // size of each submitted bulk write
	rejects  map[string]bool
	marked   []string
	deleted  int
	queryErr error
}

func (f *fakeTarget) BulkCreate(ctx context.Context, activities []crm.Activity) ([]crm.WriteResult, error) {
	f.batches = append(f.batches, len(activities))
	results := make([]crm.WriteResult, len(activities))
	for i, a := range activities {
		if f.rejects[a.Subject] {
			results[i] = crm.WriteResult{
				Success: false,
				Errors:  []crm.WriteError{{Code: 400, Message: "rejected: " + a.Subject}},
			}
			continue
		}
		results[i] = crm.WriteResult{Success: true}
		f.created = append(f.created, a)
	}
	return results, nil
}

func (f *fakeTarget) QueryMarkedIDs(ctx context.Context, pageSize int) ([]string, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.marked) <= pageSize {
		return f.marked, nil
	}
	return f.marked[:pageSize], nil
}

func (f *fakeTarget) BulkDelete(ctx context.Context, ids []string) error {
	remaining := f.marked[:0]
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	for _, id := range f.marked {
		if !drop[id] {
			remaining = append(remaining, id)
		}
	}
	f.deleted += len(f.marked) - len(remaining)
	f.marked = remaining
	return nil
}

type fakeSink struct {
	snapshots []Snapshot
	onPublish func(Snapshot)
}

func (f *fakeSink) Publish(s Snapshot) {
	f.snapshots = append(f.snapshots, s)
	if f.onPublish != nil {
		f.onPublish(s)
	}
}

func testRefs() *fakeRefs {
	return &fakeRefs{
		contacts: []crm.Contact{
			{ID: "c1", Email: "alice@example.com"},
			{ID: "c2", Phone: "+1 (555) 123-4567"},
		},
		agents: []crm.Agent{
			{ID: "a1", Name: "Jane Doe", AlowareUsername: "jdoe"},
		},
	}
}

func testPipeline(source SourceFeed, refs ReferenceFeed, target TargetWriter, sink ProgressSink) *Pipeline {
	return NewPipeline(source, refs, target, sink, zap.NewNop(), PipelineConfig{
		OwnerID:  "owner-1",
		PageSize: 2,
	})
}

func TestRunEndToEnd(t *testing.T) {
	// Row A: matching email, valid timestamp -> created.
	// Row B: no matching identifiers -> skipped, never submitted.
	// Row C: matching phone, unparsable timestamp -> skipped.
	source := &fakeSource{rows: []staging.CallRecord{
		{ID: 1, Email: "alice@example.com", Type: "call", Direction: "inbound",
			ContactFirstName: "Alice", StartedAt: "2023-05-01 14:30:00", AgentUsername: "jdoe"},
		{ID: 2, Email: "stranger@example.com", ContactNumber: "0000000000",
			StartedAt: "2023-05-01 15:00:00"},
		{ID: 3, ContactNumber: "(555) 123-4567", StartedAt: "bogus"},
	}}
	target := &fakeTarget{}
	sink := &fakeSink{}

	state, err := testPipeline(source, testRefs(), target, sink).Run(context.Background(), false)
	require.NoError(t, err)

	require.Equal(t, StageComplete, state.Stage)
	require.Equal(t, 3, state.Processed)
	require.Equal(t, 1, state.Created)
	require.Equal(t, 2, state.Skipped)
	require.Equal(t, 0, state.Errors)

	require.Len(t, target.created, 1)
	require.Equal(t, "Inbound Call - Alice | Jane Doe", target.created[0].Subject)
	require.Equal(t, "c1", target.created[0].WhoID)
	require.Equal(t, "a1", target.created[0].AgentID)

	// Final snapshot matches the final counters.
	last := sink.snapshots[len(sink.snapshots)-1]
	require.Equal(t, StageComplete, last.Stage)
	require.Equal(t, 3, last.Processed)
}

func TestRunCountersBalanceAcrossPages(t *testing.T) {
	var rows []staging.CallRecord
	for i := 0; i < 7; i++ {
		row := staging.CallRecord{ID: int64(i + 1), StartedAt: "2023-05-01 10:00:00"}
		if i%2 == 0 {
			row.Email = "alice@example.com"
		}
		rows = append(rows, row)
	}
	source := &fakeSource{rows: rows}
	target := &fakeTarget{}

	state, err := testPipeline(source, testRefs(), target, nil).Run(context.Background(), false)
	require.NoError(t, err)

	require.Equal(t, 7, state.Processed)
	require.Equal(t, state.Processed, state.Created+state.Skipped+state.Errors)

	// processed equals the sum of all fetched page lengths.
	sum := 0
	for _, n := range source.pages {
		sum += n
	}
	require.Equal(t, sum, state.Processed)
	// offset advanced by rows fetched, not rows written.
	require.Equal(t, 7, state.Offset)
}

func TestRunStopsOnEmptyPageNotOnTotalHint(t *testing.T) {
	source := &fakeSource{
		rows: []staging.CallRecord{
			{ID: 1, Email: "alice@example.com", StartedAt: "2023-05-01 10:00:00"},
		},
		countHint: 1000000, // deliberately wrong; the hint is display-only
	}
	target := &fakeTarget{}

	state, err := testPipeline(source, testRefs(), target, nil).Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, StageComplete, state.Stage)
	require.Equal(t, 1, state.Processed)
	require.Equal(t, 1000000, state.TotalRows)
}

func TestRunPartialFailureAccounting(t *testing.T) {
	var rows []staging.CallRecord
	for i := 0; i < 5; i++ {
		rows = append(rows, staging.CallRecord{
			ID:               int64(i + 1),
			Email:            "alice@example.com",
			ContactFirstName: "Alice",
			Direction:        "outbound",
			StartedAt:        "2023-05-01 10:00:00",
			Notes:            string(rune('a' + i)),
		})
	}
	// Two of five records rejected by the target.
	rows[1].ContactLastName = "Reject"
	rows[3].ContactLastName = "Reject"

	source := &fakeSource{rows: rows}
	target := &fakeTarget{rejects: map[string]bool{
		"Outbound Call - Alice Reject": true,
	}}

	pipeline := NewPipeline(source, testRefs(), target, nil, zap.NewNop(), PipelineConfig{
		OwnerID:  "owner-1",
		PageSize: 5, // one bulk write of 5
	})
	state, err := pipeline.Run(context.Background(), false)
	require.NoError(t, err)

	require.Equal(t, []int{5}, target.batches)
	require.Equal(t, 3, state.Created)
	require.Equal(t, 2, state.Errors)
	require.Equal(t, 0, state.Skipped)
	require.Len(t, state.FailureSamples, 2)
	require.Equal(t, int64(2), state.FailureSamples[0].RowID)
	require.Equal(t, int64(4), state.FailureSamples[1].RowID)
}

func TestRunRetainsOnlyFirstThreeFailures(t *testing.T) {
	var rows []staging.CallRecord
	for i := 0; i < 6; i++ {
		rows = append(rows, staging.CallRecord{
			ID:              int64(i + 1),
			Email:           "alice@example.com",
			ContactLastName: "Reject",
			Direction:       "outbound",
			StartedAt:       "2023-05-01 10:00:00",
		})
	}
	source := &fakeSource{rows: rows}
	target := &fakeTarget{rejects: map[string]bool{
		"Outbound Call - Reject": true,
	}}

	state, err := testPipeline(source, testRefs(), target, nil).Run(context.Background(), false)
	require.NoError(t, err)

	require.Equal(t, 6, state.Errors)
	require.Len(t, state.FailureSamples, maxFailureSamples)
	require.Equal(t, int64(1), state.FailureSamples[0].RowID)
	require.Equal(t, int64(3), state.FailureSamples[2].RowID)
}

func TestPurgeIdempotent(t *testing.T) {
	target := &fakeTarget{marked: []string{"x1", "x2", "x3", "x4", "x5"}}
	pipeline := testPipeline(&fakeSource{}, testRefs(), target, nil)

	deleted, err := pipeline.Purge(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, deleted)

	// Second purge with no intervening writes deletes nothing.
	deleted, err = pipeline.Purge(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, deleted)
}

func TestRunWithPurgeRemovesStaleOutputFirst(t *testing.T) {
	source := &fakeSource{rows: []staging.CallRecord{
		{ID: 1, Email: "alice@example.com", StartedAt: "2023-05-01 10:00:00"},
	}}
	target := &fakeTarget{marked: []string{"stale-1", "stale-2", "stale-3"}}

	state, err := testPipeline(source, testRefs(), target, nil).Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 3, state.Purged)
	require.Equal(t, 1, state.Created)
}

func TestRunHaltsOnTransportError(t *testing.T) {
	source := &fakeSource{fetchErr: errors.New("staging unavailable")}
	target := &fakeTarget{}

	state, err := testPipeline(source, testRefs(), target, nil).Run(context.Background(), false)
	require.Error(t, err)
	require.Equal(t, StageFailed, state.Stage)
	require.Equal(t, 0, state.Processed)
}

func TestRunHaltsOnPurgeError(t *testing.T) {
	target := &fakeTarget{queryErr: errors.New("target unavailable")}

	state, err := testPipeline(&fakeSource{}, testRefs(), target, nil).Run(context.Background(), true)
	require.Error(t, err)
	require.Equal(t, StageFailed, state.Stage)
}

func TestRunCancelledBetweenPages(t *testing.T) {
	var rows []staging.CallRecord
	for i := 0; i < 10; i++ {
		rows = append(rows, staging.CallRecord{
			ID:        int64(i + 1),
			Email:     "alice@example.com",
			StartedAt: "2023-05-01 10:00:00",
		})
	}
	source := &fakeSource{rows: rows}
	target := &fakeTarget{}

	ctx, cancel := context.WithCancel(context.Background())
	sink := &fakeSink{onPublish: func(s Snapshot) {
		// Cancel after the first syncing page lands.
		if s.Stage == StageSyncing && s.Processed >= 2 {
			cancel()
		}
	}}

	state, err := testPipeline(source, testRefs(), target, sink).Run(ctx, false)
	require.ErrorIs(t, err, context.Canceled)

	// The in-flight page ran to completion; counters stay consistent.
	require.Equal(t, 2, state.Processed)
	require.Equal(t, state.Processed, state.Created+state.Skipped+state.Errors)
}

func TestRunPacingDelayBetweenPages(t *testing.T) {
	source := &fakeSource{rows: []staging.CallRecord{
		{ID: 1, Email: "alice@example.com", StartedAt: "2023-05-01 10:00:00"},
		{ID: 2, Email: "alice@example.com", StartedAt: "2023-05-01 10:00:00"},
		{ID: 3, Email: "alice@example.com", StartedAt: "2023-05-01 10:00:00"},
		{ID: 4, Email: "alice@example.com", StartedAt: "2023-05-01 10:00:00"},
	}}
	pipeline := NewPipeline(source, testRefs(), &fakeTarget{}, nil, zap.NewNop(), PipelineConfig{
		OwnerID:  "owner-1",
		PageSize: 2,
		Pacing:   10 * time.Millisecond,
	})

	start := time.Now()
	state, err := pipeline.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 4, state.Processed)
	// Two non-empty pages, so at least two pacing delays elapsed.
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
