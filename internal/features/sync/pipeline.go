package sync

import (
	"context"
	"fmt"
	"time"

	"go-callsync/internal/features/crm"

	"go.uber.org/zap"
)

// progressLogEvery is the row interval for discrete progress log lines.
const progressLogEvery = 2000

// PipelineConfig carries the tunables one run executes under.
type PipelineConfig struct {
	OwnerID  string        // default assignee for created activities
	PageSize int           // rows per source page and per bulk write
	Pacing   time.Duration // inter-page delay to respect target rate limits
}

// Pipeline drives one synchronization run: purge prior output, build the
// identity maps, then page through the staging store mapping and bulk-
// writing activities. Stages execute strictly sequentially; counters are
// touched only by this loop.
type Pipeline struct {
	source SourceFeed
	refs   ReferenceFeed
	target TargetWriter
	sink   ProgressSink
	logger *zap.Logger
	cfg    PipelineConfig
}

func NewPipeline(source SourceFeed, refs ReferenceFeed, target TargetWriter, sink ProgressSink, logger *zap.Logger, cfg PipelineConfig) *Pipeline {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 200
	}
	return &Pipeline{
		source: source,
		refs:   refs,
		target: target,
		sink:   sink,
		logger: logger,
		cfg:    cfg,
	}
}

// Purge deletes every activity carrying the sync marker, page by page,
// until a query comes back empty. Running it again immediately deletes
// nothing, which is what makes re-running the whole pipeline safe.
func (p *Pipeline) Purge(ctx context.Context) (int, error) {
	deleted := 0
	for {
		ids, err := p.target.QueryMarkedIDs(ctx, p.cfg.PageSize)
		if err != nil {
			return deleted, fmt.Errorf("purge query failed: %v", err)
		}
		if len(ids) == 0 {
			break
		}
		if err := p.target.BulkDelete(ctx, ids); err != nil {
			return deleted, fmt.Errorf("purge delete failed: %v", err)
		}
		deleted += len(ids)
		p.logger.Info("purged existing activities", zap.Int("deleted", deleted))
	}
	return deleted, nil
}

// Run executes the full stage sequence. The returned state is valid even
// on error: counters reflect everything that completed before the halt.
// Cancellation is honored between pages only, so an in-flight page's
// fetch-map-write sequence always finishes and the counters stay mutually
// consistent.
func (p *Pipeline) Run(ctx context.Context, purge bool) (*RunState, error) {
	state := &RunState{Stage: StageIdle}

	if purge {
		state.Stage = StagePurging
		p.publish(state)
		p.logger.Info("purging existing output")

		purged, err := p.Purge(ctx)
		state.Purged = purged
		if err != nil {
			return p.fail(state, err)
		}
		p.logger.Info("purge complete", zap.Int("deleted", purged))
	}

	state.Stage = StageLoadingIdentities
	p.publish(state)
	p.logger.Info("loading identity maps")

	identities, err := BuildIdentityMap(ctx, p.refs)
	if err != nil {
		return p.fail(state, err)
	}
	p.logger.Info("identity maps loaded",
		zap.Int("contact_keys", identities.Contacts()),
		zap.Int("agent_keys", identities.Agents()))

	total, err := p.source.Count(ctx)
	if err != nil {
		return p.fail(state, fmt.Errorf("failed to count source rows: %v", err))
	}
	state.TotalRows = total

	state.Stage = StageSyncing
	p.publish(state)
	p.logger.Info("sync started", zap.Int("total_rows", total))

	mapper := &Mapper{OwnerID: p.cfg.OwnerID}

	for {
		// Cooperative stop, checked between pages only.
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		default:
		}

		rows, err := p.source.FetchPage(ctx, state.Offset, p.cfg.PageSize)
		if err != nil {
			return p.fail(state, err)
		}
		// The empty page is the authoritative stop condition; the total is
		// only a display hint.
		if len(rows) == 0 {
			break
		}

		var batch []crm.Activity
		var batchRows []int64
		for _, row := range rows {
			contactID, _ := identities.LookupContact(row.Email, row.ContactNumber)
			var agent *AgentInfo
			if info, ok := identities.LookupAgent(row.AgentUsername); ok {
				agent = &info
			}

			activity := mapper.BuildActivity(row, contactID, agent)
			if activity == nil {
				state.Skipped++
				continue
			}
			batch = append(batch, *activity)
			batchRows = append(batchRows, row.ID)
		}

		if len(batch) > 0 {
			results, err := p.target.BulkCreate(ctx, batch)
			if err != nil {
				return p.fail(state, fmt.Errorf("bulk create failed: %v", err))
			}
			for i, res := range results {
				if res.Success {
					state.Created++
					continue
				}
				state.Errors++
				state.addFailure(batchRows[i], res.Errors)
			}
		}

		// Offset advances by rows fetched, not rows written.
		state.Processed += len(rows)
		state.Offset += len(rows)
		p.publish(state)

		if state.Processed%progressLogEvery == 0 {
			p.logger.Info("sync progress",
				zap.Int("processed", state.Processed),
				zap.Int("created", state.Created),
				zap.Int("skipped", state.Skipped),
				zap.Int("errors", state.Errors))
		}

		if p.cfg.Pacing > 0 {
			time.Sleep(p.cfg.Pacing)
		}
	}

	state.Stage = StageComplete
	p.publish(state)
	p.logger.Info("sync complete",
		zap.Int("processed", state.Processed),
		zap.Int("created", state.Created),
		zap.Int("skipped", state.Skipped),
		zap.Int("errors", state.Errors))

	return state, nil
}

func (p *Pipeline) fail(state *RunState, err error) (*RunState, error) {
	state.Stage = StageFailed
	p.publish(state)
	p.logger.Error("sync failed",
		zap.Error(err),
		zap.Int("processed", state.Processed),
		zap.Int("created", state.Created),
		zap.Int("skipped", state.Skipped),
		zap.Int("errors", state.Errors))
	return state, err
}

func (p *Pipeline) publish(state *RunState) {
	if p.sink == nil {
		return
	}
	p.sink.Publish(state.Snapshot())
}
