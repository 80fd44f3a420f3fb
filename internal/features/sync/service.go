package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrRunInProgress is returned when a run or purge is requested while
// another invocation holds the pipeline.
var ErrRunInProgress = errors.New("a sync run is already in progress")

// ErrNoRunInProgress is returned by Stop when there is nothing to stop.
var ErrNoRunInProgress = errors.New("no sync run in progress")

type SyncService interface {
	StartRun(purge bool) (*SyncRun, error)
	Stop() error
	Status() Snapshot
	Purge(ctx context.Context) (int, error)
	ListRuns(ctx context.Context, limit int64) ([]SyncRun, error)
}

// SyncServiceImpl owns single-flight execution: at most one purge or run
// at a time, runs executing on a background goroutine. It sits between the
// pipeline and the outside world as the progress sink, keeping the latest
// snapshot for status queries and forwarding to the external sink.
type SyncServiceImpl struct {
	RunRepo SyncRunRepository

	source SourceFeed
	refs   ReferenceFeed
	target TargetWriter
	sink   ProgressSink
	logger *zap.Logger
	cfg    PipelineConfig

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	latest  Snapshot
}

func NewSyncService(runRepo SyncRunRepository, source SourceFeed, refs ReferenceFeed, target TargetWriter, sink ProgressSink, logger *zap.Logger, cfg PipelineConfig) SyncService {
	return &SyncServiceImpl{
		RunRepo: runRepo,
		source:  source,
		refs:    refs,
		target:  target,
		sink:    sink,
		logger:  logger,
		cfg:     cfg,
		latest:  Snapshot{Stage: StageIdle},
	}
}

// StartRun kicks off a full pipeline invocation in the background and
// returns its persisted run record immediately.
func (s *SyncServiceImpl) StartRun(purge bool) (*SyncRun, error) {
	ctx, err := s.acquire()
	if err != nil {
		return nil, err
	}

	run := &SyncRun{
		StartTime: time.Now(),
		Status:    "in_progress",
		Purge:     purge,
	}
	if err := s.RunRepo.Create(context.Background(), run); err != nil {
		s.release()
		return nil, err
	}

	go s.execute(ctx, run, purge)

	return run, nil
}

func (s *SyncServiceImpl) execute(ctx context.Context, run *SyncRun, purge bool) {
	logger := s.logger.With(zap.String("run_id", run.ID.Hex()))

	var state *RunState
	var runErr error

	defer func() {
		run.EndTime = time.Now()
		if state != nil {
			run.Purged = state.Purged
			run.TotalRows = state.TotalRows
			run.Processed = state.Processed
			run.Created = state.Created
			run.Skipped = state.Skipped
			run.Errors = state.Errors
			run.FailureSamples = state.FailureSamples
		}
		switch {
		case runErr == nil:
			run.Status = "success"
		case errors.Is(runErr, context.Canceled):
			run.Status = "stopped"
		default:
			run.Status = "failed"
			run.Error = runErr.Error()
		}

		if err := s.RunRepo.Update(context.Background(), run); err != nil {
			logger.Error("failed to finalize sync run record", zap.Error(err))
		}
		s.release()
	}()

	pipeline := NewPipeline(s.source, s.refs, s.target, s, logger, s.cfg)
	state, runErr = pipeline.Run(ctx, purge)
}

// Stop requests a cooperative halt. The in-flight page finishes first.
func (s *SyncServiceImpl) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.cancel == nil {
		return ErrNoRunInProgress
	}
	s.cancel()
	return nil
}

// Status returns the most recent progress snapshot.
func (s *SyncServiceImpl) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Purge runs the purge stage on its own, synchronously. Useful before
// inspecting the target store without kicking off a full run.
func (s *SyncServiceImpl) Purge(ctx context.Context) (int, error) {
	if _, err := s.acquire(); err != nil {
		return 0, err
	}
	defer s.release()

	pipeline := NewPipeline(s.source, s.refs, s.target, s, s.logger, s.cfg)
	return pipeline.Purge(ctx)
}

func (s *SyncServiceImpl) ListRuns(ctx context.Context, limit int64) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.RunRepo.List(ctx, limit)
}

// Publish implements ProgressSink: remember the latest snapshot for
// status queries and forward to the external sink.
func (s *SyncServiceImpl) Publish(snapshot Snapshot) {
	s.mu.Lock()
	s.latest = snapshot
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Publish(snapshot)
	}
}

func (s *SyncServiceImpl) acquire() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, ErrRunInProgress
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	return ctx, nil
}

func (s *SyncServiceImpl) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.running = false
}
