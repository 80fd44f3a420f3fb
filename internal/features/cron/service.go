package cron_feature

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-callsync/internal/config"
	sync_feature "go-callsync/internal/features/sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type CronService interface {
	CreateCronJob(ctx context.Context, job *CronJob) error
	GetCronJob(ctx context.Context, id string) (*CronJob, error)
	ListCronJobs(ctx context.Context) ([]CronJob, error)
	UpdateCronJob(ctx context.Context, job *CronJob) error
	DeleteCronJob(ctx context.Context, id string) error
	ExecuteCronJob(ctx context.Context, id string) error
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
}

type CronServiceImpl struct {
	repo        CronRepository
	syncService sync_feature.SyncService
	logger      *zap.Logger
	cfg         *config.Config

	scheduler  *cron.Cron
	jobEntries map[string]cron.EntryID
	mu         sync.RWMutex
}

func NewCronService(repo CronRepository, syncService sync_feature.SyncService, logger *zap.Logger, cfg *config.Config) CronService {
	return &CronServiceImpl{
		repo:        repo,
		syncService: syncService,
		logger:      logger,
		cfg:         cfg,
		jobEntries:  make(map[string]cron.EntryID),
	}
}

func (s *CronServiceImpl) CreateCronJob(ctx context.Context, job *CronJob) error {
	if _, err := cron.ParseStandard(job.Schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	schedule, _ := cron.ParseStandard(job.Schedule)
	nextRun := schedule.Next(now)
	job.NextRun = &nextRun

	if err := s.repo.Create(ctx, job); err != nil {
		return err
	}

	if job.Active && s.scheduler != nil {
		if err := s.registerJob(job); err != nil {
			s.logger.Error("failed to register cron job", zap.String("id", job.ID.Hex()), zap.Error(err))
		}
	}

	return nil
}

func (s *CronServiceImpl) GetCronJob(ctx context.Context, id string) (*CronJob, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CronServiceImpl) ListCronJobs(ctx context.Context) ([]CronJob, error) {
	return s.repo.List(ctx)
}

func (s *CronServiceImpl) UpdateCronJob(ctx context.Context, job *CronJob) error {
	if _, err := cron.ParseStandard(job.Schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	schedule, _ := cron.ParseStandard(job.Schedule)
	nextRun := schedule.Next(time.Now())
	job.NextRun = &nextRun

	if err := s.repo.Update(ctx, job); err != nil {
		return err
	}

	s.unregisterJob(job.ID.Hex())
	if job.Active && s.scheduler != nil {
		if err := s.registerJob(job); err != nil {
			s.logger.Error("failed to register updated cron job", zap.String("id", job.ID.Hex()), zap.Error(err))
		}
	}

	return nil
}

func (s *CronServiceImpl) DeleteCronJob(ctx context.Context, id string) error {
	s.unregisterJob(id)
	return s.repo.Delete(ctx, id)
}

// ExecuteCronJob fires a job immediately. The run itself executes in the
// background and is recorded in sync_runs like any other invocation.
func (s *CronServiceImpl) ExecuteCronJob(ctx context.Context, id string) error {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.fire(job)
}

func (s *CronServiceImpl) fire(job *CronJob) error {
	_, err := s.syncService.StartRun(job.Purge)
	if errors.Is(err, sync_feature.ErrRunInProgress) {
		// Another run holds the pipeline; this firing is skipped, not queued.
		s.logger.Warn("scheduled sync skipped, run already in progress",
			zap.String("job", job.Name))
		return nil
	}
	if err != nil {
		return err
	}
	if job.ID.IsZero() {
		// Built-in schedule, not a stored job.
		return nil
	}

	now := time.Now()
	var nextRun *time.Time
	if schedule, perr := cron.ParseStandard(job.Schedule); perr == nil {
		next := schedule.Next(now)
		nextRun = &next
	}
	if uerr := s.repo.UpdateLastRun(context.Background(), job.ID.Hex(), now, nextRun); uerr != nil {
		s.logger.Error("failed to update cron job last run", zap.String("id", job.ID.Hex()), zap.Error(uerr))
	}

	return nil
}

// InitializeScheduler starts the scheduler and registers every active job,
// plus the built-in schedule from SYNC_SCHEDULE when one is configured.
func (s *CronServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.mu.Lock()
	s.scheduler = cron.New()
	s.mu.Unlock()

	jobs, err := s.repo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active cron jobs: %v", err)
	}
	for i := range jobs {
		job := jobs[i]
		if err := s.registerJob(&job); err != nil {
			s.logger.Error("failed to register cron job", zap.String("id", job.ID.Hex()), zap.Error(err))
		}
	}

	if s.cfg.SyncSchedule != "" {
		_, err := s.scheduler.AddFunc(s.cfg.SyncSchedule, func() {
			builtin := &CronJob{Name: "builtin", Schedule: s.cfg.SyncSchedule, Purge: true}
			if ferr := s.fire(builtin); ferr != nil {
				s.logger.Error("builtin scheduled sync failed to start", zap.Error(ferr))
			}
		})
		if err != nil {
			return fmt.Errorf("invalid SYNC_SCHEDULE: %v", err)
		}
	}

	s.scheduler.Start()
	s.logger.Info("cron scheduler started", zap.Int("jobs", len(jobs)))
	return nil
}

func (s *CronServiceImpl) StopScheduler() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return nil
}

func (s *CronServiceImpl) registerJob(job *CronJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := job.ID.Hex()
	entryID, err := s.scheduler.AddFunc(job.Schedule, func() {
		if err := s.ExecuteCronJob(context.Background(), id); err != nil {
			s.logger.Error("scheduled sync failed to start", zap.String("job", job.Name), zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.jobEntries[id] = entryID
	return nil
}

func (s *CronServiceImpl) unregisterJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.jobEntries[id]; ok && s.scheduler != nil {
		s.scheduler.Remove(entryID)
		delete(s.jobEntries, id)
	}
}
