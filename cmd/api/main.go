package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-callsync/internal/common/api"
	"go-callsync/internal/config"
	"go-callsync/internal/database"
	"go-callsync/internal/features/crm"
	cron_feature "go-callsync/internal/features/cron"
	"go-callsync/internal/features/staging"
	sync_feature "go-callsync/internal/features/sync"
	"go-callsync/internal/features/system"
	"go-callsync/internal/logger"
	"go-callsync/internal/middleware"
	"go-callsync/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// NewPipelineConfig derives the engine tunables from service config.
func NewPipelineConfig(cfg *config.Config) sync_feature.PipelineConfig {
	return sync_feature.PipelineConfig{
		OwnerID:  cfg.DefaultAssigneeID,
		PageSize: cfg.SyncPageSize,
		Pacing:   time.Duration(cfg.SyncPacingMs) * time.Millisecond,
	}
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Databases
			database.NewDatabase,
			database.NewStagingDB,

			// Initialize Repositories
			staging.NewStagingRepository,
			crm.NewReferenceRepository,
			crm.NewActivityRepository,
			sync_feature.NewSyncRunRepository,
			cron_feature.NewCronRepository,

			// Initialize Services
			NewPipelineConfig,
			staging.NewStagingService,
			sync_feature.NewSyncService,
			cron_feature.NewCronService,
			system.NewProgressHub,

			// Interface Adapters to satisfy the engine's capability
			// contracts with the concrete repositories
			func(r staging.StagingRepository) sync_feature.SourceFeed { return r },
			func(r crm.ReferenceRepository) sync_feature.ReferenceFeed { return r },
			func(r crm.ActivityRepository) sync_feature.TargetWriter { return r },
			func(h *system.ProgressHub) sync_feature.ProgressSink { return h },

			// Initialize Controllers
			staging.NewStagingController,
			sync_feature.NewSyncController,
			cron_feature.NewCronController,
			system.NewWebSocketController,

			// Initialize API Routes
			AsRoute(staging.NewStagingApi),
			AsRoute(sync_feature.NewSyncApi),
			AsRoute(cron_feature.NewCronApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, cronService cron_feature.CronService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return cronService.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return cronService.StopScheduler()
					},
				})
			},
		),
	)

	app.Run()
}
