package sync

import (
	"go-callsync/internal/common/api"
	"go-callsync/internal/config"
	"go-callsync/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	controller *SyncController
	config     *config.Config
}

func NewSyncApi(controller *SyncController, config *config.Config) api.Route {
	return &SyncApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all sync routes
func (h *SyncApi) Setup(app *fiber.App) {
	syncGroup := app.Group("/api/sync", middleware.AuthMiddleware(h.config.SkipAuth))

	syncGroup.Post("/run", h.controller.StartRun)
	syncGroup.Post("/stop", h.controller.Stop)
	syncGroup.Post("/purge", h.controller.Purge)
	syncGroup.Get("/status", h.controller.Status)
	syncGroup.Get("/runs", h.controller.ListRuns)
}
