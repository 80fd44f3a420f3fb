package staging

import (
	"go-callsync/internal/common/api"
	"go-callsync/internal/config"
	"go-callsync/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type StagingApi struct {
	controller *StagingController
	config     *config.Config
}

func NewStagingApi(controller *StagingController, config *config.Config) api.Route {
	return &StagingApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all staging routes
func (h *StagingApi) Setup(app *fiber.App) {
	group := app.Group("/api/staging", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/import", h.controller.ImportFile)
	group.Get("/count", h.controller.Count)
}
