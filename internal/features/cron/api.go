package cron_feature

import (
	"go-callsync/internal/common/api"
	"go-callsync/internal/config"
	"go-callsync/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CronApi struct {
	controller *CronController
	config     *config.Config
}

func NewCronApi(controller *CronController, config *config.Config) api.Route {
	return &CronApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all cron routes
func (h *CronApi) Setup(app *fiber.App) {
	group := app.Group("/api/cron", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/jobs", h.controller.CreateCronJob)
	group.Get("/jobs", h.controller.ListCronJobs)
	group.Get("/jobs/:id", h.controller.GetCronJob)
	group.Put("/jobs/:id", h.controller.UpdateCronJob)
	group.Delete("/jobs/:id", h.controller.DeleteCronJob)
	group.Post("/jobs/:id/run", h.controller.ExecuteCronJob)
}
