package cron_feature

import (
	"github.com/gofiber/fiber/v2"
)

type CronController struct {
	Service CronService
}

func NewCronController(service CronService) *CronController {
	return &CronController{
		Service: service,
	}
}

// CreateCronJob godoc
func (ctrl *CronController) CreateCronJob(c *fiber.Ctx) error {
	var job CronJob
	if err := c.BodyParser(&job); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.CreateCronJob(c.Context(), &job); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Cron job created successfully",
		"data":    job,
	})
}

// GetCronJob godoc
func (ctrl *CronController) GetCronJob(c *fiber.Ctx) error {
	job, err := ctrl.Service.GetCronJob(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(job)
}

// ListCronJobs godoc
func (ctrl *CronController) ListCronJobs(c *fiber.Ctx) error {
	jobs, err := ctrl.Service.ListCronJobs(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": jobs,
	})
}

// UpdateCronJob godoc
func (ctrl *CronController) UpdateCronJob(c *fiber.Ctx) error {
	var job CronJob
	if err := c.BodyParser(&job); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	existing, err := ctrl.Service.GetCronJob(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	job.ID = existing.ID
	job.CreatedAt = existing.CreatedAt

	if err := ctrl.Service.UpdateCronJob(c.Context(), &job); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Cron job updated successfully",
	})
}

// DeleteCronJob godoc
func (ctrl *CronController) DeleteCronJob(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteCronJob(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Cron job deleted successfully",
	})
}

// ExecuteCronJob godoc
func (ctrl *CronController) ExecuteCronJob(c *fiber.Ctx) error {
	if err := ctrl.Service.ExecuteCronJob(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Cron job triggered successfully",
	})
}
