package sync

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service SyncService
}

func NewSyncController(service SyncService) *SyncController {
	return &SyncController{
		Service: service,
	}
}

type runRequest struct {
	Purge bool `json:"purge"`
}

// StartRun godoc
func (ctrl *SyncController) StartRun(c *fiber.Ctx) error {
	// Purge defaults to true: re-running against the same dataset without
	// purging would duplicate output.
	req := runRequest{Purge: true}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	run, err := ctrl.Service.StartRun(req.Purge)
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Sync run started",
		"data":    run,
	})
}

// Stop godoc
func (ctrl *SyncController) Stop(c *fiber.Ctx) error {
	if err := ctrl.Service.Stop(); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Stop requested; the in-flight page will finish first",
	})
}

// Status godoc
func (ctrl *SyncController) Status(c *fiber.Ctx) error {
	return c.JSON(ctrl.Service.Status())
}

// Purge godoc
func (ctrl *SyncController) Purge(c *fiber.Ctx) error {
	deleted, err := ctrl.Service.Purge(c.Context())
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   err.Error(),
			"deleted": deleted,
		})
	}

	return c.JSON(fiber.Map{
		"deleted": deleted,
	})
}

// ListRuns godoc
func (ctrl *SyncController) ListRuns(c *fiber.Ctx) error {
	runs, err := ctrl.Service.ListRuns(c.Context(), int64(c.QueryInt("limit", 20)))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": runs,
	})
}
