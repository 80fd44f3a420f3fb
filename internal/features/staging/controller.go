package staging

import (
	"github.com/gofiber/fiber/v2"
)

type StagingController struct {
	Service StagingService
}

func NewStagingController(service StagingService) *StagingController {
	return &StagingController{
		Service: service,
	}
}

// ImportFile godoc
func (ctrl *StagingController) ImportFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	defer file.Close()

	summary, err := ctrl.Service.ImportFile(c.Context(), file, fileHeader.Filename)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "File imported successfully",
		"data":    summary,
	})
}

// Count godoc
func (ctrl *StagingController) Count(c *fiber.Ctx) error {
	count, err := ctrl.Service.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"count": count,
	})
}
