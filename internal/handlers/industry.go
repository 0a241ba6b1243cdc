package handlers

import (
	"github.com/ggorockee/companyfinder/internal/logger"
	"github.com/ggorockee/companyfinder/internal/services"
	"github.com/gofiber/fiber/v2"
)

type IndustryHandler struct {
	service *services.IndustryService
}

func NewIndustryHandler(service *services.IndustryService) *IndustryHandler {
	return &IndustryHandler{service: service}
}

func SetupIndustryRoutes(router fiber.Router, service *services.IndustryService) {
	h := NewIndustryHandler(service)

	router.Get("/industries", h.List)
}

// List godoc
// @Summary List industries
// @Tags industries
// @Produce json
// @Success 200 {array} models.Industry
// @Failure 500 {object} ErrorResponse
// @Router /industries [get]
func (h *IndustryHandler) List(c *fiber.Ctx) error {
	industries, err := h.service.List(c.UserContext())
	if err != nil {
		logger.GetLogger("handlers.industry").Errorf("Reading industries failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching industries"})
	}

	return c.JSON(industries)
}
