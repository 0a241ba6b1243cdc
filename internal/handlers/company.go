package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ggorockee/companyfinder/internal/logger"
	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/ggorockee/companyfinder/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CompanyHandler struct {
	search   *services.SearchService
	deletion *services.DeletionService
	log      *zap.SugaredLogger
}

// DeleteRequest is the body of DELETE /api/delete
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

func NewCompanyHandler(search *services.SearchService, deletion *services.DeletionService) *CompanyHandler {
	return &CompanyHandler{
		search:   search,
		deletion: deletion,
		log:      logger.GetLogger("handlers.company"),
	}
}

func SetupCompanyRoutes(router fiber.Router, search *services.SearchService, deletion *services.DeletionService) {
	h := NewCompanyHandler(search, deletion)

	router.Get("/search", h.Search)
	router.Delete("/delete", h.Delete)
}

// Search godoc
// @Summary Search companies
// @Description Returns businesses matching an industry keyword around a location. Results are served from the cache when a query with the same location and industry and an equal or wider radius was seen before.
// @Tags companies
// @Produce json
// @Param location query string true "Free-text location"
// @Param industry query string true "Industry keyword"
// @Param radius query int false "Radius in km (default 10)"
// @Success 200 {array} models.Company
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /search [get]
func (h *CompanyHandler) Search(c *fiber.Ctx) error {
	location := strings.TrimSpace(c.Query("location"))
	industry := strings.TrimSpace(c.Query("industry"))
	if location == "" || industry == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "location and industry are required",
		})
	}

	// non-numeric or non-positive radius falls back to the default
	radius, _ := strconv.Atoi(c.Query("radius"))

	companies, err := h.search.Run(c.UserContext(), models.SearchQuery{
		Location: location,
		Industry: industry,
		RadiusKm: radius,
	})
	if err != nil {
		var notFound *services.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Location not found.",
			})
		}
		h.log.Errorf("Search for %q in %q failed: %v", industry, location, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching companies",
		})
	}

	return c.JSON(companies)
}

// Delete godoc
// @Summary Delete selected companies
// @Description Removes the given ids from the cache. Unknown ids are ignored.
// @Tags companies
// @Accept json
// @Produce plain
// @Param request body DeleteRequest true "Ids to delete"
// @Success 200 {string} string "Deleted successfully"
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /delete [delete]
func (h *CompanyHandler) Delete(c *fiber.Ctx) error {
	var req DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if _, err := h.deletion.DeleteSelected(c.UserContext(), req.IDs); err != nil {
		h.log.Errorf("Delete of %d ids failed: %v", len(req.IDs), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error deleting data",
		})
	}

	return c.Status(fiber.StatusOK).SendString("Deleted successfully")
}
