package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/offering-registry/internal/api/dto"
	"github.com/spec-kit/offering-registry/internal/service"
)

// CatalogHandler serves the reference lists.
type CatalogHandler struct {
	service *service.ReferenceService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(referenceService *service.ReferenceService) *CatalogHandler {
	return &CatalogHandler{service: referenceService}
}

// Catalog GET /api/catalog.
func (h *CatalogHandler) Catalog(c *fiber.Ctx) error {
	catalog, err := h.service.Catalog(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCatalogResponse(catalog)})
}

// Departments GET /api/departments.
func (h *CatalogHandler) Departments(c *fiber.Ctx) error {
	items, err := h.service.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DepartmentOptions(items)})
}

// Programs GET /api/programs, optionally filtered by ?q=.
func (h *CatalogHandler) Programs(c *fiber.Ctx) error {
	items, err := h.service.FilterPrograms(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProgramOptions(items)})
}

// Courses GET /api/courses.
func (h *CatalogHandler) Courses(c *fiber.Ctx) error {
	items, err := h.service.ListCourses(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CourseOptions(items)})
}

// ResolveCourse GET /api/courses/resolve?name=.
func (h *CatalogHandler) ResolveCourse(c *fiber.Ctx) error {
	name := c.Query("name")
	id, err := h.service.ResolveCourse(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CourseResolution{Name: name, CourseID: id, Found: id != ""}})
}

// Baskets GET /api/baskets.
func (h *CatalogHandler) Baskets(c *fiber.Ctx) error {
	items, err := h.service.ListBaskets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BasketOptions(items)})
}
