package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/offering-registry/internal/api/dto"
	"github.com/spec-kit/offering-registry/internal/service"
	apperrors "github.com/spec-kit/offering-registry/pkg/util"
)

// OfferingsHandler exposes offering registration as JSON.
type OfferingsHandler struct {
	service *service.OfferingService
}

// NewOfferingsHandler constructs handler.
func NewOfferingsHandler(offeringService *service.OfferingService) *OfferingsHandler {
	return &OfferingsHandler{service: offeringService}
}

// Register POST /api/offerings.
func (h *OfferingsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterOfferingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidRequest("invalid payload")
	}

	result, err := h.service.RegisterOffering(c.UserContext(), service.RegistrationRequest{
		CourseID:       req.CourseID,
		ProgramIDs:     req.ProgramIDs,
		Semester:       req.Semester,
		DepartmentCode: req.DepartmentCode,
		BasketID:       req.BasketID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.RegisterOfferingResponse{
		SubmissionID:  result.SubmissionID,
		InsertedCount: result.InsertedCount,
	}})
}

// ListByCourse GET /api/offerings?course_id=.
func (h *OfferingsHandler) ListByCourse(c *fiber.Ctx) error {
	offerings, err := h.service.ListByCourse(c.UserContext(), c.Query("course_id"))
	if err != nil {
		return err
	}
	items := make([]dto.OfferingSummary, 0, len(offerings))
	for _, o := range offerings {
		items = append(items, dto.NewOfferingSummary(o))
	}
	return c.JSON(fiber.Map{"data": items})
}
