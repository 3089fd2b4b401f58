package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/offering-registry/internal/domain"
	"github.com/spec-kit/offering-registry/internal/service"
	apperrors "github.com/spec-kit/offering-registry/pkg/util"
)

const offeringFormTemplate = "offering_form"

// Alert kinds rendered by the form page.
const (
	AlertSuccess = "success"
	AlertError   = "error"
)

const missingSelectionAlert = "Please select a course and at least one program."

// PageAlert is the banner shown above the form after a submission.
type PageAlert struct {
	Kind string
	Text string
}

// OfferingFormState echoes the submitted values back into the form.
type OfferingFormState struct {
	DepartmentCode string
	Semester       int
	CourseID       string
	CourseName     string
	BasketID       string
	Programs       map[string]bool
}

// OfferingFormPage is the template binding for the form page.
type OfferingFormPage struct {
	Title       string
	Alert       *PageAlert
	Departments []domain.Department
	Programs    []domain.Program
	Courses     []domain.Course
	Baskets     []domain.Basket
	Semesters   []int
	Form        OfferingFormState
}

// AdminPageHandler serves the server-rendered offering form.
type AdminPageHandler struct {
	offerings *service.OfferingService
	reference *service.ReferenceService
	logger    *zap.Logger
}

// NewAdminPageHandler constructs handler.
func NewAdminPageHandler(offerings *service.OfferingService, reference *service.ReferenceService, logger *zap.Logger) *AdminPageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminPageHandler{offerings: offerings, reference: reference, logger: logger}
}

// Show GET /admin/offerings.
func (h *AdminPageHandler) Show(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, nil, emptyFormState())
}

// Submit POST /admin/offerings.
func (h *AdminPageHandler) Submit(c *fiber.Ctx) error {
	state := parseOfferingForm(c)

	if state.CourseID == "" && state.CourseName != "" {
		id, err := h.reference.ResolveCourse(c.UserContext(), state.CourseName)
		if err != nil {
			return h.renderError(c, state, err)
		}
		state.CourseID = id
	}

	var basketID *string
	if state.BasketID != "" {
		basketID = &state.BasketID
	}

	result, err := h.offerings.RegisterOffering(c.UserContext(), service.RegistrationRequest{
		CourseID:       state.CourseID,
		ProgramIDs:     formValues(c, "program_ids"),
		Semester:       state.Semester,
		DepartmentCode: state.DepartmentCode,
		BasketID:       basketID,
	})
	if err != nil {
		return h.renderError(c, state, err)
	}

	alert := &PageAlert{Kind: AlertSuccess, Text: fmt.Sprintf("Successfully saved for %d programs!", result.InsertedCount)}
	return h.render(c, fiber.StatusOK, alert, emptyFormState())
}

func (h *AdminPageHandler) renderError(c *fiber.Ctx, state OfferingFormState, err error) error {
	domainErr := apperrors.ToDomainError(err)
	alert := &PageAlert{Kind: AlertError}
	switch domainErr.Code {
	case apperrors.CodeInvalidRequest:
		alert.Text = domainErr.Message
		if domainErr.Message == "missing course" || domainErr.Message == "missing programs" {
			alert.Text = missingSelectionAlert
		}
	case apperrors.CodeStorageError:
		alert.Text = "Database Error: " + domainErr.Message
	default:
		h.logger.Error("offering form submission failed", zap.Error(err))
		alert.Text = "Database Error: " + domainErr.Message
	}
	return h.render(c, domainErr.HTTPStatus, alert, state)
}

func (h *AdminPageHandler) render(c *fiber.Ctx, status int, alert *PageAlert, state OfferingFormState) error {
	page := OfferingFormPage{
		Title:     "Course Offering",
		Alert:     alert,
		Semesters: semesterOptions(),
		Form:      state,
	}

	catalog, err := h.reference.Catalog(c.UserContext())
	if err != nil {
		h.logger.Warn("catalog unavailable for offering form", zap.Error(err))
		if alert == nil || alert.Kind != AlertError {
			page.Alert = &PageAlert{Kind: AlertError, Text: "Database Error: " + apperrors.ToDomainError(err).Message}
		}
		if status < fiber.StatusInternalServerError {
			status = fiber.StatusInternalServerError
		}
	} else {
		page.Departments = catalog.Departments
		page.Programs = catalog.Programs
		page.Courses = catalog.Courses
		page.Baskets = catalog.Baskets
	}

	return c.Status(status).Render(offeringFormTemplate, page)
}

func emptyFormState() OfferingFormState {
	return OfferingFormState{Semester: domain.MinSemester, Programs: map[string]bool{}}
}

func parseOfferingForm(c *fiber.Ctx) OfferingFormState {
	semester, err := strconv.Atoi(strings.TrimSpace(c.FormValue("semester")))
	if err != nil {
		semester = 0
	}
	state := OfferingFormState{
		DepartmentCode: strings.TrimSpace(c.FormValue("dept_code")),
		Semester:       semester,
		CourseID:       strings.TrimSpace(c.FormValue("course_id")),
		CourseName:     strings.TrimSpace(c.FormValue("course_name")),
		BasketID:       strings.TrimSpace(c.FormValue("basket_id")),
		Programs:       map[string]bool{},
	}
	for _, id := range formValues(c, "program_ids") {
		state.Programs[strings.TrimSpace(id)] = true
	}
	return state
}

// formValues collects a repeated urlencoded field, accepting both the
// bracketed and the bare key.
func formValues(c *fiber.Ctx, key string) []string {
	var out []string
	args := c.Request().PostArgs()
	for _, k := range []string{key + "[]", key} {
		for _, v := range args.PeekMulti(k) {
			out = append(out, string(v))
		}
	}
	return out
}

func semesterOptions() []int {
	out := make([]int, 0, domain.MaxSemester-domain.MinSemester+1)
	for s := domain.MinSemester; s <= domain.MaxSemester; s++ {
		out = append(out, s)
	}
	return out
}
