package dto

import (
	"time"

	"github.com/spec-kit/offering-registry/internal/domain"
)

// RegisterOfferingRequest payload.
type RegisterOfferingRequest struct {
	CourseID       string   `json:"course_id"`
	ProgramIDs     []string `json:"program_ids"`
	Semester       int      `json:"semester"`
	DepartmentCode string   `json:"dept_code"`
	BasketID       *string  `json:"basket_id"`
}

// RegisterOfferingResponse reports a committed submission.
type RegisterOfferingResponse struct {
	SubmissionID  string `json:"submission_id"`
	InsertedCount int    `json:"inserted_count"`
}

// OfferingSummary response.
type OfferingSummary struct {
	ID             int64                 `json:"id"`
	CourseID       string                `json:"course_id"`
	ProgramID      string                `json:"program_id"`
	Semester       int                   `json:"semester"`
	BasketID       *string               `json:"basket_id"`
	DepartmentCode string                `json:"dept_code"`
	Status         domain.OfferingStatus `json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
}

// NewOfferingSummary maps a stored offering.
func NewOfferingSummary(o domain.CourseOffering) OfferingSummary {
	return OfferingSummary{
		ID:             o.ID,
		CourseID:       o.CourseID,
		ProgramID:      o.ProgramID,
		Semester:       o.Semester,
		BasketID:       o.BasketID,
		DepartmentCode: o.OfferingDepartment,
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
	}
}
