package domain

import "time"

// OfferingStatus enumerates lifecycle states for offerings.
type OfferingStatus string

const (
	OfferingStatusActive OfferingStatus = "ACTIVE"
)

// Semester bounds.
const (
	MinSemester = 1
	MaxSemester = 8
)

// CourseOffering states that a course is offered to a program in a semester.
type CourseOffering struct {
	ID                 int64
	CourseID           string
	ProgramID          string
	Semester           int
	BasketID           *string
	OfferingDepartment string
	Status             OfferingStatus
	CreatedAt          time.Time
}
