package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOfferingsRegistered        EventType = "offerings_registered"
	EventOfferingRegistrationFailed EventType = "offering_registration_failed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	SubmissionID string      `json:"submission_id"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// OfferingsRegisteredPayload describes a committed submission.
type OfferingsRegisteredPayload struct {
	CourseID       string   `json:"course_id"`
	ProgramIDs     []string `json:"program_ids"`
	Semester       int      `json:"semester"`
	DepartmentCode string   `json:"dept_code"`
	BasketID       *string  `json:"basket_id,omitempty"`
	InsertedCount  int      `json:"inserted_count"`
}

// OfferingRegistrationFailedPayload describes a rolled back or rejected submission.
type OfferingRegistrationFailedPayload struct {
	CourseID string `json:"course_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}
