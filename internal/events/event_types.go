package events

import (
	"time"

	"github.com/enquirydesk/enquiry-service/internal/domain"
)

// EventType enumerates supported event identifiers. Values double as AMQP
// routing keys.
type EventType string

const (
	EventEnquiryCreated       EventType = "enquiry.created"
	EventEnquiryUpdated       EventType = "enquiry.updated"
	EventEnquiryStatusChanged EventType = "enquiry.status_changed"
	EventEnquiryAssigned      EventType = "enquiry.assigned"
	EventEnquiryDeleted       EventType = "enquiry.deleted"
	EventUserCreated          EventType = "user.created"
	EventUserUpdated          EventType = "user.updated"
	EventUserDeleted          EventType = "user.deleted"
)

// AllEventTypes lists every event the services emit.
var AllEventTypes = []EventType{
	EventEnquiryCreated,
	EventEnquiryUpdated,
	EventEnquiryStatusChanged,
	EventEnquiryAssigned,
	EventEnquiryDeleted,
	EventUserCreated,
	EventUserUpdated,
	EventUserDeleted,
}

// Actor identifies who triggered an event. Empty for self-registration.
type Actor struct {
	UserID string      `json:"userId,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// ActorFrom converts an identity into an event actor.
func ActorFrom(identity domain.Identity) Actor {
	return Actor{UserID: identity.ID, Role: identity.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subjectId"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// EnquiryCreatedPayload payload.
type EnquiryCreatedPayload struct {
	CustomerName string               `json:"customerName"`
	Status       domain.EnquiryStatus `json:"status"`
	AssignedTo   *string              `json:"assignedTo,omitempty"`
}

// EnquiryUpdatedPayload lists the fields a patch touched.
type EnquiryUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// EnquiryStatusChangedPayload payload.
type EnquiryStatusChangedPayload struct {
	OldStatus domain.EnquiryStatus `json:"oldStatus"`
	NewStatus domain.EnquiryStatus `json:"newStatus"`
}

// EnquiryAssignedPayload payload. A nil NewAssignee means unassigned.
type EnquiryAssignedPayload struct {
	OldAssignee *string `json:"oldAssignee,omitempty"`
	NewAssignee *string `json:"newAssignee,omitempty"`
}

// UserPayload carries the public fields of an affected user.
type UserPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}
