package domain

import "time"

// EnquiryStatus enumerates lifecycle states for enquiries.
type EnquiryStatus string

const (
	EnquiryStatusOpen       EnquiryStatus = "open"
	EnquiryStatusInProgress EnquiryStatus = "in-progress"
	EnquiryStatusClosed     EnquiryStatus = "closed"
)

// EnquiryStatuses lists every valid status.
var EnquiryStatuses = []EnquiryStatus{EnquiryStatusOpen, EnquiryStatusInProgress, EnquiryStatusClosed}

// Valid reports whether s is one of the enumerated statuses.
func (s EnquiryStatus) Valid() bool {
	switch s {
	case EnquiryStatusOpen, EnquiryStatusInProgress, EnquiryStatusClosed:
		return true
	}
	return false
}

// Enquiry is a customer request tracked through its lifecycle.
type Enquiry struct {
	ID           string
	CustomerName string
	Email        string
	Phone        string
	Message      string
	Status       EnquiryStatus
	AssignedTo   *string
	CreatedBy    string
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated on reads; nil when the reference is unset or unresolved.
	Assignee *UserRef
	Creator  *UserRef
}
