package service

import "github.com/enquirydesk/enquiry-service/internal/domain"

// Lifecycle governs status transitions. AllowedFrom returns the statuses an
// enquiry may currently hold to move to `to`; an empty result means any.
// The set is checked atomically with the update itself.
type Lifecycle interface {
	AllowedFrom(to domain.EnquiryStatus) []domain.EnquiryStatus
}

// UnconstrainedLifecycle permits every transition, including closed back to open.
type UnconstrainedLifecycle struct{}

func (UnconstrainedLifecycle) AllowedFrom(domain.EnquiryStatus) []domain.EnquiryStatus {
	return nil
}

// TransitionTable is a Lifecycle keyed by source status. Staying in the same
// status is always allowed.
type TransitionTable map[domain.EnquiryStatus][]domain.EnquiryStatus

func (t TransitionTable) AllowedFrom(to domain.EnquiryStatus) []domain.EnquiryStatus {
	allowed := []domain.EnquiryStatus{to}
	for _, from := range domain.EnquiryStatuses {
		if from == to {
			continue
		}
		for _, next := range t[from] {
			if next == to {
				allowed = append(allowed, from)
				break
			}
		}
	}
	return allowed
}
