package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/enquirydesk/enquiry-service/internal/domain"
)

// OptionalString distinguishes an absent JSON field from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON records that the field was present.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// CreateEnquiryRequest payload. Status and creator are never taken from the
// payload.
type CreateEnquiryRequest struct {
	CustomerName string  `json:"customerName" validate:"required,max=200"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone" validate:"required,min=10,max=32"`
	Message      string  `json:"message" validate:"required,max=5000"`
	AssignedTo   *string `json:"assignedTo"`
}

// UpdateEnquiryRequest payload for PUT and PATCH. Absent fields are kept;
// "assignedTo": null unassigns.
type UpdateEnquiryRequest struct {
	CustomerName *string        `json:"customerName" validate:"omitnil,min=1,max=200"`
	Email        *string        `json:"email" validate:"omitnil,email"`
	Phone        *string        `json:"phone" validate:"omitnil,min=10,max=32"`
	Message      *string        `json:"message" validate:"omitnil,min=1,max=5000"`
	Status       *string        `json:"status" validate:"omitnil,oneof=open in-progress closed"`
	AssignedTo   OptionalString `json:"assignedTo" validate:"-"`
}

// UserRefResponse summarises a referenced user.
type UserRefResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EnquiryResponse is the public view of an enquiry.
type EnquiryResponse struct {
	ID           string               `json:"id"`
	CustomerName string               `json:"customerName"`
	Email        string               `json:"email"`
	Phone        string               `json:"phone"`
	Message      string               `json:"message"`
	Status       domain.EnquiryStatus `json:"status"`
	AssignedTo   *UserRefResponse     `json:"assignedTo"`
	CreatedBy    *UserRefResponse     `json:"createdBy"`
	Deleted      bool                 `json:"deleted"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// NewEnquiryResponse maps a domain enquiry. References that could not be
// resolved fall back to a bare id.
func NewEnquiryResponse(e *domain.Enquiry) EnquiryResponse {
	resp := EnquiryResponse{
		ID:           e.ID,
		CustomerName: e.CustomerName,
		Email:        e.Email,
		Phone:        e.Phone,
		Message:      e.Message,
		Status:       e.Status,
		Deleted:      e.Deleted,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.Assignee != nil {
		resp.AssignedTo = &UserRefResponse{ID: e.Assignee.ID, Name: e.Assignee.Name, Email: e.Assignee.Email}
	} else if e.AssignedTo != nil {
		resp.AssignedTo = &UserRefResponse{ID: *e.AssignedTo}
	}
	if e.Creator != nil {
		resp.CreatedBy = &UserRefResponse{ID: e.Creator.ID, Name: e.Creator.Name, Email: e.Creator.Email}
	} else {
		resp.CreatedBy = &UserRefResponse{ID: e.CreatedBy}
	}
	return resp
}

// NewEnquiryListResponse maps a slice of enquiries.
func NewEnquiryListResponse(enquiries []domain.Enquiry) []EnquiryResponse {
	out := make([]EnquiryResponse, 0, len(enquiries))
	for i := range enquiries {
		out = append(out, NewEnquiryResponse(&enquiries[i]))
	}
	return out
}
