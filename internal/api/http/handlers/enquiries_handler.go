package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/enquirydesk/enquiry-service/internal/api/dto"
	"github.com/enquirydesk/enquiry-service/internal/domain"
	"github.com/enquirydesk/enquiry-service/internal/service"
	apperrors "github.com/enquirydesk/enquiry-service/pkg/util/errorutil"
)

const maxPageSize = 100

// EnquiriesHandler exposes enquiry CRUD.
type EnquiriesHandler struct {
	enquiries *service.EnquiryService
}

// NewEnquiriesHandler constructs handler.
func NewEnquiriesHandler(enquiries *service.EnquiryService) *EnquiriesHandler {
	return &EnquiriesHandler{enquiries: enquiries}
}

// Create handles POST /api/enquiries.
func (h *EnquiriesHandler) Create(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateEnquiryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	enquiry, err := h.enquiries.Create(c.UserContext(), identity, service.EnquiryCreateInput{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
		AssignedTo:   req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewEnquiryResponse(enquiry)})
}

// List handles GET /api/enquiries?status=&assignedTo=&page=&pageSize=.
func (h *EnquiriesHandler) List(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}

	query := service.EnquiryListQuery{}
	if raw := c.Query("status"); raw != "" {
		status := domain.EnquiryStatus(raw)
		if !status.Valid() {
			return apperrors.NewFieldError("status", "must be one of: open in-progress closed")
		}
		query.Status = &status
	}
	if raw := c.Query("assignedTo"); raw != "" {
		assignee := raw
		query.AssignedTo = &assignee
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := queryInt(c, "pageSize", 0)
	if err != nil {
		return err
	}
	if pageSize > maxPageSize {
		return apperrors.NewFieldError("pageSize", "must be at most 100")
	}
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		query.Limit = pageSize
		query.Offset = (page - 1) * pageSize
	}

	enquiries, err := h.enquiries.List(c.UserContext(), identity, query)
	if err != nil {
		return err
	}

	meta := fiber.Map{"count": len(enquiries)}
	if pageSize > 0 {
		meta["page"] = page
		meta["pageSize"] = pageSize
	}
	return c.JSON(fiber.Map{
		"data": dto.NewEnquiryListResponse(enquiries),
		"meta": meta,
	})
}

// Get handles GET /api/enquiries/:id.
func (h *EnquiriesHandler) Get(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	enquiry, err := h.enquiries.Get(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEnquiryResponse(enquiry)})
}

// Update handles PUT and PATCH /api/enquiries/:id. Both are partial.
func (h *EnquiriesHandler) Update(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateEnquiryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	input := service.EnquiryUpdateInput{
		CustomerName:  req.CustomerName,
		Email:         req.Email,
		Phone:         req.Phone,
		Message:       req.Message,
		AssignedTo:    req.AssignedTo.Value,
		SetAssignedTo: req.AssignedTo.Set,
	}
	if req.Status != nil {
		status := domain.EnquiryStatus(*req.Status)
		input.Status = &status
	}

	enquiry, err := h.enquiries.Update(c.UserContext(), identity, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEnquiryResponse(enquiry)})
}

// Delete handles DELETE /api/enquiries/:id.
func (h *EnquiriesHandler) Delete(c *fiber.Ctx) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	enquiry, err := h.enquiries.Delete(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEnquiryResponse(enquiry)})
}
