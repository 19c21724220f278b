package service

import (
	"github.com/enquirydesk/enquiry-service/internal/domain"
	"github.com/enquirydesk/enquiry-service/internal/repository"
	apperrors "github.com/enquirydesk/enquiry-service/pkg/util/errorutil"
)

// EnquiryPolicy decides which enquiries an identity may see or change. Roles
// with OwnershipScoped set only ever match records they created; every other
// role is unrestricted.
type EnquiryPolicy struct{}

// CanCreate reports whether identity may file a new enquiry.
func (EnquiryPolicy) CanCreate(identity domain.Identity) error {
	if identity.Role != domain.RoleUser {
		return apperrors.NewForbidden("only customers can create enquiries")
	}
	return nil
}

// ReadScope selects a live enquiry visible to identity.
func (p EnquiryPolicy) ReadScope(identity domain.Identity, id string) repository.EnquiryScope {
	return repository.EnquiryScope{ID: id, CreatedBy: p.owner(identity)}
}

// MutationScope selects a live enquiry identity may update.
func (p EnquiryPolicy) MutationScope(identity domain.Identity, id string) repository.EnquiryScope {
	return p.ReadScope(identity, id)
}

// DeleteScope is MutationScope without the deleted filter, so a repeated
// delete still matches.
func (p EnquiryPolicy) DeleteScope(identity domain.Identity, id string) repository.EnquiryScope {
	scope := p.ReadScope(identity, id)
	scope.IncludeDeleted = true
	return scope
}

// ListFilter ANDs the caller supplied filters with the ownership filter.
func (p EnquiryPolicy) ListFilter(identity domain.Identity, query EnquiryListQuery) repository.EnquiryFilter {
	return repository.EnquiryFilter{
		CreatedBy:  p.owner(identity),
		Status:     query.Status,
		AssignedTo: query.AssignedTo,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
}

func (EnquiryPolicy) owner(identity domain.Identity) *string {
	if !identity.Role.OwnershipScoped() {
		return nil
	}
	id := identity.ID
	return &id
}
