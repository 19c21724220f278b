package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/enquirydesk/enquiry-service/internal/domain"
	"github.com/enquirydesk/enquiry-service/internal/events"
	"github.com/enquirydesk/enquiry-service/internal/repository"
	apperrors "github.com/enquirydesk/enquiry-service/pkg/util/errorutil"
)

// EnquiryService coordinates enquiry workflows.
type EnquiryService struct {
	enquiries  repository.EnquiryRepository
	users      repository.UserRepository
	policy     EnquiryPolicy
	lifecycle  Lifecycle
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// EnquiryDependencies bundles collaborators for the enquiry service.
type EnquiryDependencies struct {
	EnquiryRepo repository.EnquiryRepository
	UserRepo    repository.UserRepository
	// Lifecycle defaults to UnconstrainedLifecycle.
	Lifecycle  Lifecycle
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// EnquiryCreateInput describes enquiry creation payload. Status and creator
// are not accepted; they are always derived.
type EnquiryCreateInput struct {
	CustomerName string
	Email        string
	Phone        string
	Message      string
	AssignedTo   *string
}

// EnquiryListQuery holds caller supplied listing filters. Limit 0 lists everything.
type EnquiryListQuery struct {
	Status     *domain.EnquiryStatus
	AssignedTo *string
	Limit      int
	Offset     int
}

// EnquiryUpdateInput is a partial update; nil fields are left unchanged.
type EnquiryUpdateInput struct {
	CustomerName *string
	Email        *string
	Phone        *string
	Message      *string
	Status       *domain.EnquiryStatus
	// AssignedTo is only applied when SetAssignedTo is true; nil unassigns.
	AssignedTo    *string
	SetAssignedTo bool
}

// NewEnquiryService constructs the service.
func NewEnquiryService(deps EnquiryDependencies) *EnquiryService {
	lifecycle := deps.Lifecycle
	if lifecycle == nil {
		lifecycle = UnconstrainedLifecycle{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnquiryService{
		enquiries:  deps.EnquiryRepo,
		users:      deps.UserRepo,
		lifecycle:  lifecycle,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create files a new open enquiry owned by the caller.
func (s *EnquiryService) Create(ctx context.Context, identity domain.Identity, input EnquiryCreateInput) (*domain.Enquiry, error) {
	if err := s.policy.CanCreate(identity); err != nil {
		return nil, err
	}
	if input.AssignedTo != nil {
		if err := s.ensureAssignee(ctx, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	enquiry := &domain.Enquiry{
		CustomerName: strings.TrimSpace(input.CustomerName),
		Email:        normalizeEmail(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Message:      strings.TrimSpace(input.Message),
		Status:       domain.EnquiryStatusOpen,
		AssignedTo:   input.AssignedTo,
		CreatedBy:    identity.ID,
	}
	if err := s.enquiries.Create(ctx, enquiry); err != nil {
		if errors.Is(err, repository.ErrReferenceViolation) {
			if input.AssignedTo != nil {
				return nil, assigneeError()
			}
			return nil, apperrors.NewUnauthenticated("account no longer exists")
		}
		return nil, err
	}

	// Reload to populate creator and assignee.
	created, err := s.enquiries.Get(ctx, repository.EnquiryScope{ID: enquiry.ID})
	if err != nil {
		s.logger.Warn("reload created enquiry failed", zap.String("enquiry_id", enquiry.ID), zap.Error(err))
		created = enquiry
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventEnquiryCreated,
		SubjectID: created.ID,
		Actor:     events.ActorFrom(identity),
		Payload: events.EnquiryCreatedPayload{
			CustomerName: created.CustomerName,
			Status:       created.Status,
			AssignedTo:   created.AssignedTo,
		},
	})
	return created, nil
}

// List returns the enquiries visible to identity, newest first.
func (s *EnquiryService) List(ctx context.Context, identity domain.Identity, query EnquiryListQuery) ([]domain.Enquiry, error) {
	if query.AssignedTo != nil && !isUUID(*query.AssignedTo) {
		return []domain.Enquiry{}, nil
	}
	return s.enquiries.List(ctx, s.policy.ListFilter(identity, query))
}

// Get fetches a single enquiry visible to identity.
func (s *EnquiryService) Get(ctx context.Context, identity domain.Identity, id string) (*domain.Enquiry, error) {
	if !isUUID(id) {
		return nil, enquiryNotFound(id)
	}
	enquiry, err := s.enquiries.Get(ctx, s.policy.ReadScope(identity, id))
	if err != nil {
		return nil, mapEnquiryError(err, id)
	}
	return enquiry, nil
}

// Update applies a partial update to an enquiry visible to identity.
func (s *EnquiryService) Update(ctx context.Context, identity domain.Identity, id string, input EnquiryUpdateInput) (*domain.Enquiry, error) {
	if !isUUID(id) {
		return nil, enquiryNotFound(id)
	}
	patch := repository.EnquiryPatch{
		CustomerName:  trimmed(input.CustomerName),
		Email:         input.Email,
		Phone:         trimmed(input.Phone),
		Message:       trimmed(input.Message),
		Status:        input.Status,
		AssignedTo:    input.AssignedTo,
		SetAssignedTo: input.SetAssignedTo,
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		patch.Email = &email
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.NewFieldError("status", "must be one of: open in-progress closed")
	}
	if patch.IsEmpty() {
		return s.Get(ctx, identity, id)
	}
	if patch.SetAssignedTo && patch.AssignedTo != nil {
		if err := s.ensureAssignee(ctx, *patch.AssignedTo); err != nil {
			return nil, err
		}
	}

	scope := s.policy.MutationScope(identity, id)
	if patch.Status != nil {
		scope.Statuses = s.lifecycle.AllowedFrom(*patch.Status)
	}

	updated, prior, err := s.enquiries.Update(ctx, scope, patch)
	if err != nil {
		if errors.Is(err, repository.ErrReferenceViolation) {
			return nil, assigneeError()
		}
		if errors.Is(err, repository.ErrNotFound) && len(scope.Statuses) > 0 {
			return nil, s.transitionError(ctx, identity, id, *patch.Status)
		}
		return nil, mapEnquiryError(err, id)
	}

	s.publishUpdateEvents(ctx, identity, updated, prior, patch)
	return updated, nil
}

// Delete soft-deletes an enquiry. Deleting an already deleted record the
// caller may access succeeds again.
func (s *EnquiryService) Delete(ctx context.Context, identity domain.Identity, id string) (*domain.Enquiry, error) {
	if !isUUID(id) {
		return nil, enquiryNotFound(id)
	}
	deleted, err := s.enquiries.SoftDelete(ctx, s.policy.DeleteScope(identity, id))
	if err != nil {
		return nil, mapEnquiryError(err, id)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventEnquiryDeleted,
		SubjectID: deleted.ID,
		Actor:     events.ActorFrom(identity),
	})
	return deleted, nil
}

// transitionError distinguishes a rejected transition from a record the
// caller cannot see.
func (s *EnquiryService) transitionError(ctx context.Context, identity domain.Identity, id string, to domain.EnquiryStatus) error {
	current, err := s.enquiries.Get(ctx, s.policy.ReadScope(identity, id))
	if err != nil {
		return mapEnquiryError(err, id)
	}
	return apperrors.NewConflict("status transition not allowed", map[string]any{
		"from": current.Status,
		"to":   to,
	})
}

func (s *EnquiryService) publishUpdateEvents(ctx context.Context, identity domain.Identity, updated *domain.Enquiry, prior repository.PriorState, patch repository.EnquiryPatch) {
	actor := events.ActorFrom(identity)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventEnquiryUpdated,
		SubjectID: updated.ID,
		Actor:     actor,
		Payload:   events.EnquiryUpdatedPayload{Fields: patchedFields(patch)},
	})
	if prior.Status != updated.Status {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventEnquiryStatusChanged,
			SubjectID: updated.ID,
			Actor:     actor,
			Payload: events.EnquiryStatusChangedPayload{
				OldStatus: prior.Status,
				NewStatus: updated.Status,
			},
		})
	}
	if deref(prior.AssignedTo) != deref(updated.AssignedTo) {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventEnquiryAssigned,
			SubjectID: updated.ID,
			Actor:     actor,
			Payload: events.EnquiryAssignedPayload{
				OldAssignee: prior.AssignedTo,
				NewAssignee: updated.AssignedTo,
			},
		})
	}
}

func (s *EnquiryService) ensureAssignee(ctx context.Context, userID string) error {
	if !isUUID(userID) {
		return assigneeError()
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return assigneeError()
		}
		return err
	}
	return nil
}

func (s *EnquiryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func patchedFields(patch repository.EnquiryPatch) []string {
	fields := make([]string, 0, 6)
	if patch.CustomerName != nil {
		fields = append(fields, "customerName")
	}
	if patch.Email != nil {
		fields = append(fields, "email")
	}
	if patch.Phone != nil {
		fields = append(fields, "phone")
	}
	if patch.Message != nil {
		fields = append(fields, "message")
	}
	if patch.Status != nil {
		fields = append(fields, "status")
	}
	if patch.SetAssignedTo {
		fields = append(fields, "assignedTo")
	}
	return fields
}

func mapEnquiryError(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return enquiryNotFound(id)
	}
	return err
}

func enquiryNotFound(id string) error {
	return apperrors.NewNotFound("enquiry", map[string]any{"id": id})
}

func assigneeError() error {
	return apperrors.NewFieldError("assignedTo", "must reference an existing user")
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
