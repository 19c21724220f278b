package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/enquirydesk/enquiry-service/internal/auth"
	"github.com/enquirydesk/enquiry-service/internal/domain"
	"github.com/enquirydesk/enquiry-service/internal/events"
	"github.com/enquirydesk/enquiry-service/internal/repository"
)

type fixture struct {
	store     *repository.MemoryStore
	users     repository.UserRepository
	enquiries repository.EnquiryRepository
	recorder  *eventRecorder
	svc       *EnquiryService
}

func newFixture(t *testing.T, lifecycle Lifecycle) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	recorder := newEventRecorder()
	f := &fixture{
		store:     store,
		users:     store.Users(),
		enquiries: store.Enquiries(),
		recorder:  recorder,
	}
	f.svc = NewEnquiryService(EnquiryDependencies{
		EnquiryRepo: f.enquiries,
		UserRepo:    f.users,
		Lifecycle:   lifecycle,
		Dispatcher:  recorder.dispatcher,
	})
	return f
}

func (f *fixture) identity(t *testing.T, email string, role domain.Role) domain.Identity {
	t.Helper()
	hash, err := auth.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{Name: email, Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.Identity()
}

func (f *fixture) create(t *testing.T, owner domain.Identity) *domain.Enquiry {
	t.Helper()
	e, err := f.svc.Create(context.Background(), owner, EnquiryCreateInput{
		CustomerName: "Jane Doe",
		Email:        "jane@example.com",
		Phone:        "5550100200",
		Message:      "Need a quote",
	})
	require.NoError(t, err)
	return e
}

type eventRecorder struct {
	mu         sync.Mutex
	dispatcher events.Dispatcher
	events     []events.Event
}

func newEventRecorder() *eventRecorder {
	r := &eventRecorder{dispatcher: events.NewInMemoryDispatcher()}
	for _, eventType := range events.AllEventTypes {
		r.dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
	return r
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.EnquiryStatus) *domain.EnquiryStatus { return &s }
