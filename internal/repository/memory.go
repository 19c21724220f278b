package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enquirydesk/enquiry-service/internal/domain"
)

// MemoryStore keeps users and enquiries in process memory. It honours the
// same scope, uniqueness and reference rules as the Postgres repositories
// and serialises every write behind one lock, so scope checks and mutations
// stay atomic. Used when no DSN is configured and in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	enquiries map[string]memoryEnquiry
	seq       int64
	now       func() time.Time
}

type memoryEnquiry struct {
	domain.Enquiry
	seq int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]domain.User),
		enquiries: make(map[string]memoryEnquiry),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() UserRepository { return &memoryUsers{s: s} }

// Enquiries returns the enquiry repository view of the store.
func (s *MemoryStore) Enquiries() EnquiryRepository { return &memoryEnquiries{s: s} }

type memoryUsers struct {
	s *MemoryStore
}

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.emailTakenLocked(user.Email, "") {
		return ErrDuplicateEmail
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if r.s.emailTakenLocked(user.Email, user.ID) {
		return ErrDuplicateEmail
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUsers) List(_ context.Context, filter UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []domain.User{}
	for _, user := range r.s.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *memoryUsers) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return ErrNotFound
	}
	for _, e := range r.s.enquiries {
		if e.CreatedBy == id {
			return ErrReferenceViolation
		}
	}
	delete(r.s.users, id)
	for key, e := range r.s.enquiries {
		if e.AssignedTo != nil && *e.AssignedTo == id {
			e.AssignedTo = nil
			r.s.enquiries[key] = e
		}
	}
	return nil
}

func (s *MemoryStore) emailTakenLocked(email, exceptID string) bool {
	for id, user := range s.users {
		if id != exceptID && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

type memoryEnquiries struct {
	s *MemoryStore
}

func (r *memoryEnquiries) Create(_ context.Context, enquiry *domain.Enquiry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[enquiry.CreatedBy]; !ok {
		return ErrReferenceViolation
	}
	if enquiry.AssignedTo != nil {
		if _, ok := r.s.users[*enquiry.AssignedTo]; !ok {
			return ErrReferenceViolation
		}
	}
	now := r.s.now()
	r.s.seq++
	enquiry.ID = uuid.NewString()
	enquiry.Deleted = false
	enquiry.CreatedAt = now
	enquiry.UpdatedAt = now
	stored := *enquiry
	stored.Assignee, stored.Creator = nil, nil
	r.s.enquiries[enquiry.ID] = memoryEnquiry{Enquiry: stored, seq: r.s.seq}
	return nil
}

func (r *memoryEnquiries) Get(_ context.Context, scope EnquiryScope) (*domain.Enquiry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.matchLocked(scope)
	if !ok {
		return nil, ErrNotFound
	}
	return r.s.populateLocked(e.Enquiry), nil
}

func (r *memoryEnquiries) List(_ context.Context, filter EnquiryFilter) ([]domain.Enquiry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []memoryEnquiry{}
	for _, e := range r.s.enquiries {
		if e.Deleted {
			continue
		}
		if filter.CreatedBy != nil && e.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.AssignedTo != nil && (e.AssignedTo == nil || *e.AssignedTo != *filter.AssignedTo) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].seq > matched[j].seq
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		if offset > len(matched) {
			offset = len(matched)
		}
		end := offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}

	result := make([]domain.Enquiry, 0, len(matched))
	for _, e := range matched {
		result = append(result, *r.s.populateLocked(e.Enquiry))
	}
	return result, nil
}

func (r *memoryEnquiries) Update(_ context.Context, scope EnquiryScope, patch EnquiryPatch) (*domain.Enquiry, PriorState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.matchLocked(scope)
	if !ok {
		return nil, PriorState{}, ErrNotFound
	}
	if patch.SetAssignedTo && patch.AssignedTo != nil {
		if _, ok := r.s.users[*patch.AssignedTo]; !ok {
			return nil, PriorState{}, ErrReferenceViolation
		}
	}
	prior := PriorState{Status: e.Status, AssignedTo: copyString(e.AssignedTo)}

	if patch.CustomerName != nil {
		e.CustomerName = *patch.CustomerName
	}
	if patch.Email != nil {
		e.Email = *patch.Email
	}
	if patch.Phone != nil {
		e.Phone = *patch.Phone
	}
	if patch.Message != nil {
		e.Message = *patch.Message
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.SetAssignedTo {
		e.AssignedTo = copyString(patch.AssignedTo)
	}
	e.UpdatedAt = r.s.now()
	r.s.enquiries[e.ID] = e
	return r.s.populateLocked(e.Enquiry), prior, nil
}

func (r *memoryEnquiries) SoftDelete(_ context.Context, scope EnquiryScope) (*domain.Enquiry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.matchLocked(scope)
	if !ok {
		return nil, ErrNotFound
	}
	e.Deleted = true
	e.UpdatedAt = r.s.now()
	r.s.enquiries[e.ID] = e
	return r.s.populateLocked(e.Enquiry), nil
}

func (s *MemoryStore) matchLocked(scope EnquiryScope) (memoryEnquiry, bool) {
	e, ok := s.enquiries[scope.ID]
	if !ok {
		return memoryEnquiry{}, false
	}
	if scope.CreatedBy != nil && e.CreatedBy != *scope.CreatedBy {
		return memoryEnquiry{}, false
	}
	if !scope.IncludeDeleted && e.Deleted {
		return memoryEnquiry{}, false
	}
	if len(scope.Statuses) > 0 {
		allowed := false
		for _, st := range scope.Statuses {
			if e.Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return memoryEnquiry{}, false
		}
	}
	return e, true
}

func (s *MemoryStore) populateLocked(e domain.Enquiry) *domain.Enquiry {
	e.AssignedTo = copyString(e.AssignedTo)
	e.Creator, e.Assignee = nil, nil
	if u, ok := s.users[e.CreatedBy]; ok {
		e.Creator = &domain.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	if e.AssignedTo != nil {
		if u, ok := s.users[*e.AssignedTo]; ok {
			e.Assignee = &domain.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return &e
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
