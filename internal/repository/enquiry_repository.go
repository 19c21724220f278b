package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enquirydesk/enquiry-service/internal/domain"
)

// EnquiryScope selects a single enquiry together with the access predicate
// that must hold for the operation to touch it.
type EnquiryScope struct {
	ID string
	// CreatedBy restricts the match to records filed by this user.
	CreatedBy *string
	// IncludeDeleted lets soft-deleted records match.
	IncludeDeleted bool
	// Statuses restricts the current status; empty means any.
	Statuses []domain.EnquiryStatus
}

// EnquiryFilter captures listing parameters. Soft-deleted records never match.
type EnquiryFilter struct {
	CreatedBy  *string
	Status     *domain.EnquiryStatus
	AssignedTo *string
	Limit      int
	Offset     int
}

// EnquiryPatch lists the fields to change; nil fields are left untouched.
type EnquiryPatch struct {
	CustomerName *string
	Email        *string
	Phone        *string
	Message      *string
	Status       *domain.EnquiryStatus
	// AssignedTo is applied only when SetAssignedTo is true; nil unassigns.
	AssignedTo    *string
	SetAssignedTo bool
}

// IsEmpty reports whether the patch changes nothing.
func (p EnquiryPatch) IsEmpty() bool {
	return p.CustomerName == nil && p.Email == nil && p.Phone == nil && p.Message == nil &&
		p.Status == nil && !p.SetAssignedTo
}

// PriorState captures lifecycle fields as they were before an update.
type PriorState struct {
	Status     domain.EnquiryStatus
	AssignedTo *string
}

// EnquiryRepository encapsulates enquiry persistence. Update and SoftDelete
// apply the scope and the mutation as one atomic statement.
type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *domain.Enquiry) error
	Get(ctx context.Context, scope EnquiryScope) (*domain.Enquiry, error)
	List(ctx context.Context, filter EnquiryFilter) ([]domain.Enquiry, error)
	Update(ctx context.Context, scope EnquiryScope, patch EnquiryPatch) (*domain.Enquiry, PriorState, error)
	SoftDelete(ctx context.Context, scope EnquiryScope) (*domain.Enquiry, error)
}

type enquiryRepository struct {
	pool *pgxpool.Pool
}

// NewEnquiryRepository instantiates repository.
func NewEnquiryRepository(pool *pgxpool.Pool) EnquiryRepository {
	return &enquiryRepository{pool: pool}
}

// enquirySelect reads from a relation aliased "q" and populates both user references.
const enquirySelect = `
        SELECT q.id::text, q.customer_name, q.email, q.phone, q.message, q.status,
               q.assigned_to::text, q.created_by::text, q.deleted, q.created_at, q.updated_at,
               c.name, c.email, a.name, a.email`

const enquiryJoins = `
        LEFT JOIN users c ON c.id = q.created_by
        LEFT JOIN users a ON a.id = q.assigned_to`

const enquiryReturning = `e.id, e.customer_name, e.email, e.phone, e.message, e.status,
                  e.assigned_to, e.created_by, e.deleted, e.created_at, e.updated_at`

func (r *enquiryRepository) Create(ctx context.Context, enquiry *domain.Enquiry) error {
	const query = `
        INSERT INTO enquiries (customer_name, email, phone, message, status, assigned_to, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id::text, deleted, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		enquiry.CustomerName,
		enquiry.Email,
		enquiry.Phone,
		enquiry.Message,
		string(enquiry.Status),
		enquiry.AssignedTo,
		enquiry.CreatedBy,
	).Scan(&enquiry.ID, &enquiry.Deleted, &enquiry.CreatedAt, &enquiry.UpdatedAt)
	return mapPgError(err)
}

func (r *enquiryRepository) Get(ctx context.Context, scope EnquiryScope) (*domain.Enquiry, error) {
	clauses, args := scopeClauses("q", scope, nil)
	query := enquirySelect + ` FROM enquiries q` + enquiryJoins +
		` WHERE ` + strings.Join(clauses, " AND ")

	enquiry, err := scanEnquiry(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return enquiry, nil
}

func (r *enquiryRepository) List(ctx context.Context, filter EnquiryFilter) ([]domain.Enquiry, error) {
	clauses := []string{"q.deleted = FALSE"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("q.created_by=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("q.status=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("q.assigned_to=$%d", len(args)))
	}

	query := enquirySelect + ` FROM enquiries q` + enquiryJoins +
		` WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY q.created_at DESC, q.id DESC`
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	result := []domain.Enquiry{}
	for rows.Next() {
		enquiry, err := scanEnquiry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *enquiry)
	}
	return result, mapPgError(rows.Err())
}

func (r *enquiryRepository) Update(ctx context.Context, scope EnquiryScope, patch EnquiryPatch) (*domain.Enquiry, PriorState, error) {
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	args := []any{
		patch.CustomerName,
		patch.Email,
		patch.Phone,
		patch.Message,
		status,
		patch.SetAssignedTo,
		patch.AssignedTo,
	}
	clauses, args := scopeClauses("e", scope, args)

	// prev is a self-join so RETURNING can expose the pre-update values.
	query := `
        WITH updated AS (
            UPDATE enquiries AS e SET
                customer_name = COALESCE($1::text, e.customer_name),
                email         = COALESCE($2::text, e.email),
                phone         = COALESCE($3::text, e.phone),
                message       = COALESCE($4::text, e.message),
                status        = COALESCE($5::text, e.status),
                assigned_to   = CASE WHEN $6::boolean THEN $7::uuid ELSE e.assigned_to END,
                updated_at    = NOW()
            FROM enquiries AS prev
            WHERE prev.id = e.id AND ` + strings.Join(clauses, " AND ") + `
            RETURNING ` + enquiryReturning + `, prev.status AS prev_status, prev.assigned_to AS prev_assigned_to
        )` + enquirySelect + `, q.prev_status, q.prev_assigned_to::text
        FROM updated q` + enquiryJoins

	var prior PriorState
	var priorStatus string
	enquiry, err := scanEnquiry(r.pool.QueryRow(ctx, query, args...), &priorStatus, &prior.AssignedTo)
	if err != nil {
		return nil, PriorState{}, mapPgError(err)
	}
	prior.Status = domain.EnquiryStatus(priorStatus)
	return enquiry, prior, nil
}

func (r *enquiryRepository) SoftDelete(ctx context.Context, scope EnquiryScope) (*domain.Enquiry, error) {
	clauses, args := scopeClauses("e", scope, nil)
	query := `
        WITH updated AS (
            UPDATE enquiries AS e SET deleted = TRUE, updated_at = NOW()
            WHERE ` + strings.Join(clauses, " AND ") + `
            RETURNING ` + enquiryReturning + `
        )` + enquirySelect + `
        FROM updated q` + enquiryJoins

	enquiry, err := scanEnquiry(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return enquiry, nil
}

// scopeClauses renders scope as predicates over alias, appending its
// parameters after the ones already in args.
func scopeClauses(alias string, scope EnquiryScope, args []any) ([]string, []any) {
	args = append(args, scope.ID)
	clauses := []string{fmt.Sprintf("%s.id=$%d", alias, len(args))}
	if scope.CreatedBy != nil {
		args = append(args, *scope.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("%s.created_by=$%d", alias, len(args)))
	}
	if !scope.IncludeDeleted {
		clauses = append(clauses, alias+".deleted = FALSE")
	}
	if len(scope.Statuses) > 0 {
		statuses := make([]string, len(scope.Statuses))
		for i, s := range scope.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("%s.status = ANY($%d)", alias, len(args)))
	}
	return clauses, args
}

func scanEnquiry(row pgx.Row, extra ...any) (*domain.Enquiry, error) {
	var (
		enquiry       domain.Enquiry
		status        string
		creatorName   *string
		creatorEmail  *string
		assigneeName  *string
		assigneeEmail *string
	)
	dest := []any{
		&enquiry.ID,
		&enquiry.CustomerName,
		&enquiry.Email,
		&enquiry.Phone,
		&enquiry.Message,
		&status,
		&enquiry.AssignedTo,
		&enquiry.CreatedBy,
		&enquiry.Deleted,
		&enquiry.CreatedAt,
		&enquiry.UpdatedAt,
		&creatorName,
		&creatorEmail,
		&assigneeName,
		&assigneeEmail,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	enquiry.Status = domain.EnquiryStatus(status)
	if creatorName != nil {
		enquiry.Creator = &domain.UserRef{ID: enquiry.CreatedBy, Name: *creatorName, Email: deref(creatorEmail)}
	}
	if enquiry.AssignedTo != nil && assigneeName != nil {
		enquiry.Assignee = &domain.UserRef{ID: *enquiry.AssignedTo, Name: *assigneeName, Email: deref(assigneeEmail)}
	}
	return &enquiry, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
