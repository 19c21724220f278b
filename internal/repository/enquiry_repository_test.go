package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enquirydesk/enquiry-service/internal/domain"
)

func TestScopeClauses(t *testing.T) {
	owner := "owner-id"
	tests := []struct {
		name        string
		scope       EnquiryScope
		leading     []any
		wantClauses []string
		wantArgs    []any
	}{
		{
			name:        "id only",
			scope:       EnquiryScope{ID: "e1"},
			wantClauses: []string{"q.id=$1", "q.deleted = FALSE"},
			wantArgs:    []any{"e1"},
		},
		{
			name:        "owner scoped",
			scope:       EnquiryScope{ID: "e1", CreatedBy: &owner},
			wantClauses: []string{"q.id=$1", "q.created_by=$2", "q.deleted = FALSE"},
			wantArgs:    []any{"e1", "owner-id"},
		},
		{
			name:        "include deleted",
			scope:       EnquiryScope{ID: "e1", CreatedBy: &owner, IncludeDeleted: true},
			wantClauses: []string{"q.id=$1", "q.created_by=$2"},
			wantArgs:    []any{"e1", "owner-id"},
		},
		{
			name: "statuses",
			scope: EnquiryScope{
				ID:       "e1",
				Statuses: []domain.EnquiryStatus{domain.EnquiryStatusOpen, domain.EnquiryStatusInProgress},
			},
			wantClauses: []string{"q.id=$1", "q.deleted = FALSE", "q.status = ANY($2)"},
			wantArgs:    []any{"e1", []string{"open", "in-progress"}},
		},
		{
			name: "numbering continues after leading args",
			scope: EnquiryScope{
				ID:        "e1",
				CreatedBy: &owner,
				Statuses:  []domain.EnquiryStatus{domain.EnquiryStatusClosed},
			},
			leading:     []any{"a", "b", "c"},
			wantClauses: []string{"q.id=$4", "q.created_by=$5", "q.deleted = FALSE", "q.status = ANY($6)"},
			wantArgs:    []any{"a", "b", "c", "e1", "owner-id", []string{"closed"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clauses, args := scopeClauses("q", tc.scope, tc.leading)
			require.Equal(t, tc.wantClauses, clauses)
			require.Equal(t, tc.wantArgs, args)
		})
	}
}
