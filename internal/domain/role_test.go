package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    Role
		wantErr bool
	}{
		{"", RoleUser, false},
		{"user", RoleUser, false},
		{" Staff ", RoleStaff, false},
		{"ADMIN", RoleAdmin, false},
		{"root", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRole(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRoleIn(t *testing.T) {
	require.True(t, RoleUser.In(RoleUser, RoleAdmin))
	require.True(t, RoleAdmin.In(RoleUser, RoleAdmin))
	require.False(t, RoleStaff.In(RoleUser, RoleAdmin))
	require.False(t, RoleAdmin.In())
}

func TestOnlyUserRoleIsOwnershipScoped(t *testing.T) {
	require.True(t, RoleUser.OwnershipScoped())
	require.False(t, RoleStaff.OwnershipScoped())
	require.False(t, RoleAdmin.OwnershipScoped())
}

func TestEnquiryStatusValid(t *testing.T) {
	for _, s := range EnquiryStatuses {
		require.True(t, s.Valid(), s)
	}
	require.False(t, EnquiryStatus("pending").Valid())
	require.False(t, EnquiryStatus("").Valid())
}
