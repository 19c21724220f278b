package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enquirydesk/enquiry-service/pkg/util/validation"
)

func TestUpdateEnquiryAssignedToTriState(t *testing.T) {
	var absent UpdateEnquiryRequest
	require.NoError(t, json.Unmarshal([]byte(`{"message":"hi"}`), &absent))
	require.False(t, absent.AssignedTo.Set)

	var null UpdateEnquiryRequest
	require.NoError(t, json.Unmarshal([]byte(`{"assignedTo":null}`), &null))
	require.True(t, null.AssignedTo.Set)
	require.Nil(t, null.AssignedTo.Value)

	var set UpdateEnquiryRequest
	require.NoError(t, json.Unmarshal([]byte(`{"assignedTo":"abc"}`), &set))
	require.True(t, set.AssignedTo.Set)
	require.Equal(t, "abc", *set.AssignedTo.Value)

	var bad UpdateEnquiryRequest
	require.Error(t, json.Unmarshal([]byte(`{"assignedTo":42}`), &bad))
}

func TestUpdateEnquiryValidation(t *testing.T) {
	status := "pending"
	phone := "123"
	err := validation.Struct(UpdateEnquiryRequest{Status: &status, Phone: &phone})
	require.Error(t, err)

	ok := "closed"
	require.NoError(t, validation.Struct(UpdateEnquiryRequest{Status: &ok}))
}
