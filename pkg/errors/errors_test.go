package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewNotFoundError("missing", nil), StatusNotFound},
		{NewInvalidRequestError("bad", nil), StatusBadRequest},
		{NewUpstreamError("boom", nil), StatusBadGateway},
		{NewUpstreamUnavailableError("open", nil), StatusServiceUnavailable},
		{fmt.Errorf("plain"), StatusInternalServerError},
		{nil, StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatusCode(tc.err), "%v", tc.err)
	}
}

func TestGetErrorType_Unwraps(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", NewNotFoundError("participant not found", nil))

	assert.Equal(t, ErrorTypeNotFound, GetErrorType(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsInvalidRequest(wrapped))
}

func TestGetHumanReadableMessage_HidesRawErrors(t *testing.T) {
	assert.Equal(t, "participant not found", GetHumanReadableMessage(NewNotFoundError("participant not found", nil)))
	assert.Equal(t, "An unexpected error occurred", GetHumanReadableMessage(fmt.Errorf("dial tcp 10.0.0.1:80: connection refused")))
}

func TestDeduceErrorTypeFromErrorString(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, DeduceErrorTypeFromErrorString(fmt.Errorf("Participant Not Found")))
	assert.Equal(t, ErrorTypeUpstreamUnavailable, DeduceErrorTypeFromErrorString(fmt.Errorf("dial tcp: connection refused")))
	assert.Equal(t, ErrorTypeUnknown, DeduceErrorTypeFromErrorString(fmt.Errorf("weird")))
}

type formatterModel struct {
	EventName string `json:"eventName" validate:"required"`
	Gender    string `json:"gender" validate:"oneof=MALE FEMALE"`
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	err := validator.New().Struct(formatterModel{Gender: "OTHER"})
	require.Error(t, err)

	out := FormatValidationErrors(err, &formatterModel{})

	require.Len(t, out, 2)
	assert.Equal(t, "eventName", out[0].Field)
	assert.Equal(t, "This field is required", out[0].Message)
	assert.Equal(t, "gender", out[1].Field)
	assert.Equal(t, "Must be one of: MALE FEMALE", out[1].Message)
}
