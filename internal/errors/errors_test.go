package errors

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"message only", ValidationError("Please enter a valid ID"), "VALIDATION_ERROR: Please enter a valid ID"},
		{"with cause", DatabaseError("failed to save edit log", errors.New("disk full")), "DATABASE_ERROR: failed to save edit log: disk full"},
		{"with status", RequestFailedError(502, "Request failed with status 502"), "REQUEST_FAILED: Request failed with status 502 (status 502)"},
		{"unauthorized", UnauthorizedError("Session expired. Please log in again."), "UNAUTHORIZED: Session expired. Please log in again. (status 401)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ExternalServiceError("catalog", "Failed to reach the catalog API", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "catalog", err.Context["service"])
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"app error", MalformedDataError("Trending response is not a list"), CodeMalformedData},
		{"fmt wrapped", fmt.Errorf("load: %w", ParseError("Invalid response", nil)), CodeParse},
		{"pkg wrapped", pkgerrors.Wrap(NotFoundError("movie", "5"), "reload"), CodeNotFound},
		{"plain error", errors.New("boom"), CodeUnknown},
		{"nil", nil, CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCode(tt.err))
		})
	}
}

func TestStatus(t *testing.T) {
	assert.Equal(t, 503, Status(fmt.Errorf("users: %w", RequestFailedError(503, "down"))))
	assert.Equal(t, 404, Status(New(CodeNotFound, "Movie not found").WithStatus(404)))
	assert.Equal(t, 0, Status(ValidationError("x")))
	assert.Equal(t, 0, Status(errors.New("plain")))
}

func TestPredicates(t *testing.T) {
	expired := fmt.Errorf("trending: %w", UnauthorizedError("Session expired. Please log in again."))
	assert.True(t, IsSessionExpired(expired))
	assert.False(t, IsSessionExpired(RequestFailedError(403, "Forbidden")))

	assert.True(t, IsNotFound(NotFoundError("edit log", "12")))
	assert.False(t, IsNotFound(errors.New("not found")))

	assert.True(t, IsValidationError(ValidationError("Username is required")))
	assert.False(t, IsValidationError(DatabaseError("x", nil)))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"app error", RequestFailedError(500, "Update failed: boom"), "Update failed: boom"},
		{"outermost wins", Wrap(RequestFailedError(500, "inner"), CodeDatabase, "outer"), "outer"},
		{"wrapped by fmt", fmt.Errorf("save: %w", ValidationError("Invalid quality data")), "Invalid quality data"},
		{"empty message falls through", New(CodeUnknown, ""), "An unexpected error occurred"},
		{"plain error is hidden", errors.New("sql: connection reset"), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
