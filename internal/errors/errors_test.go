package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormatting(t *testing.T) {
	cause := fmt.Errorf("read failed")
	err := NewParsingError("could not decode table", cause)

	assert.Equal(t, "[PARSING] could not decode table: read failed", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewStorageError("write report", nil).
		WithContext("path", "reports/nights.csv")

	assert.Equal(t, "reports/nights.csv", err.Context["path"])
	assert.Equal(t, "[STORAGE] write report", err.Error())
}

func TestUnrecognizedInputSentinel(t *testing.T) {
	err := NewUnrecognizedInputError("no date column in header")

	require.True(t, errors.Is(err, ErrUnrecognizedInput))
	assert.Equal(t, ErrTypeParsing, err.Type)

	wrapped := fmt.Errorf("normalize sleep export: %w", err)
	assert.True(t, errors.Is(wrapped, ErrUnrecognizedInput))
}

func TestFromAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"parsing maps to 422", NewUnrecognizedInputError("garbage input"), http.StatusUnprocessableEntity, "UNRECOGNIZED_INPUT"},
		{"validation maps to 400", NewAppValidationError("window must be positive"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"not found maps to 404", NewNotFoundError("dataset"), http.StatusNotFound, "NOT_FOUND"},
		{"storage maps to 500", NewStorageError("disk full", nil), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"plain error maps to 500", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromAppError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}
