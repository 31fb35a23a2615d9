package area

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := &Error{Code: CodeDuplicatePost, Message: "dup"}
	assert.True(t, errors.Is(err, ErrDuplicatePost))
	assert.False(t, errors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("creating moment: %w", err)
	assert.True(t, errors.Is(wrapped, ErrDuplicatePost))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := UpstreamError("users service", cause)
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeDuplicatePost, http.StatusBadRequest},
		{CodeInsufficientFunds, http.StatusBadRequest},
		{CodeOverlapConflict, http.StatusConflict},
		{CodeNotFound, http.StatusNotFound},
		{CodeAccessDenied, http.StatusForbidden},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUpstreamUnavailable, http.StatusBadGateway},
		{Code("UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		err := &Error{Code: tt.code}
		assert.Equal(t, tt.want, err.HTTPStatus(), string(tt.code))
	}
}

func TestValidationError(t *testing.T) {
	err := ValidationError("bad field %q", "radius")
	assert.Equal(t, CodeValidation, err.Code)
	assert.Contains(t, err.Message, `"radius"`)
}
