package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeConflict, "invitation already pending")

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)

	wrapped := fmt.Errorf("invite: %w", err)
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.Equal(t, CodeConflict, CodeOf(wrapped))
	assert.Equal(t, "invitation already pending", MessageOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("load project", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "load project: connection refused", err.Error())
	assert.Equal(t, "load project", MessageOf(err))
}

func TestForeignErrorsAreInternal(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "internal error", MessageOf(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:     http.StatusBadRequest,
		CodeUnauthorized:   http.StatusUnauthorized,
		CodeForbidden:      http.StatusForbidden,
		CodeNotFound:       http.StatusNotFound,
		CodeConflict:       http.StatusConflict,
		CodePartialFailure: http.StatusInternalServerError,
		CodeInternal:       http.StatusInternalServerError,
	}

	for code, status := range cases {
		assert.Equal(t, status, HTTPStatus(code), string(code))
	}
}
