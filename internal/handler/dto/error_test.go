package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskhive/taskhive/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrTaskNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrConcurrencyConflict, http.StatusConflict, "CONCURRENCY_CONFLICT"},
		{domain.ErrInvalidOperation, http.StatusBadRequest, "INVALID_OPERATION"},
		{domain.ErrMissingVersion, http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.ErrMalformedVersion, http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.ErrInvalidStatus, http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.ErrInvalidPriority, http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.ErrEmailTaken, http.StatusBadRequest, "VALIDATION_ERROR"},
		{errors.New("database on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode+"/"+tt.err.Error(), func(t *testing.T) {
			status, code, _ := MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestMapDomainError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("update task: %w", domain.ErrConcurrencyConflict)
	status, code, _ := MapDomainError(wrapped)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONCURRENCY_CONFLICT", code)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(1, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 0, TotalPages(5, 0))
}
