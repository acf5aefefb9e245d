package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shaharia-lab/notifier/internal/service"
)

func TestNotFoundError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.NotFoundError
		expected string
	}{
		{
			name:     "typical resource",
			err:      &service.NotFoundError{Resource: "notification", ID: "abc-123"},
			expected: `notification "abc-123" not found`,
		},
		{
			name:     "explicit message wins",
			err:      &service.NotFoundError{Resource: "notification", ID: "abc", Message: "Notification not found with id: abc"},
			expected: "Notification not found with id: abc",
		},
		{
			name:     "empty ID",
			err:      &service.NotFoundError{Resource: "notification", ID: ""},
			expected: `notification "" not found`,
		},
		{
			name:     "both empty",
			err:      &service.NotFoundError{},
			expected: ` "" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.ValidationError
		expected string
	}{
		{
			name:     "with field and message",
			err:      &service.ValidationError{Field: "userId", Message: "userId is required"},
			expected: `validation error for "userId": userId is required`,
		},
		{
			name:     "without field - returns message only",
			err:      &service.ValidationError{Field: "", Message: "invalid request body"},
			expected: "invalid request body",
		},
		{
			name:     "empty message with field",
			err:      &service.ValidationError{Field: "message", Message: ""},
			expected: `validation error for "message": `,
		},
		{
			name:     "both empty",
			err:      &service.ValidationError{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrors_implement_error(t *testing.T) {
	var err error = &service.NotFoundError{Resource: "notification", ID: "x"}
	assert.Error(t, err)
	err = &service.ValidationError{Field: "x", Message: "bad"}
	assert.Error(t, err)
}
