package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-scoring-service/internal/domain"
	"content-scoring-service/internal/validator"
)

func newTestValidator() *validator.Validator {
	return validator.New()
}

// TestCreateItemRequest_Validation_Valid tests valid upload requests.
func TestCreateItemRequest_Validation_Valid(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name string
		req  CreateItemRequest
	}{
		{
			name: "note",
			req:  CreateItemRequest{Kind: "note", Title: "Linear algebra summary"},
		},
		{
			name: "question with tags",
			req: CreateItemRequest{
				Kind:    "question",
				Title:   "Why does the integral diverge?",
				Subject: "calculus",
				Tags:    []string{"integrals", "limits"},
			},
		},
		{
			name: "title at max length",
			req:  CreateItemRequest{Kind: "note", Title: strings.Repeat("a", 200)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, v.Validate(&tt.req))
		})
	}
}

// TestCreateItemRequest_Validation_Invalid tests invalid upload requests.
func TestCreateItemRequest_Validation_Invalid(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name         string
		req          CreateItemRequest
		expectField  string
		expectTag    string
		expectErrMsg string
	}{
		{
			name:         "missing kind",
			req:          CreateItemRequest{Title: "x"},
			expectField:  "kind",
			expectTag:    "required",
			expectErrMsg: "kind is required",
		},
		{
			name:         "unknown kind",
			req:          CreateItemRequest{Kind: "video", Title: "x"},
			expectField:  "kind",
			expectTag:    "content_kind",
			expectErrMsg: "must be one of: note question",
		},
		{
			name:         "missing title",
			req:          CreateItemRequest{Kind: "note"},
			expectField:  "title",
			expectTag:    "required",
			expectErrMsg: "title is required",
		},
		{
			name:         "title too long",
			req:          CreateItemRequest{Kind: "note", Title: strings.Repeat("a", 201)},
			expectField:  "title",
			expectTag:    "max",
			expectErrMsg: "must be at most 200",
		},
		{
			name:         "too many tags",
			req:          CreateItemRequest{Kind: "note", Title: "x", Tags: make([]string, 11)},
			expectField:  "tags",
			expectTag:    "max",
			expectErrMsg: "must be at most 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			require.Error(t, err)

			var validationErrs validator.ValidationErrors
			require.ErrorAs(t, err, &validationErrs)

			found := false
			for _, ve := range validationErrs {
				if ve.Field == tt.expectField {
					found = true
					assert.Equal(t, tt.expectTag, ve.Tag)
					assert.Contains(t, ve.Message, tt.expectErrMsg)
				}
			}
			assert.True(t, found, "expected error for field %s", tt.expectField)
		})
	}
}

// TestRatingRequest_Validation tests the 1 to 5 rating bounds.
func TestRatingRequest_Validation(t *testing.T) {
	v := newTestValidator()

	for rating := -1; rating <= 7; rating++ {
		req := RatingRequest{Rating: rating}
		err := v.Validate(&req)
		if rating >= 1 && rating <= 5 {
			assert.NoError(t, err, "rating %d", rating)
			continue
		}

		var validationErrs validator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs, "rating %d", rating)
		assert.Equal(t, "rating", validationErrs[0].Field)
		assert.Equal(t, "rating must be between 1 and 5", validationErrs[0].Message)
	}
}

// TestCreateItemRequest_ToInput tests conversion to the service input.
func TestCreateItemRequest_ToInput(t *testing.T) {
	req := CreateItemRequest{
		Kind:    "question",
		Title:   "  Limits  ",
		Subject: " calculus ",
		Tags:    []string{"limits", "  ", " epsilon "},
	}

	in := req.ToInput()

	assert.Equal(t, domain.ContentKindQuestion, in.Kind)
	assert.Equal(t, "Limits", in.Title)
	assert.Equal(t, "calculus", in.Subject)
	assert.Equal(t, []string{"limits", "epsilon"}, in.Tags)
}

// TestValidationErrors_Error tests the Error() method of ValidationErrors.
func TestValidationErrors_Error(t *testing.T) {
	tests := []struct {
		name     string
		errs     validator.ValidationErrors
		expected string
	}{
		{
			name:     "empty errors",
			errs:     validator.ValidationErrors{},
			expected: "",
		},
		{
			name: "single error",
			errs: validator.ValidationErrors{
				{Field: "title", Message: "title is required"},
			},
			expected: "title is required",
		},
		{
			name: "multiple errors",
			errs: validator.ValidationErrors{
				{Field: "title", Message: "title is required"},
				{Field: "kind", Message: "kind is required"},
			},
			expected: "title is required; kind is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.errs.Error())
		})
	}
}
