package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Venue string `json:"venue" validate:"required"`
	Date  string `json:"date" validate:"omitempty,date"`
}

func TestFieldErrors(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	err := errors.Wrap(validate.Struct(sample{Date: "2024-13-01"}), "validating")

	flds, ok := FieldErrors(err, translator)
	require.True(t, ok)
	assert.Equal(t, []FieldError{
		{Field: "venue", Error: "this field is required"},
		{Field: "date", Error: "must be a date formatted as YYYY-MM-DD"},
	}, flds)

	flds, ok = FieldErrors(err, translator, "events[2].%s")
	require.True(t, ok)
	assert.Equal(t, "events[2].venue", flds[0].Field)

	_, ok = FieldErrors(errors.New("boom"), translator)
	assert.False(t, ok)
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     ValidationError
		wantStr string
		wantMap map[string]string
	}{
		{name: "message", err: ValidationError{Err: errors.New("invalid calendar")}, wantStr: "invalid calendar", wantMap: map[string]string{}},
		{
			name:    "fields",
			err:     ValidationError{Fields: []FieldError{{"title", "this field is required"}, {"venue", "too long"}}},
			wantStr: "title: this field is required",
			wantMap: map[string]string{"title": "this field is required", "venue": "too long"},
		},
		{name: "empty", wantStr: "invalid input", wantMap: map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStr, tt.err.Error())
			assert.Equal(t, tt.wantMap, tt.err.Map())
		})
	}
}

func TestIsShutdown(t *testing.T) {
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("database gone"), "querying")))
	assert.False(t, IsShutdown(errors.New("database gone")))
}
