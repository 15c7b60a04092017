package core

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a client error: either a message (Err) or per-field messages.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	}
	return "invalid input"
}

// Map keys the field messages by field name; the last message wins.
func (err ValidationError) Map() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, fErr := range err.Fields {
		m[fErr.Field] = fErr.Error
	}
	return m
}

// FieldErrors translates the validator errors wrapped in err. Field names are formatted
// with fieldFmt (e.g. "events[0].%s") when given. ok is false for any other error.
func FieldErrors(err error, translator ut.Translator, fieldFmt ...string) (flds []FieldError, ok bool) {
	vErrs, ok := errors.Cause(err).(validator.ValidationErrors)
	if !ok {
		return nil, false
	}
	flds = make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		name := vErr.Field()
		if len(fieldFmt) > 0 {
			name = fmt.Sprintf(fieldFmt[0], name)
		}
		flds = append(flds, FieldError{Field: name, Error: vErr.Translate(translator)})
	}
	return flds, true
}

// shutdown signals that the process can no longer serve requests, e.g. its database is gone.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
