// Package validation validates domain input structs.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the layout of every date field.
const DateLayout = "2006-01-02"

// ErrInvalidInput wraps every validation failure.
var ErrInvalidInput = errors.New("invalid input")

type (
	// FieldError describes one failed field.
	FieldError struct {
		FailedField string `json:"field"`
		Tag         string `json:"tag"`
		Value       any    `json:"value"`
	}
)

var (
	validate   = newValidator()                 //nolint:gochecknoglobals
	cpfPattern = regexp.MustCompile(`^\d{11}$`) //nolint:gochecknoglobals
)

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return cpfPattern.MatchString(fl.Field().String())
	})

	return v
}

// Struct validates s and wraps failures in ErrInvalidInput.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return nil
}

// Var validates a single value against tag.
func Var(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return nil
}

// Fields returns the failed fields of an error returned by Struct.
func Fields(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			FailedField: fe.Field(),
			Tag:         fe.Tag(),
			Value:       fe.Value(),
		})
	}

	return out
}

// ParseDate parses a date field.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidInput, s)
	}

	return t, nil
}
