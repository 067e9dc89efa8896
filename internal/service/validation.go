package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"course-market/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// firstViolation validates s and returns the message tag of the first failing
// field in declaration order, or "" when s is valid.
func firstViolation(s any) (string, error) {
	err := validate.Struct(s)
	if err == nil {
		return "", nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "", fmt.Errorf("validate %T: %w", s, err)
	}

	fe := fieldErrs[0]
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if field, ok := t.FieldByName(fe.StructField()); ok {
		if msg := field.Tag.Get("message"); msg != "" {
			return msg, nil
		}
	}
	return fe.Field() + " is " + fe.Tag(), nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.FieldConstraint("birthDate must be a valid date", nil)
}
