// Package validation wraps a shared go-playground validator and converts its
// field errors into *apperr.ValidationError using JSON field names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"nightlife-sync/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get returns the singleton validator instance.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
	})
	return validate
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Struct validates s and returns the first failing field as a
// *apperr.ValidationError, or nil.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &apperr.ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	return &apperr.ValidationError{Field: fe.Field(), Message: translate(fe)}
}

var messages = map[string]string{
	"required":           "is required",
	"bcp47_language_tag": "must be a valid BCP 47 language tag",
}

var messagesWithParam = map[string]string{
	"oneof": "must be one of: %s",
	"min":   "must be at least %s",
	"max":   "must be at most %s",
	"gte":   "must be greater than or equal to %s",
	"lte":   "must be less than or equal to %s",
}

func translate(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	if fe.Kind() == reflect.String {
		switch fe.Tag() {
		case "min":
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case "max":
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
	}
	if tmpl, ok := messagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
