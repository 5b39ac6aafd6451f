package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateContent checks a ContentRecord for constraint violations.
func ValidateContent(c *ContentRecord) error {
	return validateStruct(c)
}

// ValidatePost checks a Post for constraint violations.
func ValidatePost(p *Post) error {
	return validateStruct(p)
}

// ValidateSettingKey checks the domain and key of a setting.
func ValidateSettingKey(domain, key string) error {
	var ve ValidationError
	if strings.TrimSpace(domain) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "domain", Message: "is required"})
	} else if strings.Contains(domain, "/") {
		ve.Errors = append(ve.Errors, FieldError{Field: "domain", Message: "must not contain '/'"})
	}
	if strings.TrimSpace(key) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "key", Message: "is required"})
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func validateStruct(v any) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Errors = append(ve.Errors, FieldError{Field: fe.Field(), Message: describeTag(fe)})
	}
	return ve
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be %s characters or fewer", fe.Param())
	case "oneof":
		return fmt.Sprintf("invalid value %q", fe.Value())
	}
	if strings.HasPrefix(fe.Tag(), "url") {
		return "must be an absolute URL or a site path"
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
