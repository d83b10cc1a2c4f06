package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// V is the singleton validator instance
var V *validator.Validate

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

func init() {
	V = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names instead of Go field names
	V.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return toJSONFieldName(fld.Name)
		}
		return name
	})

	mustRegister("currency", func(fl validator.FieldLevel) bool {
		return currencyPattern.MatchString(fl.Field().String())
	})
	mustRegister("regstatus", func(fl validator.FieldLevel) bool {
		return domain.RegistrationStatus(fl.Field().String()).IsValid()
	})
	mustRegister("paystatus", func(fl validator.FieldLevel) bool {
		return domain.PaymentStatus(fl.Field().String()).IsValid()
	})
	mustRegister("role", func(fl validator.FieldLevel) bool {
		return domain.OrgRole(fl.Field().String()).IsValid()
	})
	mustRegister("apiscope", func(fl validator.FieldLevel) bool {
		return domain.IsValidScope(fl.Field().String())
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := V.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the errors keyed by field
func (e ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, err := range e {
		out[err.Field] = err.Message
	}
	return out
}

// Validate validates a struct and returns ValidationErrors if invalid
func Validate(v any) error {
	if err := V.Struct(v); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	out := make(ValidationErrors, 0, len(errs))
	for _, e := range errs {
		out = append(out, ValidationError{
			Field:   fieldPath(e),
			Message: getErrorMessage(e),
		})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace, so nested
// fields read as "attendee.email"
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// toJSONFieldName converts struct field name to JSON field name (camelCase)
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// getErrorMessage returns a human-readable error message for a validation error
func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "gtfield", "gtefield":
		return fmt.Sprintf("must be after %s", toJSONFieldName(e.Param()))
	case "timezone":
		return "must be an IANA time zone"
	case "hexcolor":
		return "must be a hex color like #1e90ff"
	case "currency":
		return "must be a three-letter ISO-4217 code"
	case "regstatus":
		return "must be one of: PENDING CONFIRMED CANCELLED WAITLISTED CHECKED_IN"
	case "paystatus":
		return "must be one of: UNPAID PENDING PAID REFUNDED FAILED"
	case "role":
		return "must be one of: SUBMITTER REVIEWER ORGANIZER ADMIN"
	case "apiscope":
		return "must be a known API key scope"
	default:
		return fmt.Sprintf("failed validation: %s", e.Tag())
	}
}

// IsValidationError checks if an error is a ValidationErrors
func IsValidationError(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}
