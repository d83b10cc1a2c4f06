// Package validator wraps go-playground/validator with the tags used by the
// request types in internal/domain.
//
// Besides the built-in tags (email, url, timezone, hexcolor, gtfield, ...) it
// registers:
//
//	currency   three upper-case letters (ISO-4217)
//	regstatus  a registration status
//	paystatus  a payment status
//	role       an organization role that can be granted to a member
//	apiscope   an API key scope
//
// Errors come back as ValidationErrors with JSON field names:
//
//	if err := validator.Validate(&input); err != nil {
//	    // err is a validator.ValidationErrors
//	}
package validator
