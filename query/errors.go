package query

import (
	"errors"
	"fmt"
)

// Code is the domain error taxonomy every hook and transport normalizes its
// failures to (spec §7 "Error taxonomy").
type Code string

const (
	CodeReactivityCycle     Code = "REACTIVITY_CYCLE"
	CodeDisposedAccess      Code = "DISPOSED_ACCESS"
	CodeHTTPError           Code = "HTTP_ERROR"
	CodeNetwork             Code = "NETWORK"
	CodeTimeout             Code = "TIMEOUT"
	CodeAbort               Code = "ABORT"
	CodeGraphQLError        Code = "GRAPHQL_ERROR"
	CodeAuthenticationError Code = "AUTHENTICATION_ERROR"
	CodeAuthorizationError  Code = "AUTHORIZATION_ERROR"
	CodeValidationError     Code = "VALIDATION_ERROR"
	CodeParseError          Code = "PARSE_ERROR"
	CodeSubscriptionError   Code = "SUBSCRIPTION_ERROR"
	CodeConfigurationError  Code = "CONFIGURATION_ERROR"
)

// Error is the normalized error type every hook's error signal holds.
// Non-domain errors reaching a hook boundary are wrapped in one with Code
// HTTPError or GraphQLError depending on where they originated.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a domain error. Cause may be nil.
func NewError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrap normalizes err to a domain *Error with the given fallback code,
// returning err unchanged if it is already a domain error.
func Wrap(err error, fallback Code) *Error {
	if err == nil {
		return nil
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	return &Error{Code: fallback, Message: err.Error(), Cause: err}
}
