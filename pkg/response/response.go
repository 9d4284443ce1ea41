// Package response defines the JSON envelope returned by the API.
package response

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const StatusError = "error"

var (
	EmptyRequestBodyResponse = ErrorResponse("Request body is empty.")

	InvalidRequestBodyResponse = ErrorResponse("Request body is invalid.")

	ForbiddenResponse = ErrorResponse("Short URL does not exist or password is wrong.")

	TooManyAttemptsResponse = ErrorResponse("Too many attempts. Please try again later.")

	ServerErrorResponse = ErrorResponse("An internal server error occurred. Please try again later.")
)

type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Errors  []validationError `json:"errors,omitempty"`
}

type validationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

func ErrorResponse(msg string) Response {
	return Response{
		Status:  StatusError,
		Message: msg,
	}
}

// ValidationErrorResponse lists the fields err complains about.
// Field names are whatever the validator reports, so register a tag name func for json names.
func ValidationErrorResponse(err error) Response {
	return Response{
		Status:  StatusError,
		Message: "Validation failed.",
		Errors:  getValidationErrors(err),
	}
}

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "url":
		return "Invalid url."
	case "max":
		return "Value is too long."
	default:
		return "Invalid value."
	}
}

func getValidationErrors(err error) []validationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}

	validationErrs := make([]validationError, 0, len(errs))
	for _, e := range errs {
		validationErrs = append(validationErrs, validationError{
			Field: e.Field(),
			Value: e.Value(),
			Issue: messageForTag(e.Tag()),
		})
	}

	return validationErrs
}
