package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/satriahrh/framegate/domain"
)

// RequestValidator plugs go-playground/validator into echo.Context.Validate
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator reports field errors by their JSON names
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator
func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.validate.Struct(i)
}

// validationDetail flattens validator errors into one readable line
func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed the %q check", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// errorStatus is the boundary mapping from domain errors to HTTP statuses.
// Core logic never picks a status itself.
func errorStatus(err error) (int, string) {
	var invalidImage *domain.InvalidImageError
	var comparison *domain.ComparisonError

	switch {
	case errors.As(err, &invalidImage):
		return http.StatusBadRequest, domain.ErrorCodeInvalidImage
	case errors.As(err, &comparison):
		return http.StatusInternalServerError, domain.ErrorCodeComparison
	default:
		return http.StatusInternalServerError, domain.ErrorCodeInternal
	}
}

// httpErrorCode names echo's own errors (routing, body limit) for ErrorResponse
func httpErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorCodeInvalidRequest
	case http.StatusNotFound:
		return domain.ErrorCodeNotFound
	case http.StatusMethodNotAllowed:
		return domain.ErrorCodeMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		return domain.ErrorCodePayloadTooLarge
	case http.StatusInternalServerError:
		return domain.ErrorCodeInternal
	default:
		return domain.ErrorCodeHTTP
	}
}
