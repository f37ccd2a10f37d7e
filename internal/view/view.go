// Package view shapes every JSON body the API returns.
package view

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
)

type Response[T any] struct {
	Data          T              `json:"data"`
	Message       string         `json:"message,omitempty"`
	Error         string         `json:"error,omitempty"`
	Kind          apperror.Kind  `json:"kind,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Errors        []ErrorMessage `json:"errors,omitempty"`
	// Existing carries the stored entries of a conflicting request.
	Existing any `json:"existing,omitempty"`
}

type ErrorMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse documents the error envelope for swagger.
type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	Kind          string         `json:"kind"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Errors        []ErrorMessage `json:"errors,omitempty"`
}

type MessageResponse struct {
	Data    string `json:"data"`
	Message string `json:"message,omitempty"`
}

// CreateResponse builds the envelope. req is the bound request, used to
// report validation failures under their JSON field names.
func CreateResponse[T any](data T, err error, req any, msg string) Response[T] {
	resp := Response[T]{Data: data, Message: msg}
	if err == nil {
		return resp
	}

	resp.Error = err.Error()

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Kind = apperror.KindValidation
		resp.Errors = fieldErrors(verrs, req)
		return resp
	}

	if e, ok := apperror.As(err); ok {
		resp.Kind = e.Kind
		resp.CorrelationID = e.CorrelationID
		if e.Kind == apperror.KindConflict {
			resp.Existing = e.Existing
		}
		if e.Kind == apperror.KindInternal {
			resp.Error = "internal error"
		}
	}
	return resp
}

// StatusCode maps err onto an HTTP status. Binding and validator errors are
// bad requests.
func StatusCode(err error) int {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.HTTPStatus(apperror.KindValidation)
	}
	return apperror.HTTPStatus(apperror.KindOf(err))
}

func fieldErrors(verrs validator.ValidationErrors, req any) []ErrorMessage {
	out := make([]ErrorMessage, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ErrorMessage{
			Field:   jsonName(req, fe.StructField()),
			Message: describe(fe),
		})
	}
	return out
}

func jsonName(req any, field string) string {
	t := reflect.TypeOf(req)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return field
	}
	f, ok := t.FieldByName(field)
	if !ok {
		return field
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field
	}
	return name
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "eth_addr":
		return "must be an EVM address"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
