package errs

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	ErrStatusInternalServer = http.StatusInternalServerError
	ErrStatusClient         = http.StatusBadRequest
	ErrStatusNotFound       = http.StatusNotFound
	ErrStatusConflict       = http.StatusConflict
	ErrStatusValidation     = http.StatusUnprocessableEntity
	ErrStatusBadGateway     = http.StatusBadGateway
)

const (
	CodeInternal              = "INTERNAL"
	CodeBadRequest            = "BAD_REQUEST"
	CodeNotFound              = "NOT_FOUND"
	CodeValidation            = "VALIDATION_ERROR"
	CodeConflict              = "CONFLICT"
	CodeDownstreamUnavailable = "DOWNSTREAM_UNAVAILABLE"
)

var (
	ErrInternalServer        = errors.New("Internal server error")
	ErrClient                = errors.New("Bad request")
	ErrNotFound              = errors.New("Resource not found")
	ErrValidation            = errors.New("Validation failed")
	ErrConflict              = errors.New("Conflicting record found")
	ErrDownstreamUnavailable = errors.New("Downstream service unavailable")
)

var errorMap = map[error]int{
	ErrInternalServer:        ErrStatusInternalServer,
	ErrClient:                ErrStatusClient,
	ErrNotFound:              ErrStatusNotFound,
	ErrConflict:              ErrStatusConflict,
	ErrValidation:            ErrStatusValidation,
	ErrDownstreamUnavailable: ErrStatusBadGateway,
}

// GetErrorStatusCode resolves wrapped and typed errors to their sentinel's
// HTTP status. Conflict is checked before validation because a ConflictError
// matches both.
func GetErrorStatusCode(err error) int {
	for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrValidation, ErrDownstreamUnavailable, ErrClient} {
		if errors.Is(err, sentinel) {
			return errorMap[sentinel]
		}
	}
	return errorMap[ErrInternalServer]
}

// Code returns the GraphQL extensions code for err.
func Code(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Code != "" {
		return remote.Code
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrDownstreamUnavailable):
		return CodeDownstreamUnavailable
	case errors.Is(err, ErrClient):
		return CodeBadRequest
	default:
		return CodeInternal
	}
}

// NotFoundError names the entity type and id that could not be found.
type NotFoundError struct {
	Entity string
	ID     int64
}

func NewNotFound(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": CodeNotFound, "entity": e.Entity, "id": e.ID}
}

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": CodeValidation, "field": e.Field}
}

// ConflictError reports a uniqueness violation on write.
type ConflictError struct {
	Entity string
	Field  string
	Value  string
}

func NewConflict(entity, field, value string) *ConflictError {
	return &ConflictError{Entity: entity, Field: field, Value: value}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || target == ErrValidation
}

func (e *ConflictError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": CodeConflict, "field": e.Field}
}

// DownstreamError wraps a failed or timed out call to another service.
type DownstreamError struct {
	Service string
	Err     error
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

func (e *DownstreamError) Unwrap() error { return e.Err }

func (e *DownstreamError) Is(target error) bool { return target == ErrDownstreamUnavailable }

func (e *DownstreamError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": CodeDownstreamUnavailable, "service": e.Service}
}

// RemoteError carries an error reported by another service in its response
// body, keeping the code so callers still match the local sentinels.
type RemoteError struct {
	Service string
	Message string
	Code    string
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Is(target error) bool {
	switch e.Code {
	case CodeNotFound:
		return target == ErrNotFound
	case CodeConflict:
		return target == ErrConflict || target == ErrValidation
	case CodeValidation:
		return target == ErrValidation
	case CodeDownstreamUnavailable:
		return target == ErrDownstreamUnavailable
	case CodeBadRequest:
		return target == ErrClient
	}
	return false
}

func (e *RemoteError) Extensions() map[string]interface{} {
	code := e.Code
	if code == "" {
		code = CodeInternal
	}
	return map[string]interface{}{"code": code, "service": e.Service}
}

type codedError struct {
	error
}

func (e codedError) Unwrap() error { return e.error }

func (e codedError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": Code(e.error)}
}

// WithCode returns err in a form the GraphQL executor renders with an
// extensions.code, whether or not err is one of the typed errors above.
func WithCode(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(interface{ Extensions() map[string]interface{} }); ok {
		return err
	}
	return codedError{err}
}
