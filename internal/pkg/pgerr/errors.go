package pgerr

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeConflict            = "CONFLICT"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = New(fiber.StatusNotFound, CodeNotFound, "resource not found with given parameters")

	// ErrInvalidReq is returned when a request is invalid.
	ErrInvalidReq = New(fiber.StatusBadRequest, CodeInvalidRequest, "invalid request: some or all request parameters are invalid")

	// ErrInternalError is returned when an internal error occurs.
	ErrInternalError = New(fiber.StatusInternalServerError, CodeInternalError, "internal server error occurred")

	// ErrUnauthorized is returned when an admin credential is missing or wrong.
	ErrUnauthorized = New(fiber.StatusUnauthorized, CodeUnauthorized, "unauthorized: a valid admin key is required")

	// ErrConflict is returned when the requested operation is already in progress.
	ErrConflict = New(fiber.StatusConflict, CodeConflict, "conflict: operation already in progress")

	// ErrUpstreamUnavailable is returned when the game data origin could not serve a table.
	ErrUpstreamUnavailable = New(fiber.StatusBadGateway, CodeUpstreamUnavailable, "upstream unavailable: game data origin could not be reached")
)

type Extras map[string]interface{}

type PenguinError struct {
	StatusCode int    `example:"400"`
	ErrorCode  string `example:"INVALID_REQUEST"`
	Message    string `example:"invalid request: some or all request parameters are invalid"`
	Extras     *Extras
}

func New(statusCode int, errorCode string, message string) *PenguinError {
	return &PenguinError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func (e PenguinError) Msg(format string, parts ...interface{}) *PenguinError {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

func (e PenguinError) WithExtras(extras Extras) *PenguinError {
	e.Extras = &extras
	return &e
}

func NewInvalidViolations(violations interface{}) *PenguinError {
	// copy ErrInvalidRequest as e
	e := *ErrInvalidReq
	e.Extras = &Extras{
		"violations": violations,
	}
	return &e
}

func (e *PenguinError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// Is matches any PenguinError carrying the same error code, so copies made by
// Msg and WithExtras still match their origin.
func (e *PenguinError) Is(target error) bool {
	t, ok := target.(*PenguinError)
	if !ok {
		return false
	}
	return e.ErrorCode == t.ErrorCode
}
