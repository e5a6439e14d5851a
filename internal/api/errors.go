package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/microtosca/models"
)

// APIError represents a structured API error with HTTP status code.
type APIError struct {
	Code       int                    `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	FieldError map[string]string      `json:"field_errors,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// NewAPIError creates a new API error.
func NewAPIError(code int, message string, details string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func BadRequestError(message, details string) *APIError {
	return NewAPIError(http.StatusBadRequest, message, details)
}

func NotFoundError(resource, name string) *APIError {
	return &APIError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Context: map[string]interface{}{"name": name},
	}
}

func ValidationError(message string, fieldErrors map[string]string) *APIError {
	return &APIError{
		Code:       http.StatusBadRequest,
		Message:    message,
		FieldError: fieldErrors,
	}
}

func InternalError(message, details string) *APIError {
	return NewAPIError(http.StatusInternalServerError, message, details)
}

func ConflictError(message, details string) *APIError {
	return NewAPIError(http.StatusConflict, message, details)
}

func UnprocessableError(message, details string) *APIError {
	return NewAPIError(http.StatusUnprocessableEntity, message, details)
}

// ModelError converts an error returned by the model into an APIError. The
// status code follows the error kind; errors from outside the model become
// internal errors.
func ModelError(err error) *APIError {
	var me *models.ModelError
	if !errors.As(err, &me) {
		return InternalError("Model operation failed", err.Error())
	}

	apiErr := &APIError{
		Message: me.Kind.Error(),
		Details: me.Error(),
		Context: map[string]interface{}{"op": me.Op},
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		apiErr.Code = http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateName), errors.Is(err, models.ErrAttached):
		apiErr.Code = http.StatusConflict
	case errors.Is(err, models.ErrSelfLoop), errors.Is(err, models.ErrInvalidInteraction), errors.Is(err, models.ErrInvalidName):
		apiErr.Code = http.StatusUnprocessableEntity
	default:
		apiErr.Code = http.StatusBadRequest
	}

	if me.Node != "" {
		apiErr.Context["node"] = me.Node
	}
	if me.Source != "" || me.Target != "" {
		apiErr.Context["source"] = me.Source
		apiErr.Context["target"] = me.Target
	}
	return apiErr
}

// HTTPErrorHandler is a custom error handler for Echo.
func HTTPErrorHandler(err error, c echo.Context) {
	// Don't send response if already sent
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var he *echo.HTTPError
	code := http.StatusInternalServerError

	switch {
	case errors.As(err, &he):
		code = he.Code
		apiErr = &APIError{
			Code:    code,
			Message: getHTTPMessage(code),
			Details: fmt.Sprintf("%v", he.Message),
		}
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.Is(err, models.ErrModel):
		apiErr = ModelError(err)
		code = apiErr.Code
	default:
		apiErr = &APIError{
			Code:    code,
			Message: "Internal server error",
			Details: err.Error(),
		}
	}

	// Don't expose internal errors in production
	if code == http.StatusInternalServerError && !c.Echo().Debug {
		apiErr.Details = "An internal error occurred. Please try again later."
	}

	if err := c.JSON(code, apiErr); err != nil {
		c.Logger().Error(err)
	}
}

// getHTTPMessage returns a user-friendly message for HTTP status codes.
func getHTTPMessage(code int) string {
	messages := map[int]string{
		http.StatusBadRequest:          "Bad request",
		http.StatusUnauthorized:        "Unauthorized",
		http.StatusForbidden:           "Forbidden",
		http.StatusNotFound:            "Resource not found",
		http.StatusMethodNotAllowed:    "Method not allowed",
		http.StatusConflict:            "Conflict",
		http.StatusUnprocessableEntity: "Unprocessable entity",
		http.StatusTooManyRequests:     "Too many requests",
		http.StatusInternalServerError: "Internal server error",
		http.StatusServiceUnavailable:  "Service unavailable",
	}

	if msg, ok := messages[code]; ok {
		return msg
	}
	return http.StatusText(code)
}
