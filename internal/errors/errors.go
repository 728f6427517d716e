package errors

import (
	"errors"
	"net/http"

	"codeberg.org/turningpoint/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Pass failures returned by services to errors.Respond(); it knows how to
//     render *AppError and logs non-operational faults
//   - Use errors.ValidationError(), errors.Unauthorized(), etc. for failures the
//     handler detects itself (missing header, bad binding)
//   - Never log and respond for the same error
//
// For services:
//   - Return *AppError values (usually a package sentinel, WithCause(err) for faults)
//
// For repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller decide how to log and respond

// response status values
const (
	StatusFail  = "fail"
	StatusError = "error"
)

// standard error codes
const (
	CodeUnauthorized    = "unauthorized"
	CodeNotFound        = "not_found"
	CodeValidationError = "validation_error"
	CodeServerError     = "server_error"
	CodeTooManyRequests = "too_many_requests"
)

// shown instead of non-operational messages in production
const MsgGeneric = "Something went wrong"

// creates an operational error (expected, safe to show)
func New(httpStatus int, code, message string) *AppError {
	return &AppError{
		HTTPStatus:  httpStatus,
		Code:        code,
		Message:     message,
		Operational: true,
	}
}

// creates a non-operational error (a fault; cause is logged, not shown in production)
func Fault(httpStatus int, code, message string) *AppError {
	return &AppError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
	}
}

// renders err as an ErrorResponse
func Respond(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		InternalError(c, "", err)
		return
	}

	expose := exposeDetails()

	if !appErr.Operational {
		logger.FromContext(c.Request.Context()).Error(appErr.Message,
			"error", appErr.Err,
			"code", appErr.Code,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)

		if !expose {
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Status:  StatusError,
				Error:   CodeServerError,
				Message: MsgGeneric,
			})
			return
		}
	}

	response := ErrorResponse{
		Status:  appErr.Status(),
		Error:   appErr.Code,
		Message: appErr.Message,
	}

	if expose && appErr.Err != nil {
		response.Details = appErr.Err.Error()
	}

	c.JSON(appErr.HTTPStatus, response)
}

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Status:  StatusFail,
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Status:  StatusFail,
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error for binding/validation failures
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Status:  StatusFail,
		Error:   CodeValidationError,
		Message: "Validation error occured",
		Details: sanitizeError(err),
	})
}

// returns a 500 internal server error and logs the cause
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = MsgGeneric
	}

	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetInt64("user_id"),
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Status:  StatusError,
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Status:  StatusFail,
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

func sanitizeError(err error) string {
	return classifyError(err).sanitized
}

// re-exported so callers need only one errors import
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
