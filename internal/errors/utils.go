package errors

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// error categories for classification
const (
	CategoryDatabase   = "database"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryUnknown    = "unknown"
)

// set by Configure; the zero value exposes causes as development does
var hideDetails atomic.Bool

// sets whether responses carry the underlying cause; only development and
// test environments (or an empty one) do
func Configure(environment string) {
	switch environment {
	case "", "development", "test":
		hideDetails.Store(false)
	default:
		hideDetails.Store(true)
	}
}

func exposeDetails() bool {
	return !hideDetails.Load()
}

// analyzes an error and returns its category and the text a client may see
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	expose := exposeDetails()

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ErrorInfo{CategoryDatabase, ternary(expose, err.Error(), "database operation failed")}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorInfo{CategoryNotFound, ternary(expose, err.Error(), "resource not found")}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{CategoryTimeout, ternary(expose, err.Error(), "request timed out")}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorInfo{CategoryTimeout, ternary(expose, err.Error(), "request canceled")}
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline"):
		return ErrorInfo{CategoryTimeout, ternary(expose, err.Error(), "request timed out")}
	case strings.Contains(errMsg, "database") || strings.Contains(errMsg, "sql") ||
		strings.Contains(errMsg, "postgres") || strings.Contains(errMsg, "pgx"):
		return ErrorInfo{CategoryDatabase, ternary(expose, err.Error(), "database operation failed")}
	case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial"):
		return ErrorInfo{CategoryNetwork, ternary(expose, err.Error(), "connection error occurred")}
	case strings.Contains(errMsg, "token") || strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "auth"):
		return ErrorInfo{CategoryAuth, ternary(expose, err.Error(), "authentication error")}
	case strings.Contains(errMsg, "validation") || strings.Contains(errMsg, "binding") ||
		strings.Contains(errMsg, "required"):
		return ErrorInfo{CategoryValidation, ternary(expose, err.Error(), "validation failed")}
	}

	return ErrorInfo{CategoryUnknown, ternary(expose, err.Error(), "an error occurred")}
}

func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}
