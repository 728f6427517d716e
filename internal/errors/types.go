package errors

import "net/http"

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Status  string `json:"status"`            // "fail" for 4xx, "error" otherwise
	Error   string `json:"error"`             // error code (e.g., "unauthorized", "not_found")
	Message string `json:"message"`           // stable, user-facing message
	Details string `json:"details,omitempty"` // cause, only outside production
}

// AppError is a failure that knows how it should be rendered over HTTP.
// Operational errors are expected (bad credentials, duplicates); the rest are
// faults whose cause is logged and hidden from production clients.
type AppError struct {
	HTTPStatus  int
	Code        string
	Message     string
	Operational bool
	Err         error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// matches any AppError with the same code and message, so sentinels keep
// matching after WithCause
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}

	return t.Code == e.Code && t.Message == e.Message
}

// returns a copy carrying err as its cause
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// "fail" for client errors, "error" for server errors
func (e *AppError) Status() string {
	return statusFor(e.HTTPStatus)
}

type ErrorInfo struct {
	category  string
	sanitized string
}

func statusFor(httpStatus int) string {
	if httpStatus >= http.StatusBadRequest && httpStatus < http.StatusInternalServerError {
		return StatusFail
	}

	return StatusError
}
