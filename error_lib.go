package blogapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUnauthorized     = "NOT_AUTHENTICATED"
	CodeForbidden        = "PERMISSION_DENIED"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

type ApiError struct {
	Status    int                 `json:"-"`
	ErrorCode string              `json:"error_code"`
	Message   string              `json:"message"`
	Fields    map[string][]string `json:"fields,omitempty"`
}

// New formats Message with the given arguments and returns a copy.
func (e ApiError) New(messages ...string) ApiError {
	args := make([]any, len(messages))
	for i, msg := range messages {
		args[i] = msg
	}

	return ApiError{
		Status:    e.Status,
		ErrorCode: e.ErrorCode,
		Message:   fmt.Sprintf(e.Message, args...),
		Fields:    e.Fields,
	}
}

func (e ApiError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

func (e ApiError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

var (
	errNotFound = ApiError{
		Status:    http.StatusNotFound,
		ErrorCode: CodeNotFound,
		Message:   "%s not found.",
	}
	errForbidden = ApiError{
		Status:    http.StatusForbidden,
		ErrorCode: CodeForbidden,
		Message:   "%s",
	}
	errUnauthorized = ApiError{
		Status:    http.StatusUnauthorized,
		ErrorCode: CodeUnauthorized,
		Message:   "Authentication credentials were not provided.",
	}
)

func NotFound(resource string) ApiError {
	return errNotFound.New(resource)
}

func Forbidden(message string) ApiError {
	if message == "" {
		message = "You do not have permission to perform this action."
	}
	return errForbidden.New(message)
}

func Unauthorized() ApiError {
	return errUnauthorized
}

func InvalidToken() ApiError {
	return ApiError{
		Status:    http.StatusUnauthorized,
		ErrorCode: "TOKEN_NOT_VALID",
		Message:   "Given token not valid for any token type.",
	}
}

func BadRequest(message string) ApiError {
	return ApiError{
		Status:    http.StatusBadRequest,
		ErrorCode: CodeBadRequest,
		Message:   message,
	}
}

// ValidationFailed builds a field-level error response.
func ValidationFailed(fields map[string][]string) ApiError {
	return ApiError{
		Status:    http.StatusBadRequest,
		ErrorCode: CodeValidationFailed,
		Message:   "Invalid input.",
		Fields:    fields,
	}
}

// FieldError is a shorthand for a single-field validation failure.
func FieldError(field, message string) ApiError {
	return ValidationFailed(map[string][]string{field: {message}})
}

func SendError(c *gin.Context, err error) {
	var customErr ApiError
	if errors.As(err, &customErr) {
		c.AbortWithStatusJSON(customErr.StatusCode(), customErr)
		return
	}
	log.Printf("[blogapi] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error_code": CodeInternal,
		"message":    "An unknown error occurred",
	})
}
