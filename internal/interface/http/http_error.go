package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/yt-summarizer/pkg/errors"
)

// statusClientClosedRequest is reported when the caller went away mid-run.
const statusClientClosedRequest = 499

// HTTPError is the transport view of a failure: status plus a stable code.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError builds an HTTPError.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// statusFor maps service error codes to HTTP statuses.
func statusFor(code string) int {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeTranscriptNotFound:
		return http.StatusNotFound
	case apperrors.CodeNothingToSummarize:
		return http.StatusUnprocessableEntity
	case apperrors.CodeLLM, apperrors.CodeUpstream:
		return http.StatusBadGateway
	case apperrors.CodeCancelled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// fromAppError keeps the service code as the public error code.
func fromAppError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	if code == "" {
		return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
	}
	return NewHTTPError(statusFor(code), code, errMessage(err), err)
}

func asHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fromAppError(err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
