package errors

import "errors"

// Codes shared by the service and transport layers.
const (
	CodeInvalidInput       = "invalid_input"
	CodeNothingToSummarize = "nothing_to_summarize"
	CodeTranscriptNotFound = "transcript_not_found"
	CodeUpstream           = "upstream_error"
	CodeLLM                = "llm_error"
	CodeConfig             = "config_error"
	CodeTokenizer          = "tokenizer_error"
	CodeCancelled          = "cancelled"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
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

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost AppError in the chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
