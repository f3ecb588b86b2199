package errors

import "fmt"

// ErrorCode represents a Quill error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400: missing or malformed argument
	ErrUnknownCommand ErrorCode = "UNKNOWN_COMMAND" // 400: unrecognized command name
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404: chapter/section/reference/metadata absent
	ErrBadFormat      ErrorCode = "BAD_FORMAT"      // 422: import payload cannot be parsed
	ErrStore          ErrorCode = "STORE"           // 500: document store read/write failure
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// QuillError represents a structured error with code, status, and details.
type QuillError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *QuillError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid command arguments.
func NewInvalidRequest(msg string) *QuillError {
	return &QuillError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnknownCommand creates a 400 error naming the unrecognized command token.
func NewUnknownCommand(name string) *QuillError {
	return &QuillError{
		Code:    ErrUnknownCommand,
		Status:  400,
		Message: fmt.Sprintf("Unknown command: %s. Use \"help\" to see available commands.", name),
		Details: map[string]any{"command": name},
	}
}

// NewNotFound creates a 404 error for a missing entity.
// kind names the entity ("chapter", "section", "reference", "metadata").
func NewNotFound(kind, identifier string) *QuillError {
	return &QuillError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewBadFormat creates a 422 error for an unparsable import payload.
func NewBadFormat(err error) *QuillError {
	msg := "invalid thesis data format"
	if err != nil {
		msg = fmt.Sprintf("invalid thesis data format: %v", err)
	}
	return &QuillError{
		Code:    ErrBadFormat,
		Status:  422,
		Message: msg,
	}
}

// NewStore creates a 500 error for a document store failure.
// Store failures are never swallowed; callers may treat them as transient.
func NewStore(op, key string, err error) *QuillError {
	return &QuillError{
		Code:    ErrStore,
		Status:  500,
		Message: fmt.Sprintf("store %s failed for %s: %v", op, key, err),
		Details: map[string]any{"op": op, "key": key},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *QuillError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &QuillError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a QuillError with the given code.
func Is(err error, code ErrorCode) bool {
	if qErr, ok := err.(*QuillError); ok {
		return qErr.Code == code
	}
	return false
}
