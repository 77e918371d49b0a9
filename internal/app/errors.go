package app

import "fmt"

// ErrorKind separates the user-visible persistence path from the fully
// contained notification path.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindStorage      ErrorKind = "storage"
	KindNotification ErrorKind = "notification"
)

// DomainError carries the kind plus the generic message surfaced to the
// caller. Notification errors never reach an HTTP response.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func validationError(message string, err error) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message, Err: err}
}

func storageError(message string, err error) *DomainError {
	return &DomainError{Kind: KindStorage, Message: message, Err: err}
}
