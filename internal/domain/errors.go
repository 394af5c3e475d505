package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so the transport layer can map it to a
// status code without string matching.
type ErrorKind string

const (
	KindValidation    ErrorKind = "VALIDATION"
	KindAuthorization ErrorKind = "AUTHORIZATION"
	KindState         ErrorKind = "STATE"
	KindCapacity      ErrorKind = "CAPACITY"
	KindConflict      ErrorKind = "CONFLICT"
	KindNotFound      ErrorKind = "NOT_FOUND"
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) *Error {
	return Errorf(KindValidation, format, args...)
}

func AuthorizationError(format string, args ...any) *Error {
	return Errorf(KindAuthorization, format, args...)
}

func StateError(format string, args ...any) *Error {
	return Errorf(KindState, format, args...)
}

func CapacityError(format string, args ...any) *Error {
	return Errorf(KindCapacity, format, args...)
}

func ConflictError(format string, args ...any) *Error {
	return Errorf(KindConflict, format, args...)
}

func NotFoundError(format string, args ...any) *Error {
	return Errorf(KindNotFound, format, args...)
}

// KindOf returns the kind carried by err, or an empty kind for plain errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
