package domain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes failures so callers can decide between retrying
// (re-export a capture) and aborting (fix a path, fix a key).
type ErrorKind string

const (
	// KindMalformedInput indicates the capture container itself could
	// not be parsed. Aborts the whole analysis.
	KindMalformedInput ErrorKind = "malformed_input"

	// KindKeyFormat indicates a credential failed provider validation.
	// Fatal to that credential only.
	KindKeyFormat ErrorKind = "key_format"

	// KindDecryptionAuth indicates the authentication tag did not
	// verify on decrypt, including organization-context mismatches.
	KindDecryptionAuth ErrorKind = "decryption_authentication"

	// KindFileIO indicates an input or output path was unreadable or
	// unwritable.
	KindFileIO ErrorKind = "file_io"

	// KindAuthentication indicates the token exchange with the connect
	// service failed.
	KindAuthentication ErrorKind = "authentication"

	// KindTransport indicates an upload or other client call failed.
	KindTransport ErrorKind = "transport"
)

// Error is the canonical error value returned across package
// boundaries. It carries a kind for dispatch and wraps any underlying
// cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates an error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates an error of the given kind wrapping a cause.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or "" when err is not a domain
// error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// Convenience constructors for the common kinds.

// ErrMalformedInput creates a container-level parse failure.
func ErrMalformedInput(message string, err error) *Error {
	return WrapError(KindMalformedInput, message, err)
}

// ErrKeyFormat creates a provider key validation failure.
func ErrKeyFormat(provider, reason string) *Error {
	return NewError(KindKeyFormat, fmt.Sprintf("provider %q: %s", provider, reason))
}

// ErrDecryptionAuth creates an authenticated-decryption failure.
func ErrDecryptionAuth(message string) *Error {
	return NewError(KindDecryptionAuth, message)
}

// ErrFileIO creates a path read/write failure.
func ErrFileIO(path string, err error) *Error {
	return WrapError(KindFileIO, path, err)
}
