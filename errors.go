package coinfolio

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSignedIn is returned by operations that need a user when the
	// session is missing or was closed.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrInvalidCredentials is returned by SignIn for an unknown email or a
	// wrong password. Both cases read the same on purpose.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrPasswordMismatch is returned when a password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrNotFound is returned by stores for a missing record.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned by SignUp for an email already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// ValidationError reports user input rejected before any remote call.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, format string, args ...any) error {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// RemoteFetchError reports a failed market-data call. The state that the call
// would have replaced is kept.
type RemoteFetchError struct {
	Op  string
	Err error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("cannot fetch %s: %v", e.Op, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// PersistenceError reports a failed store call. The in-memory state is left as
// it was before the mutation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cannot %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
