package coinfolio

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
)

// MinPasswordLength is the shortest password SignUp and ChangePassword accept.
const MinPasswordLength = 6

// Session is the signed-in user, passed explicitly to every component that
// needs an identity. It is created by SignIn or Resume and ends with SignOut.
type Session struct {
	UserID   string
	Email    string
	Token    string
	Currency Currency

	mu     sync.RWMutex
	closed bool
}

// NewSession returns an active session for id.
func NewSession(id Identity, cur Currency) *Session {
	return &Session{UserID: id.UserID, Email: id.Email, Token: id.Token, Currency: cur}
}

// Active reports whether the session can still be used.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed && s.UserID != ""
}

// Close ends the session locally. Components holding it stop acting for the
// user from now on.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// requireUser returns the user id of an active session or ErrNotSignedIn.
func (s *Session) requireUser() (string, error) {
	if !s.Active() {
		return "", ErrNotSignedIn
	}
	return s.UserID, nil
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email", "%q is not an email address", email)
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalid("password", "must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// SignUp registers a new account and signs it in.
func SignUp(ctx context.Context, auth Authenticator, email, password, confirm string, cur Currency) (*Session, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, &ValidationError{Field: "password", Err: ErrPasswordMismatch}
	}
	id, err := auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return NewSession(id, cur), nil
}

// SignIn opens a session for the credentials.
func SignIn(ctx context.Context, auth Authenticator, email, password string, cur Currency) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	id, err := auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return NewSession(id, cur), nil
}

// Resume reopens the session of a token saved by a previous SignIn.
func Resume(ctx context.Context, auth Authenticator, token string, cur Currency) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotSignedIn
	}
	id, err := auth.Resume(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	return NewSession(id, cur), nil
}

// SignOut revokes the session token and closes the session. The session is
// closed even when the revocation fails.
func SignOut(ctx context.Context, auth Authenticator, s *Session) error {
	if !s.Active() {
		return ErrNotSignedIn
	}
	defer s.Close()
	if err := auth.SignOut(ctx, s.Token); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// ChangePassword sets a new password for the session user.
func ChangePassword(ctx context.Context, auth Authenticator, s *Session, password, confirm string) error {
	userID, err := s.requireUser()
	if err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if password != confirm {
		return &ValidationError{Field: "password", Err: ErrPasswordMismatch}
	}
	if err := auth.ChangePassword(ctx, userID, password); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}
