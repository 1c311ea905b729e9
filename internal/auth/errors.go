package auth

import (
	"errors"
	"fmt"
)

// Error codes for the auth core.
const (
	CodeMissingField       = "MISSING_FIELD"
	CodeInvalidEmailFormat = "INVALID_EMAIL_FORMAT"
	CodeInvalidRole        = "INVALID_ROLE"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodePasswordTooLong    = "PASSWORD_TOO_LONG"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeStoreReadFailure   = "STORE_READ_FAILURE"
	CodeStoreWriteFailure  = "STORE_WRITE_FAILURE"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenIssueFailure  = "TOKEN_ISSUE_FAILURE"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrStoreReadFailure   = errors.New("failed to read user")
	ErrStoreWriteFailure  = errors.New("failed to save user")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenIssueFailure  = errors.New("failed to issue token")
)

var codeBySentinel = map[error]string{
	ErrMissingField:       CodeMissingField,
	ErrInvalidEmailFormat: CodeInvalidEmailFormat,
	ErrInvalidRole:        CodeInvalidRole,
	ErrInvalidStatus:      CodeInvalidStatus,
	ErrPasswordTooLong:    CodePasswordTooLong,
	ErrDuplicateEmail:     CodeDuplicateEmail,
	ErrInvalidCredentials: CodeInvalidCredentials,
	ErrAccountInactive:    CodeAccountInactive,
	ErrStoreReadFailure:   CodeStoreReadFailure,
	ErrStoreWriteFailure:  CodeStoreWriteFailure,
	ErrTokenInvalid:       CodeTokenInvalid,
	ErrTokenExpired:       CodeTokenExpired,
	ErrTokenIssueFailure:  CodeTokenIssueFailure,
}

// Error is the structured error returned by the auth core. Err is always one
// of the sentinels above, so callers can switch with errors.Is. The raw store
// or library cause is never attached.
type Error struct {
	Code    string
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Field)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(sentinel error, message string) *Error {
	if message == "" {
		message = sentinel.Error()
	}
	return &Error{Code: codeBySentinel[sentinel], Message: message, Err: sentinel}
}

func missingField(field string) *Error {
	e := newError(ErrMissingField, "")
	e.Field = field
	return e
}

// Code returns the error code carried by err, or "" when err is not an auth error.
func Code(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return ""
}
