package dialog

import (
	"errors"

	"github.com/edgard/sonnik/internal/config"
)

// Errors a front-end can react to. Anything else returned by Service is a
// storage failure.
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrDuplicateIdentity = errors.New("identity already registered")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrIdentityNotFound  = errors.New("identity not found")
	ErrInvalidProfile    = errors.New("invalid profile")
)

// userMessage maps err to the text shown to the person on the other end.
func userMessage(m config.MessagesConfig, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return m.EmptyInput
	case errors.Is(err, ErrDuplicateIdentity):
		return m.DuplicateIdentity
	case errors.Is(err, ErrInvalidCredential):
		return m.InvalidCredential
	case errors.Is(err, ErrIdentityNotFound):
		return m.IdentityNotFound
	case errors.Is(err, ErrInvalidProfile):
		return m.InvalidProfile
	default:
		return m.GeneralError
	}
}
