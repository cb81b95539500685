package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingToken       = errors.New("please login to access this resource")
	ErrSessionNotFound    = errors.New("session not found")
	ErrCodeMismatch       = errors.New("invalid activation code")
	ErrForbidden          = errors.New("forbidden")

	ErrRefreshInvalid = fmt.Errorf("%w: could not refresh token", ErrInvalidToken)
	ErrSessionExpired = fmt.Errorf("%w: please login to access this resource", ErrSessionNotFound)
)

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func NewAlreadyExists(msg string) error {
	return fmt.Errorf("%w: %s", ErrAlreadyExists, msg)
}

func NewNotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

func NewForbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsMissingToken(err error) bool {
	return errors.Is(err, ErrMissingToken)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsCodeMismatch(err error) bool {
	return errors.Is(err, ErrCodeMismatch)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
