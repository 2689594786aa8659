package services

import "errors"

var (
	// ErrValidation is returned when email or password is missing.
	ErrValidation = errors.New("missing email or password")

	// ErrConflict is returned when the email is already registered.
	ErrConflict = errors.New("account already exists")

	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when no valid session accompanies a request.
	ErrUnauthenticated = errors.New("unauthenticated")
)
