package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session client
var (
	// Remote errors
	ErrRemote          = errors.New("remote call failed")
	ErrInvalidResponse = fmt.Errorf("invalid response: %w", ErrRemote)

	// Authentication errors
	ErrNoAccessToken = errors.New("authenticate result has no access token")

	// Integrity errors, handled by forcing a logout
	ErrIntegrityMismatch     = errors.New("session integrity mismatch")
	ErrSecurityStampMismatch = fmt.Errorf("security stamp changed: %w", ErrIntegrityMismatch)
	ErrFingerprintMismatch   = fmt.Errorf("browser fingerprint changed: %w", ErrIntegrityMismatch)

	// Token errors
	ErrNoToken = errors.New("no token stored")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
