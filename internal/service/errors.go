// Package service holds the business rules: credentials and tokens,
// accounts, the product catalog and the order lifecycle. Handlers map
// the errors declared here onto HTTP statuses.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/distributor-orders/internal/repository"
	"github.com/iliyamo/distributor-orders/internal/utils"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("already in use")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTokenExpired         = errors.New("refresh token expired")
	ErrInvalidToken         = errors.New("invalid or expired refresh token")
	ErrTokenMismatch        = errors.New("invalid refresh token")
	ErrForbidden            = errors.New("forbidden")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
)

// ValidationError is malformed or missing input. Msg is shown to the client.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// storeErr translates repository sentinels; what names the record
// ("user", "product code", ...) and prefixes the message.
func storeErr(what string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s %w", what, ErrNotFound)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s %w", what, ErrConflict)
	case errors.Is(err, repository.ErrInvalidID):
		return invalid("invalid %s id", what)
	}
	return err
}

// hashPassword hashes plain, reporting an over-long password as a
// validation failure instead of an internal error.
func hashPassword(plain string, cost int) (string, error) {
	hash, err := utils.HashPassword(plain, cost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", invalid("password must be at most %d bytes", utils.MaxPasswordBytes)
	}
	return hash, err
}
