package service

import (
	"errors"
	"fmt"

	"socialboard/internal/domain"
)

// internal passes domain errors through untouched and wraps everything else
// (driver, network, storage failures) as domain.ErrInternal.
func internal(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		domain.ErrUnauthenticated,
		domain.ErrNotFound,
		domain.ErrForbidden,
		domain.ErrValidation,
		domain.ErrInternal,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrInternal, op, err)
}

func validation(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
