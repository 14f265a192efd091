package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the service layer either is one of
// these or wraps one of them.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrInternal        = errors.New("internal error")
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrValidation)
	ErrDuplicateUsername  = fmt.Errorf("%w: username already taken", ErrValidation)
	ErrSelfFollow         = fmt.Errorf("%w: you cannot follow yourself", ErrValidation)
	ErrAlreadyFollowing   = fmt.Errorf("%w: you are already following this user", ErrValidation)
	ErrNotFollowing       = fmt.Errorf("%w: you are not following this user", ErrValidation)
	ErrInvalidUpload      = fmt.Errorf("%w: images only (jpeg, jpg, png, gif)", ErrValidation)
	ErrUploadTooLarge     = fmt.Errorf("%w: file too large", ErrValidation)

	ErrUserNotFound    = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrPostNotFound    = fmt.Errorf("%w: post not found", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("%w: session not found", ErrNotFound)
)
