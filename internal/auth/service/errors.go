package service

import (
	commonerrors "github.com/mzotova/threadline/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		401,
		"invalid username or password",
	)

	ErrUsernameTaken = commonerrors.ErrUsernameAlreadyExists

	ErrUnauthenticated = commonerrors.NewDomainError(
		"UNAUTHENTICATED",
		commonerrors.CategoryUnauthorized,
		401,
		"not logged in",
	)

	ErrValidationUsernameLength = commonerrors.NewDomainError(
		"VALIDATION_USERNAME_LENGTH",
		commonerrors.CategoryValidation,
		400,
		"username must be between 3 and 32 characters",
	)

	ErrValidationUsernameChars = commonerrors.NewDomainError(
		"VALIDATION_USERNAME_CHARS",
		commonerrors.CategoryValidation,
		400,
		"username may contain only letters, digits, underscore and dash",
	)

	ErrValidationPasswordLength = commonerrors.NewDomainError(
		"VALIDATION_PASSWORD_LENGTH",
		commonerrors.CategoryValidation,
		400,
		"password must be between 8 and 72 characters",
	)

	ErrValidationPasswordCharMix = commonerrors.NewDomainError(
		"VALIDATION_PASSWORD_CHAR_MIX",
		commonerrors.CategoryValidation,
		400,
		"password must contain at least one letter and one digit",
	)
)
