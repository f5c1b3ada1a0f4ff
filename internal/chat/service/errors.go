package service

import (
	"net/http"

	commonerrors "github.com/mzotova/threadline/internal/common/errors"
)

var (
	ErrEmptyMessage = commonerrors.NewDomainError(
		"EMPTY_MESSAGE",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Message content must not be empty",
	)
	ErrMessageTooLong = commonerrors.NewDomainError(
		"MESSAGE_TOO_LONG",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Message content exceeds the maximum length",
	)
	ErrThreadNotFound = commonerrors.NewDomainError(
		"THREAD_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"Thread not found",
	)
	ErrSubmissionInFlight = commonerrors.NewDomainError(
		"SUBMISSION_IN_FLIGHT",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"A submission is already being processed",
	)
	ErrGenerationFailed = commonerrors.NewDomainError(
		"GENERATION_FAILED",
		commonerrors.CategoryExternal,
		http.StatusBadGateway,
		"Failed to generate a reply",
	)
)
