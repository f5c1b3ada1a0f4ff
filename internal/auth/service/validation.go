package service

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/mzotova/threadline/internal/common/constants"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type credentials struct {
	Username string `validate:"required,min=3,max=32,username_chars"`
	Password string `validate:"required,min=8,max=72,password_char_mix"`
}

func newCredentialValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return isValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("password_char_mix", func(fl validator.FieldLevel) bool {
		return hasLetterAndDigit(fl.Field().String())
	})

	return v
}

func (s *AuthService) validateCredentials(username, password string) error {
	err := s.validate.Struct(credentials{Username: username, Password: password})
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return ErrValidationUsernameChars
	}

	fe := errs[0]
	switch fe.Field() {
	case "Username":
		if fe.Tag() == "username_chars" {
			return ErrValidationUsernameChars
		}
		return ErrValidationUsernameLength
	default:
		if fe.Tag() == "password_char_mix" {
			return ErrValidationPasswordCharMix
		}
		return ErrValidationPasswordLength
	}
}

func isValidUsername(value string) bool {
	if len(value) < constants.UsernameMinLength {
		return false
	}

	if !usernameRegex.MatchString(value) {
		return false
	}

	if !unicode.IsLetter(rune(value[0])) && !unicode.IsDigit(rune(value[0])) {
		return false
	}

	if !unicode.IsLetter(rune(value[len(value)-1])) && !unicode.IsDigit(rune(value[len(value)-1])) {
		return false
	}

	return true
}

func hasLetterAndDigit(value string) bool {
	hasLetter := false
	hasDigit := false

	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if hasLetter && hasDigit {
			return true
		}
	}

	return false
}
