package util

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordBytes = 72
	passwordCost     = 10
)

var ErrPasswordPolicy = errors.New("password must be 8-72 characters and include a letter and a digit")

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > maxPasswordBytes {
		return ErrPasswordPolicy
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordPolicy
	}
	return nil
}

func HashPassword(password string) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return bcrypt.GenerateFromPassword([]byte(password), passwordCost)
}

func VerifyPassword(password string, hash []byte) bool {
	if len(password) == 0 || len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
