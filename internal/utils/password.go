package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12
	PasswordLength = 8
)

var ErrPasswordTooShort = errors.New("password too short")

func HashPassword(password string) (string, error) {
	return hashPassword(password, BcryptCost)
}

// HashPasswordWithCost is used by the seeder, which hashes one shared
// password and does not need production cost.
func HashPasswordWithCost(password string, cost int) (string, error) {
	return hashPassword(password, cost)
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) < PasswordLength {
		return "", ErrPasswordTooShort
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func CheckPassword(hashedPassword string, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
