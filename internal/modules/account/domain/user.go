package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "studytrack/internal/platform/errors"
)

const maxNameLength = 40

var (
	ErrEmptyUserName     = fmt.Errorf("%w: user name is required", apperrors.ErrInvalidInput)
	ErrUserNameTooLong   = fmt.Errorf("%w: user name is longer than %d characters", apperrors.ErrInvalidInput, maxNameLength)
	ErrDuplicateUserName = fmt.Errorf("%w: user name already registered", apperrors.ErrInvalidInput)
	ErrUserNotFound      = fmt.Errorf("%w: user", apperrors.ErrNotFound)
)

// User is created once and never changes; its ID keys the user's study data.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyUserName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrUserNameTooLong
	}
	return name, nil
}

// Find matches ref against IDs first, then names case-insensitively.
func Find(users []User, ref string) (User, error) {
	ref = strings.TrimSpace(ref)
	for _, u := range users {
		if u.ID == ref {
			return u, nil
		}
	}
	for _, u := range users {
		if strings.EqualFold(u.Name, ref) {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("%w %q", ErrUserNotFound, ref)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
