// Package validate checks credentials before they are submitted.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sundowners/taskhub/internal/rest"
)

const (
	MsgInvalidEmail    = "Invalid email format"
	MsgInvalidPassword = "Invalid password format,  must contain a number, must contain one lowercase, must contain one uppercase, must contain one special character, password must be 8-16 characters long"
	MsgNameRequired    = "Name is required"
)

var emailRe = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|.(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

func Email(email string) error {
	if !emailRe.MatchString(email) {
		return rest.ValidationError(MsgInvalidEmail)
	}
	return nil
}

// Password requires 8-16 characters with a digit, a lowercase letter, an
// uppercase letter, a non-word character and no spaces or line breaks.
func Password(password string) error {
	n := utf8.RuneCountInString(password)
	if n < 8 || n > 16 || strings.ContainsAny(password, " \n\r") {
		return rest.ValidationError(MsgInvalidPassword)
	}

	var digit, lower, upper, special bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r != '_':
			special = true
		}
	}
	if !digit || !lower || !upper || !special {
		return rest.ValidationError(MsgInvalidPassword)
	}
	return nil
}

// Credentials checks email first, then password.
func Credentials(email, password string) error {
	if err := Email(email); err != nil {
		return err
	}
	return Password(password)
}

func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return rest.ValidationError(MsgNameRequired)
	}
	return nil
}
