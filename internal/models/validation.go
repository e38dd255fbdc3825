package models

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EmailTag is the validator tag for member email addresses
const EmailTag = "member_email"

// ErrInvalidEmail is returned when a member's email is missing or malformed
var ErrInvalidEmail = errors.New("invalid email format")

// Local part is a dot-separated run of unquoted atoms or a quoted string.
// Domain is a bracketed IPv4 literal or dotted labels ending in a 2+ letter TLD.
// Whitespace covers the Unicode space separators, not just ASCII.
const (
	emailSpace  = `\t\n\v\f\r \x{a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`
	emailAtom   = `[^<>()\[\]\\.,;:` + emailSpace + `@"]+`
	emailQuoted = `"[^\n\r\x{2028}\x{2029}]+"`
	emailDomain = `(\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,})`
)

var emailRegex = regexp.MustCompile(`^((` + emailAtom + `(\.` + emailAtom + `)*)|(` + emailQuoted + `))@(` + emailDomain + `)$`)

// IsValidEmail validates email format, case-insensitively
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.ToLower(email))
}

// NewValidator returns a validator with the member tags registered
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(EmailTag, func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	return v
}

// ValidateMember checks the fields a member must carry before it is stored
func ValidateMember(v *validator.Validate, member Member) error {
	email, ok := member.Email()
	if !ok {
		return ErrInvalidEmail
	}
	if err := v.Var(email, "required,"+EmailTag); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
