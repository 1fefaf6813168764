package http

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("password", validatePassword)
	_ = v.RegisterValidation("mobile", validateMobile)
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("noleadingspace", validateNoLeadingSpace)
	return v
}

// validatePassword wants 8 to 32 characters with an upper and lower case
// letter, a digit and a special character.
func validatePassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if n := len([]rune(s)); n < 8 || n > 32 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// validateMobile accepts ten ASCII digits, not starting with 0.
func validateMobile(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 10 || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateNoLeadingSpace(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == strings.TrimLeft(s, " \t")
}
