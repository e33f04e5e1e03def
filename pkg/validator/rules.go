package validator

import (
	"net/mail"
	"strings"
	"time"
	"unicode"
)

// Required fails on empty or whitespace-only values.
func Required(field, value string) Rule {
	return Rule{
		Field:   field,
		Check:   func() bool { return strings.TrimSpace(value) != "" },
		Message: "is required",
	}
}

// ValidEmail checks the value parses as a bare RFC 5322 address with a
// non-empty local part and a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Field: field,
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			return ok && local != "" && strings.Contains(domain, ".")
		},
		Message: "must be a valid email address",
	}
}

// PasswordStrengthConfig controls StrongPassword requirements.
type PasswordStrengthConfig struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // distinct classes among lower, upper, digit, symbol
}

// DefaultPasswordStrength requires only two character classes, trading a
// little entropy for noticeably better signup completion.
var DefaultPasswordStrength = PasswordStrengthConfig{
	MinLength:      8,
	MaxLength:      128,
	MinCharClasses: 2,
}

// StrongPassword enforces length bounds and character-class diversity.
func StrongPassword(field, value string, cfg PasswordStrengthConfig) Rule {
	return Rule{
		Field: field,
		Check: func() bool {
			if len(value) < cfg.MinLength || len(value) > cfg.MaxLength {
				return false
			}
			var lower, upper, digit, symbol bool
			for _, r := range value {
				switch {
				case unicode.IsLower(r):
					lower = true
				case unicode.IsUpper(r):
					upper = true
				case unicode.IsDigit(r):
					digit = true
				default:
					symbol = true
				}
			}
			classes := 0
			for _, ok := range []bool{lower, upper, digit, symbol} {
				if ok {
					classes++
				}
			}
			return classes >= cfg.MinCharClasses
		},
		Message: "does not meet password strength requirements",
	}
}

// OrderedDateRange fails when both bounds are set and from is after to.
func OrderedDateRange(field string, from, to *time.Time) Rule {
	return Rule{
		Field: field,
		Check: func() bool {
			if from == nil || to == nil {
				return true
			}
			return !from.After(*to)
		},
		Message: "start date must not be after end date",
	}
}
