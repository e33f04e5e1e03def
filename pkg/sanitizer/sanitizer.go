// Package sanitizer normalizes untrusted user input before validation and
// storage.
package sanitizer

import (
	"regexp"
	"strings"
)

var consecutiveDots = regexp.MustCompile(`\.{2,}`)

// NormalizeEmail lowercases and trims the address and consolidates
// consecutive dots in the local part. Values that do not look like an
// address are returned trimmed and lowercased so validation can reject
// them with the original shape intact.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}

	local = consecutiveDots.ReplaceAllString(local, ".")
	local = strings.Trim(local, ".")

	return local + "@" + domain
}

// TrimName collapses inner whitespace runs and trims a display name.
func TrimName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
