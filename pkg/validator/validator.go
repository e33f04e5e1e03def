// Package validator provides rule-based input validation. Rules are plain
// values combining a field name, a predicate, and a message; Apply runs
// them all and collects every failure so API responses can report complete
// per-field feedback in one round trip.
package validator

import (
	"fmt"
	"strings"
)

// ValidationError describes a single failed rule.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects failed rules. It implements error.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether a rule for field failed.
func (ve ValidationErrors) Has(field string) bool {
	for _, e := range ve {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Fields returns the distinct failed field names in first-seen order.
func (ve ValidationErrors) Fields() []string {
	seen := make(map[string]bool, len(ve))
	var fields []string
	for _, e := range ve {
		if !seen[e.Field] {
			seen[e.Field] = true
			fields = append(fields, e.Field)
		}
	}
	return fields
}

// Rule is a single validation check.
type Rule struct {
	Field   string
	Check   func() bool
	Message string
}

// Apply runs all rules and returns the accumulated ValidationErrors, or
// nil when everything passes.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, r := range rules {
		if !r.Check() {
			errs = append(errs, ValidationError{Field: r.Field, Message: r.Message})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
