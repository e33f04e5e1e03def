package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artfolio/artfolio/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"User@Example.COM":      "user@example.com",
		"  user@example.com  ":  "user@example.com",
		"us..er@example.com":    "us.er@example.com",
		".user.@example.com":    "user@example.com",
		"not-an-email":          "not-an-email",
		"a@b@c":                 "a@b@c",
		"MIXED..case@Domain.IO": "mixed.case@domain.io",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizer.NormalizeEmail(in), in)
	}
}

func TestTrimName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Jane Doe", sanitizer.TrimName("  Jane   Doe "))
	assert.Equal(t, "", sanitizer.TrimName("   "))
}
