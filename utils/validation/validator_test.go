package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	ok, problems := ValidatePasswordStrength("Str0ng!pass")
	assert.True(t, ok)
	assert.Empty(t, problems)

	ok, problems = ValidatePasswordStrength("short")
	assert.False(t, ok)
	assert.Contains(t, problems, "Password must be at least 8 characters")

	ok, problems = ValidatePasswordStrength("alllowercase1!")
	require.False(t, ok)
	assert.Contains(t, problems, "Password must contain at least one uppercase letter")

	ok, problems = ValidatePasswordStrength("NoSpecial1")
	require.False(t, ok)
	assert.Contains(t, problems, "Password must contain at least one special character")

	ok, problems = ValidatePasswordStrength("NoNumber!")
	require.False(t, ok)
	assert.Contains(t, problems, "Password must contain at least one number")
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Count int    `validate:"min=1"`
	}

	v := NewValidator()
	assert.NoError(t, v.ValidateStruct(payload{Email: "dean@college.edu", Count: 3}))
	assert.Error(t, v.ValidateStruct(payload{Email: "not-an-email", Count: 0}))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "CS8075", SanitizeString("  CS8075\x00 "))
	assert.Equal(t, "", SanitizeString("\x00"))
}
