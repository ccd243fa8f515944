package validator_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("userId", "u1"),
			validator.MaxLenString("userId", "u1", 10),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("userId", "   "),
			validator.InList("channel", "fax", []string{"email", "sms"}),
		)
		require.Error(t, err)

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 2)
		assert.Equal(t, []string{"userId", "channel"}, errs.Fields())
		assert.True(t, errs.Has("channel"))
		assert.Equal(t, []string{"field is required"}, errs.Get("userId"))
		assert.True(t, strings.HasPrefix(err.Error(), "validation failed: "))
	})
}

func TestRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule validator.Rule
		want bool
	}{
		{"required string ok", validator.RequiredString("f", "x"), true},
		{"required string blank", validator.RequiredString("f", " \t"), false},
		{"max len ok", validator.MaxLenString("f", "abc", 3), true},
		{"max len exceeded", validator.MaxLenString("f", "abcd", 3), false},
		{"max len counts runes", validator.MaxLenString("f", "éüß", 3), true},
		{"max len multibyte exceeded", validator.MaxLenString("f", "日本語です", 4), false},
		{"in list ok", validator.InList("f", "sms", []string{"email", "sms"}), true},
		{"in list miss", validator.InList("f", "fax", []string{"email", "sms"}), false},
		{"each in list empty", validator.EachInList("f", []string{}, []string{"email"}), true},
		{"each in list ok", validator.EachInList("f", []string{"email", "sms"}, []string{"email", "sms", "push"}), true},
		{"each in list miss", validator.EachInList("f", []string{"email", "fax"}, []string{"email", "sms"}), false},
		{"required map nil", validator.RequiredMap[string, any]("f", nil), false},
		{"required map empty", validator.RequiredMap("f", map[string]any{}), true},
		{"email ok", validator.ValidEmail("f", "user@example.com"), true},
		{"email with name", validator.ValidEmail("f", "User <user@example.com>"), false},
		{"email invalid", validator.ValidEmail("f", "not-an-email"), false},
		{"url ok", validator.ValidURL("f", "https://sms.example.com/send"), true},
		{"url no scheme", validator.ValidURL("f", "sms.example.com"), false},
		{"url ftp", validator.ValidURL("f", "ftp://example.com"), false},
		{"min num ok", validator.MinNum("f", 0, 0), true},
		{"min num below", validator.MinNum("f", -1, 0), false},
		{"max num ok", validator.MaxNum("f", 100, 100), true},
		{"max num above", validator.MaxNum("f", 101, 100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.rule.Check())
		})
	}
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.Nil(t, validator.ExtractValidationErrors(errors.New("plain")))
	assert.False(t, validator.IsValidationError(nil))

	wrapped := fmt.Errorf("create subscription: %w", validator.Apply(validator.RequiredString("userId", "")))
	assert.True(t, validator.IsValidationError(wrapped))
	assert.Len(t, validator.ExtractValidationErrors(wrapped), 1)
}
