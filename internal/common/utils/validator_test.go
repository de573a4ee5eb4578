package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct(t *testing.T) {
	type signupInput struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
	}

	t.Run("valid input passes", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(&signupInput{
			Email:    "a@example.com",
			Password: "longenough",
		}))
	})

	t.Run("field failures are formatted", func(t *testing.T) {
		err := ValidateStruct(&signupInput{Email: "not-an-email", Password: "short"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Email must be a valid email")
		assert.Contains(t, err.Error(), "Password must be at least 8 characters")
	})

	t.Run("non-struct input errors without panicking", func(t *testing.T) {
		var err error
		assert.NotPanics(t, func() {
			err = ValidateStruct("not a struct")
		})
		assert.Error(t, err)
	})
}
