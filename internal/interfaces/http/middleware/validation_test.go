package middleware

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUpPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func TestFieldErrors(t *testing.T) {
	SetupValidator()

	t.Run("uses json field names", func(t *testing.T) {
		err := binding.Validator.ValidateStruct(&signUpPayload{Email: "not-an-email", Password: "short"})
		require.Error(t, err)

		fields, ok := FieldErrors(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid email format", fields["email"])
		assert.Equal(t, "Must be at least 8 characters", fields["password"])
	})

	t.Run("non-validator errors pass through", func(t *testing.T) {
		_, ok := FieldErrors(errors.New("unexpected EOF"))
		assert.False(t, ok)
	})
}
