package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserIDFromContext(t *testing.T) {
	t.Run("returns the id set by the middleware", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), "userID", int64(42))

		assert.Equal(t, int64(42), UserIDFromContext(ctx))
	})

	t.Run("absent id yields zero, not a panic", func(t *testing.T) {
		assert.Equal(t, int64(0), UserIDFromContext(context.Background()))
	})

	t.Run("wrong type yields zero", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), "userID", "42")

		assert.Equal(t, int64(0), UserIDFromContext(ctx))
	})
}
