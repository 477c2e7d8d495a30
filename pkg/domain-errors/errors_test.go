package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	t.Run("new carries code", func(t *testing.T) {
		err := New(CodeNotFound, "delegate not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeValidation))
		assert.Equal(t, "delegate not found", MessageOf(err))
	})

	t.Run("wrap keeps cause reachable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "failed to load delegate")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("issue: %w", New(CodeUnauthorized, "administrator only"))
		assert.True(t, Is(err, CodeUnauthorized))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.Empty(t, MessageOf(errors.New("boom")))
	})
}

func TestErrorIsMatchesCodeAndMessage(t *testing.T) {
	err := Wrap(New(CodeNotFound, "delegate not found"), CodeInternal, "lookup failed")
	assert.ErrorIs(t, err, New(CodeNotFound, "delegate not found"))
	assert.NotErrorIs(t, err, New(CodeNotFound, "credential not found"))
}
