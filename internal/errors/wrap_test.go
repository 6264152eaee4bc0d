package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWrapper(t *testing.T) {
	t.Parallel()
	wrapper := NewWrapper("dataset", "reload")

	t.Run("Wrap returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, wrapper.Wrap(nil, "reload failed"))
		assert.NoError(t, wrapper.Wrapf(nil, "reload %s failed", "file"))
	})

	t.Run("Wrap creates WrappedError", func(t *testing.T) {
		base := errors.New("disk on fire")
		wrapped := wrapper.Wrap(base, "reload failed")

		var w *WrappedError
		require.ErrorAs(t, wrapped, &w)
		assert.Equal(t, "dataset", w.Module)
		assert.Equal(t, "reload", w.Operation)
		assert.Equal(t, "reload failed", w.Message)
		assert.ErrorIs(t, wrapped, base)
		assert.Equal(t, "[dataset:reload] reload failed: disk on fire", wrapped.Error())
	})

	t.Run("Wrapf formats message", func(t *testing.T) {
		wrapped := wrapper.Wrapf(ErrNotFound, "source %s", "r2")
		assert.Contains(t, wrapped.Error(), "source r2")
		assert.True(t, IsNotFound(wrapped))
	})
}

func TestModuleOf(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("outer: %w", NewWrapper("storage", "load").Wrap(ErrNotFound, "no rows"))
	assert.Equal(t, "storage", ModuleOf(err))
	assert.Equal(t, "", ModuleOf(errors.New("plain")))
}
