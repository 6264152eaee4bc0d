package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()
		id, ok := GetRequestID(context.Background())
		assert.False(t, ok)
		assert.Empty(t, id)
	})

	t.Run("with request ID", func(t *testing.T) {
		t.Parallel()
		ctx := WithRequestID(context.Background(), "req-123")
		id, ok := GetRequestID(ctx)
		assert.True(t, ok)
		assert.Equal(t, "req-123", id)
	})
}

func TestRegionContext(t *testing.T) {
	t.Parallel()
	assert.Empty(t, GetRegion(context.Background()))
	assert.Equal(t, "Пермский край", GetRegion(WithRegion(context.Background(), "Пермский край")))
}
