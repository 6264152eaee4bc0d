package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permcatalog/edu-catalog/internal/ctxutil"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestContextHandler_Handle(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		setup  func(context.Context) context.Context
		want   map[string]string
		absent []string
	}{
		{
			name: "extracts all context values",
			setup: func(ctx context.Context) context.Context {
				ctx = ctxutil.WithRequestID(ctx, "req-abc-123")
				return ctxutil.WithRegion(ctx, "Пермский край")
			},
			want: map[string]string{"request_id": "req-abc-123", "region": "Пермский край"},
		},
		{
			name:   "handles empty context",
			setup:  func(ctx context.Context) context.Context { return ctx },
			absent: []string{"request_id", "region"},
		},
		{
			name: "skips empty values",
			setup: func(ctx context.Context) context.Context {
				ctx = ctxutil.WithRequestID(ctx, "")
				return ctxutil.WithRegion(ctx, "Алтайский край")
			},
			want:   map[string]string{"region": "Алтайский край"},
			absent: []string{"request_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

			log.InfoContext(tt.setup(context.Background()), "test message")

			entry := decodeLine(t, &buf)
			for k, v := range tt.want {
				assert.Equal(t, v, entry[k], k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, entry, k)
			}
		})
	}
}

func TestContextHandler_Enabled(t *testing.T) {
	t.Parallel()
	h := NewContextHandler(slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo}))

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestContextHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewJSONHandler(&buf, nil)).
		WithAttrs([]slog.Attr{slog.String("service", "catalog")}).
		WithGroup("search")

	slog.New(h).InfoContext(ctxutil.WithRequestID(context.Background(), "r1"), "done", "results", 3)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "catalog", entry["service"])
	group, ok := entry["search"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, group["results"])
}
