package logger

import (
	"log/slog"

	slogbetterstack "github.com/samber/slog-betterstack"
)

func newBetterStackHandler(token, endpoint string, level slog.Level) slog.Handler {
	opt := slogbetterstack.Option{
		Level: level,
		Token: token,
	}
	if endpoint != "" {
		opt.Endpoint = endpoint
	}
	return opt.NewBetterstackHandler()
}
