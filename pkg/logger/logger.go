package logger

import (
	"log/slog"
	"os"
)

func NewHandler(service string) slog.Handler {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &RequestIDHandler{Handler: handler.WithAttrs([]slog.Attr{slog.String("service", service)})}
}

func InitLogger(service string) {
	slog.SetDefault(slog.New(NewHandler(service)))
}
