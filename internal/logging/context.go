package logging

import (
	"context"
	"log/slog"

	"pagewright/internal/services"
)

// ContextFields returns the pipeline identity carried by ctx: content id, page,
// stage and run id, each only when set.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	lookups := []struct {
		key string
		get func(context.Context) (string, bool)
	}{
		{FieldContentID, services.ContentIDFromContext},
		{FieldPage, services.PageFromContext},
		{FieldStage, services.StageFromContext},
		{FieldRunID, services.RunIDFromContext},
	}
	var fields []slog.Attr
	for _, l := range lookups {
		if v, ok := l.get(ctx); ok {
			fields = append(fields, slog.String(l.key, v))
		}
	}
	return fields
}

// WithContext returns logger extended with the fields from ContextFields.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}
