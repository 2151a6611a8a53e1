package logger

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"

	"communitybridge/core/config"
)

func Setup(cfg config.Config) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	if cfg.IsProduction() && cfg.OTel.Enabled() {
		handler = otelslog.NewHandler(
			cfg.OTel.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)
	} else if cfg.IsProduction() {
		handler = NewFieldHandler(slog.NewJSONHandler(os.Stdout, opts))
	} else {
		handler = NewFieldHandler(slog.NewTextHandler(os.Stdout, opts))
	}

	slog.SetDefault(slog.New(handler))
}

// FieldHandler decorates records with trace identifiers and the structured
// fields carried in the context.
type FieldHandler struct {
	slog.Handler
}

func NewFieldHandler(h slog.Handler) *FieldHandler {
	return &FieldHandler{Handler: h}
}

func (h *FieldHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	fields := GetLogFields(ctx)
	if fields.RecordID != nil {
		r.AddAttrs(slog.String("record_id", *fields.RecordID))
	}
	if fields.PostID != nil {
		r.AddAttrs(slog.String("post_id", *fields.PostID))
	}
	if fields.Platform != nil {
		r.AddAttrs(slog.String("platform", *fields.Platform))
	}
	if fields.Operator != nil {
		r.AddAttrs(slog.Int64("operator", *fields.Operator))
	}
	if fields.Report != nil {
		r.AddAttrs(slog.String("report", *fields.Report))
	}
	if fields.Component != "" {
		r.AddAttrs(slog.String("component", fields.Component))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *FieldHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &FieldHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *FieldHandler) WithGroup(name string) slog.Handler {
	return &FieldHandler{Handler: h.Handler.WithGroup(name)}
}
