package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment so loops and handlers do
// not have to repeat record/operator identifiers on every log statement.
type LogFields struct {
	RecordID *string // structured-store record id (issue report, reaction, ...)
	PostID   *string // forum submission id
	Platform *string // origin platform ("Reddit", "Discord", "Telegram")
	Operator *int64  // messaging-platform operator id driving an interactive flow
	Report   *string // report kind ("night", "day", "weekly", "monthly")
	Component string // component name, e.g. "bridge.service.sweeper"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RecordID != nil {
		result.RecordID = next.RecordID
	}
	if next.PostID != nil {
		result.PostID = next.PostID
	}
	if next.Platform != nil {
		result.Platform = next.Platform
	}
	if next.Operator != nil {
		result.Operator = next.Operator
	}
	if next.Report != nil {
		result.Report = next.Report
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{RecordID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Useful for logging potentially long message bodies.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
