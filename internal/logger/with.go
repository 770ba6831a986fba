package logger

import "github.com/arloliu/ntfysub/types"

// With returns a logger that prepends keysAndValues to every record.
//
// Each listener uses it to tag its records with topic and endpoint.
func With(base types.Logger, keysAndValues ...any) types.Logger {
	if len(keysAndValues) == 0 {
		return base
	}
	if w, ok := base.(*fieldLogger); ok {
		return &fieldLogger{base: w.base, fields: concat(w.fields, keysAndValues)}
	}

	return &fieldLogger{base: base, fields: keysAndValues}
}

type fieldLogger struct {
	base   types.Logger
	fields []any
}

var _ types.Logger = (*fieldLogger)(nil)

func (l *fieldLogger) Debug(msg string, keysAndValues ...any) {
	l.base.Debug(msg, concat(l.fields, keysAndValues)...)
}

func (l *fieldLogger) Info(msg string, keysAndValues ...any) {
	l.base.Info(msg, concat(l.fields, keysAndValues)...)
}

func (l *fieldLogger) Warn(msg string, keysAndValues ...any) {
	l.base.Warn(msg, concat(l.fields, keysAndValues)...)
}

func (l *fieldLogger) Error(msg string, keysAndValues ...any) {
	l.base.Error(msg, concat(l.fields, keysAndValues)...)
}

func (l *fieldLogger) Fatal(msg string, keysAndValues ...any) {
	l.base.Fatal(msg, concat(l.fields, keysAndValues)...)
}

func concat(a, b []any) []any {
	out := make([]any, 0, len(a)+len(b))
	out = append(out, a...)

	return append(out, b...)
}
