package errors

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// FormatForCLI renders err for stderr. Plain errors are reported as
// internal. With verbose set, the cause and details follow the code.
func FormatForCLI(err error, verbose bool) string {
	if err == nil {
		return ""
	}
	se, ok := As(err)
	if !ok {
		se = Wrap(ErrCodeInternal, err)
	}

	lines := []string{"Error: " + se.Message}
	if se.Suggestion != "" {
		lines = append(lines, "  Hint: "+se.Suggestion)
	}
	lines = append(lines, "  Code: "+se.Code)

	if verbose {
		if se.Cause != nil && se.Cause.Error() != se.Message {
			lines = append(lines, fmt.Sprintf("  Cause: %v", se.Cause))
		}
		for _, k := range slices.Sorted(maps.Keys(se.Details)) {
			lines = append(lines, fmt.Sprintf("  %s: %s", k, se.Details[k]))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// LogAttr returns err as a structured log attribute. A SnapError becomes
// an "error" group carrying its code, category and details; anything else
// is logged as its message.
func LogAttr(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	se, ok := As(err)
	if !ok {
		return slog.String("error", err.Error())
	}

	attrs := []any{
		slog.String("code", se.Code),
		slog.String("message", se.Message),
		slog.String("category", string(se.Category)),
	}
	if se.Cause != nil {
		attrs = append(attrs, slog.String("cause", se.Cause.Error()))
	}
	for _, k := range slices.Sorted(maps.Keys(se.Details)) {
		attrs = append(attrs, slog.String(k, se.Details[k]))
	}
	return slog.Group("error", attrs...)
}
