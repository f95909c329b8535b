package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// newJSONHandler returns a slog JSON handler with the key shape the rest of
// the tooling expects: ts (RFC3339, UTC), level (lowercase), msg.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return attr
			}
			switch attr.Key {
			case slog.TimeKey:
				if t, ok := attr.Value.Any().(time.Time); ok {
					return slog.String("ts", t.UTC().Format(time.RFC3339Nano))
				}
			case slog.LevelKey:
				if level, ok := attr.Value.Any().(slog.Level); ok {
					return slog.String("level", strings.ToLower(level.String()))
				}
			}
			return attr
		},
	})
}
