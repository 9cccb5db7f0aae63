// Package logging configures slog for the hashpick CLI: a compact text
// handler for terminal output and a process-wide level toggle.
package logging

import "log/slog"

var globalLevel = &slog.LevelVar{}

func SetLevel(level slog.Level) {
	globalLevel.Set(level)
}
