package main

import (
	"log/slog"
	"os"

	"roitracker/types"
)

// NewLogger returns a structured slog.Logger with the given level. Records
// also pass through the returned DebugLog, which feeds the on-screen panel.
func NewLogger(level slog.Leveler, maxDebugLogs int) (*slog.Logger, *types.DebugLog) {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	debug := types.NewDebugLog(h, maxDebugLogs)
	return slog.New(debug), debug
}
