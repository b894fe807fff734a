package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorWhite  = "\033[97m"
)

// Log levels
const (
	LevelCrit   = iota // 0 - Critical errors (fatal, app should stop)
	LevelError         // 1 - Errors (non-fatal but important)
	LevelWarn          // 2 - Warnings
	LevelNotice        // 3 - Important info (startup, shutdown, config)
	LevelInfo          // 4 - General info
	LevelDebug         // 5 - Debug details
)

var (
	// Logger is the package-level logger used across the project.
	Logger = log.New(os.Stdout, "", 0) // We'll handle our own formatting
	// Level controls verbosity. Default to NOTICE for sane production defaults.
	Level      = LevelNotice
	UseColors  = true
	TimeFormat = "Jan 02 15:04:05.000"
)

// SetLevel sets the logger verbosity level.
func SetLevel(l int) {
	Level = l
}

// SetLevelFromString sets the verbosity from a level name (e.g. "debug").
// Unrecognized names leave the level unchanged.
func SetLevelFromString(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "crit", "critical":
		Level = LevelCrit
	case "error":
		Level = LevelError
	case "warn", "warning":
		Level = LevelWarn
	case "notice":
		Level = LevelNotice
	case "info":
		Level = LevelInfo
	case "debug":
		Level = LevelDebug
	}
}

// SetOutput sets the output destination for logs
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// DisableColors disables color output
func DisableColors() {
	UseColors = false
}

// formatLog formats a log message with timestamp, colored 3-letter level, and message
func formatLog(levelAbbrev, color, message string) string {
	timestamp := time.Now().Format(TimeFormat)

	if UseColors {
		// Format: "Oct 14 13:16:37.788 INF message"
		return fmt.Sprintf("%s %s%s%s %s", timestamp, color, levelAbbrev, colorReset, message)
	}

	return fmt.Sprintf("%s %s %s", timestamp, levelAbbrev, message)
}

// Crit logs critical errors (application should stop)
func Crit(format string, v ...interface{}) {
	if Level >= LevelCrit {
		Logger.Print(formatLog("CRT", colorRed, fmt.Sprintf(format, v...)))
	}
}

// Error logs error-level messages (non-fatal but important)
func Error(format string, v ...interface{}) {
	if Level >= LevelError {
		Logger.Print(formatLog("ERR", colorRed, fmt.Sprintf(format, v...)))
	}
}

// Warn logs warning-level messages
func Warn(format string, v ...interface{}) {
	if Level >= LevelWarn {
		Logger.Print(formatLog("WRN", colorYellow, fmt.Sprintf(format, v...)))
	}
}

// Notice logs important informational messages (startup, config, shutdown)
func Notice(format string, v ...interface{}) {
	if Level >= LevelNotice {
		Logger.Print(formatLog("NOT", colorCyan, fmt.Sprintf(format, v...)))
	}
}

// Info logs general informational messages
func Info(format string, v ...interface{}) {
	if Level >= LevelInfo {
		Logger.Print(formatLog("INF", colorWhite, fmt.Sprintf(format, v...)))
	}
}

// Debug logs very verbose diagnostic messages
func Debug(format string, v ...interface{}) {
	if Level >= LevelDebug {
		Logger.Print(formatLog("DBG", colorGray, fmt.Sprintf(format, v...)))
	}
}
