package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Level represents the log level
type Level int

const (
	LevelDebug Level = iota // Debug information (only shown with --verbose)
	LevelInfo               // Important steps
	LevelTool               // Tool call related
	LevelError              // Error messages
)

// ANSI color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"
)

// Logger writes leveled diagnostics. Output always goes to stderr by
// default: stdout carries the protocol stream and must stay clean.
type Logger struct {
	writer    io.Writer
	level     Level
	showTime  bool
	colorMode bool
}

// New creates a Logger. A nil writer defaults to stderr.
func New(w io.Writer, level Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		writer:    w,
		level:     level,
		showTime:  true,
		colorMode: true,
	}
}

// SetColorMode enables or disables colored output
func (l *Logger) SetColorMode(enabled bool) {
	l.colorMode = enabled
}

// SetShowTime enables or disables timestamp display
func (l *Logger) SetShowTime(enabled bool) {
	l.showTime = enabled
}

// Debug logs debug information (only shown in verbose mode)
func (l *Logger) Debug(format string, args ...any) {
	if l.level <= LevelDebug {
		l.log(ColorGray, "DEBUG", format, args...)
	}
}

// Info logs general information
func (l *Logger) Info(format string, args ...any) {
	if l.level <= LevelInfo {
		l.log(ColorBlue, "INFO", format, args...)
	}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...any) {
	l.log(ColorRed, "ERROR", format, args...)
}

// ToolCall logs an incoming tool invocation with its argument names.
// Argument values are never logged; they may carry sensitive data.
func (l *Logger) ToolCall(toolName string, argNames []string) {
	if l.level <= LevelTool {
		l.log(ColorCyan, "TOOL", "call %s args=[%s]", toolName, strings.Join(argNames, ", "))
	}
}

// ToolResult logs a tool execution outcome. In debug mode it also logs a
// clipped payload preview.
func (l *Logger) ToolResult(toolName, status, payload string, duration time.Duration) {
	if l.level > LevelTool {
		return
	}
	color := ColorGreen
	if status != "success" {
		color = ColorRed
	}
	l.log(color, "TOOL", "done %s status=%s chars=%d duration=%s",
		toolName, status, len(payload), duration.Round(time.Millisecond))
	if l.level <= LevelDebug && payload != "" {
		l.log(ColorGray, "TOOL", "output: %s", Clip(payload, 200))
	}
}

// log is the core logging method
func (l *Logger) log(color, level, format string, args ...any) {
	timestamp := ""
	if l.showTime {
		timestamp = time.Now().Format("15:04:05") + " "
	}

	msg := fmt.Sprintf(format, args...)

	if l.colorMode {
		fmt.Fprintf(l.writer, "%s%s[%s]%s %s\n",
			color, timestamp, level, ColorReset, msg)
	} else {
		fmt.Fprintf(l.writer, "%s[%s] %s\n", timestamp, level, msg)
	}
}

// Clip shortens a payload preview to a few lines for log output.
func Clip(s string, maxLen int) string {
	const maxLines = 2
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	clipped := s
	clippedLines := false
	if len(lines) > maxLines {
		clipped = strings.Join(lines[:maxLines], "\n")
		clippedLines = true
	}
	if len(clipped) > maxLen {
		clipped = clipped[:maxLen] + "..."
	} else if clippedLines {
		clipped += "\n..."
	}
	return clipped
}
