// internal/logger/record.go

package logger

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Level is the severity of a Record.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
	LevelNone
)

// TimestampLayout is the layout of the timestamp field in a rendered line.
const TimestampLayout = "2006-01-02 15:04:05"

var levelNames = map[Level]string{
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
	LevelNone:     "NONE",
}

// String returns the uppercase name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a level name (case-insensitive) to a Level.
// "WARN" is accepted as an alias of WARNING.
func ParseLevel(name string) (Level, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARN" {
		return LevelWarning, nil
	}
	for level, levelName := range levelNames {
		if levelName == name {
			return level, nil
		}
	}
	return LevelInfo, fmt.Errorf("invalid log level: %s", name)
}

// Record is a single log entry. It is a value and is never modified after MakeRecord.
type Record struct {
	Message   string
	Context   string
	Timestamp time.Time
	Level     Level
}

// MakeRecord captures the current time and builds a Record.
func MakeRecord(message, context string, level Level) Record {
	return Record{
		Message:   message,
		Context:   context,
		Timestamp: time.Now(),
		Level:     level,
	}
}

// Render formats a record as one line: "LEVEL @ YYYY-MM-DD HH:MM:SS [context] :message".
// Newlines inside the message are not escaped.
func Render(r Record) string {
	var sb strings.Builder
	sb.Grow(len(r.Message) + len(r.Context) + 40)
	sb.WriteString(r.Level.String())
	sb.WriteString(" @ ")
	sb.WriteString(r.Timestamp.Local().Format(TimestampLayout))
	sb.WriteString(" [")
	sb.WriteString(r.Context)
	sb.WriteString("] :")
	sb.WriteString(r.Message)
	return sb.String()
}

var renderedLinePattern = regexp.MustCompile(`^[A-Z]+ @ \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[(.*?)\] :(.*)$`)

// StripTimestamp returns the message part of a rendered line.
// The second return value is false if the line was not produced by Render.
func StripTimestamp(line string) (string, bool) {
	match := renderedLinePattern.FindStringSubmatch(line)
	if match == nil {
		return line, false
	}
	return match[2], true
}
