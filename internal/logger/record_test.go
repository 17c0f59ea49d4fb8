package logger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	ts := time.Date(2025, time.March, 18, 14, 5, 9, 987654321, time.Local)

	tests := []struct {
		name     string
		record   Record
		expected string
	}{
		{
			name:     "Info with context",
			record:   Record{Message: "hello", Context: "ctx", Timestamp: ts, Level: LevelInfo},
			expected: "INFO @ 2025-03-18 14:05:09 [ctx] :hello",
		},
		{
			name:     "Empty context",
			record:   Record{Message: "no context", Timestamp: ts, Level: LevelWarning},
			expected: "WARNING @ 2025-03-18 14:05:09 [] :no context",
		},
		{
			name:     "None level",
			record:   Record{Message: "m", Context: "c", Timestamp: ts, Level: LevelNone},
			expected: "NONE @ 2025-03-18 14:05:09 [c] :m",
		},
		{
			name:     "Embedded newline is kept",
			record:   Record{Message: "a\nb", Timestamp: ts, Level: LevelError},
			expected: "ERROR @ 2025-03-18 14:05:09 [] :a\nb",
		},
		{
			name:     "Empty message",
			record:   Record{Timestamp: ts, Level: LevelCritical},
			expected: "CRITICAL @ 2025-03-18 14:05:09 [] :",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.record))
		})
	}
}

func TestRender_IsDeterministic(t *testing.T) {
	r := MakeRecord("same", "ctx", LevelDebug)
	assert.Equal(t, Render(r), Render(r))
}

func TestRender_UsesLocalTime(t *testing.T) {
	ts := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	line := Render(Record{Message: "x", Timestamp: ts, Level: LevelInfo})
	assert.Contains(t, line, ts.Local().Format(TimestampLayout))
}

func TestMakeRecord(t *testing.T) {
	before := time.Now()
	r := MakeRecord("hello", "ctx", LevelInfo)
	after := time.Now()

	assert.Equal(t, "hello", r.Message)
	assert.Equal(t, "ctx", r.Context)
	assert.Equal(t, LevelInfo, r.Level)
	assert.False(t, r.Timestamp.Before(before))
	assert.False(t, r.Timestamp.After(after))
}

func TestRender_RoundTrip(t *testing.T) {
	line := Render(MakeRecord("hello", "ctx", LevelInfo))

	require.True(t, strings.HasPrefix(line, "INFO @ "))
	assert.Contains(t, line, "[ctx]")
	assert.NotContains(t, line, "\n")

	msg, ok := StripTimestamp(line)
	require.True(t, ok)
	assert.Equal(t, "hello", msg)
}

func TestStripTimestamp(t *testing.T) {
	msg, ok := StripTimestamp("DEBUG @ 2025-03-18 14:05:09 [a] :b] :c")
	require.True(t, ok)
	assert.Equal(t, "b] :c", msg)

	msg, ok = StripTimestamp("not a log line")
	assert.False(t, ok)
	assert.Equal(t, "not a log line", msg)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARNING", LevelWarning.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "CRITICAL", LevelCritical.String())
	assert.Equal(t, "NONE", LevelNone.String())
	assert.Equal(t, "LEVEL(42)", Level(42).String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"Warning", LevelWarning, false},
		{"warn", LevelWarning, false},
		{" error ", LevelError, false},
		{"CRITICAL", LevelCritical, false},
		{"none", LevelNone, false},
		{"fatal", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
