package main

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgoj/asynclog/internal/logger"
)

func TestPump(t *testing.T) {
	var out strings.Builder
	appLogger := logger.NewAppLogger(io.Discard)
	reg := logger.NewRegistry(logger.Options{AppLogger: appLogger, Console: &out})
	console, err := reg.Console()
	require.NoError(t, err)

	input := "first line\nsecond line\n\nlast line without newline"
	require.NoError(t, pump(strings.NewReader(input), console, "stdin", logger.LevelError))
	require.NoError(t, reg.Close())

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	expected := []string{"first line", "second line", "", "last line without newline"}
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, "ERROR @ "), line)
		msg, ok := logger.StripTimestamp(line)
		require.True(t, ok)
		assert.Equal(t, expected[i], msg)
		assert.Contains(t, line, "[stdin] :")
	}
}

func TestPump_LineTooLong(t *testing.T) {
	appLogger := logger.NewAppLogger(io.Discard)
	reg := logger.NewRegistry(logger.Options{AppLogger: appLogger, Console: io.Discard})
	defer reg.Close()
	console, err := reg.Console()
	require.NoError(t, err)

	input := strings.Repeat("x", maxLineSize+1)
	assert.Error(t, pump(strings.NewReader(input), console, "", logger.LevelInfo))
}
