package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetInstance_SameKeyConcurrently(t *testing.T) {
	reg := NewRegistry(quietOptions())
	defer reg.Close()
	path := tempLogFilePath(t, "shared.log")

	const callers = 32
	results := make([]*AsyncLogger, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := reg.GetInstance(path)
			assert.NoError(t, err)
			results[i] = l
		}(i)
	}
	wg.Wait()

	require.NotNil(t, results[0])
	for _, l := range results {
		assert.Same(t, results[0], l)
	}
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, []string{path}, reg.Keys())
}

func TestRegistry_GetInstance_DifferentKeys(t *testing.T) {
	reg := NewRegistry(quietOptions())
	defer reg.Close()
	dir := t.TempDir()

	a, err := reg.GetInstance(filepath.Join(dir, "a.log"))
	require.NoError(t, err)
	b, err := reg.GetInstance(filepath.Join(dir, "b.log"))
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	// Equivalent spellings of a path share one logger.
	again, err := reg.GetInstance(dir + string(filepath.Separator) + "." + string(filepath.Separator) + "a.log")
	require.NoError(t, err)
	assert.Same(t, a, again)

	assert.Equal(t, []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}, reg.Keys())

	found, ok := reg.Lookup(filepath.Join(dir, "b.log"))
	assert.True(t, ok)
	assert.Same(t, b, found)
	_, ok = reg.Lookup(filepath.Join(dir, "c.log"))
	assert.False(t, ok)
}

func TestRegistry_GetInstance_RelativeAndAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	reg := NewRegistry(quietOptions())
	defer reg.Close()

	rel, err := reg.GetInstance("a.log")
	require.NoError(t, err)
	abs, err := reg.GetInstance(filepath.Join(dir, "a.log"))
	require.NoError(t, err)
	assert.Same(t, rel, abs)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, filepath.Join(dir, "a.log"), rel.Key())

	found, ok := reg.Lookup("./a.log")
	assert.True(t, ok)
	assert.Same(t, rel, found)
}

func TestRegistry_GetInstance_ConsoleKeyIsAFileName(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	var out bytes.Buffer
	opts := quietOptions()
	opts.Console = &out
	reg := NewRegistry(opts)

	console, err := reg.Console()
	require.NoError(t, err)
	file, err := reg.GetInstance(ConsoleKey)
	require.NoError(t, err)
	assert.NotSame(t, console, file)
	assert.Equal(t, filepath.Join(dir, ConsoleKey), file.Key())

	file.Info("into the file")
	require.NoError(t, reg.Close())

	assert.Empty(t, out.String())
	msg, ok := StripTimestamp(readLastLine(t, filepath.Join(dir, ConsoleKey)))
	require.True(t, ok)
	assert.Equal(t, "into the file", msg)
}

func TestRegistry_GetInstance_CreatesDirectories(t *testing.T) {
	reg := NewRegistry(quietOptions())
	path := filepath.Join(t.TempDir(), "nested", "deeper", "app.log")

	l, err := reg.GetInstance(path)
	require.NoError(t, err)
	l.Info("nested")
	require.NoError(t, reg.Close())

	msg, ok := StripTimestamp(readLastLine(t, path))
	require.True(t, ok)
	assert.Equal(t, "nested", msg)
}

func TestRegistry_GetInstance_OpenFailure(t *testing.T) {
	reg := NewRegistry(quietOptions())
	defer reg.Close()

	blocker := tempLogFilePath(t, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0644))

	l, err := reg.GetInstance(filepath.Join(blocker, "app.log"))
	assert.Nil(t, l)
	assert.ErrorIs(t, err, ErrOpenFailed)

	l, err = reg.GetInstance("")
	assert.Nil(t, l)
	assert.ErrorIs(t, err, ErrOpenFailed)

	assert.Zero(t, reg.Len())
}

func TestRegistry_AppendsToExistingFile(t *testing.T) {
	path := tempLogFilePath(t, "existing.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0644))

	reg := NewRegistry(quietOptions())
	l, err := reg.GetInstance(path)
	require.NoError(t, err)
	l.Info("this run")
	require.NoError(t, reg.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "previous run", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "[] :this run"))
}

func TestRegistry_CloseDrainsEveryLogger(t *testing.T) {
	reg := NewRegistry(quietOptions())
	dir := t.TempDir()

	paths := []string{filepath.Join(dir, "one.log"), filepath.Join(dir, "two.log"), filepath.Join(dir, "three.log")}
	const perFile = 2000
	for _, path := range paths {
		l, err := reg.GetInstance(path)
		require.NoError(t, err)
		for i := 0; i < perFile; i++ {
			l.Info("payload")
		}
	}

	require.NoError(t, reg.Close())
	for _, path := range paths {
		assert.Len(t, readLines(t, path), perFile, "file %s", path)
		l, ok := reg.Lookup(path)
		require.True(t, ok)
		assert.Equal(t, StateStopped, l.State())
	}

	// Closed registry refuses new loggers; closing again is harmless.
	_, err := reg.GetInstance(filepath.Join(dir, "late.log"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, reg.Close())
}

func TestRegistry_Console(t *testing.T) {
	var out bytes.Buffer
	opts := quietOptions()
	opts.Console = &out
	reg := NewRegistry(opts)

	console, err := reg.Console()
	require.NoError(t, err)
	again, err := reg.Console()
	require.NoError(t, err)
	assert.Same(t, console, again)
	assert.Equal(t, ConsoleKey, console.Key())

	console.LogMessage("to the terminal", "console", LevelInfo)
	require.NoError(t, reg.Close())

	msg, ok := StripTimestamp(strings.TrimSuffix(out.String(), "\n"))
	require.True(t, ok)
	assert.Equal(t, "to the terminal", msg)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
