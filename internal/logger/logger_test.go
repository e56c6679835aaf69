package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := GetLevel()
	SetOutput(&buf)
	t.Cleanup(func() {
		SetLevel(previous)
		SetLogOutput('c')
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(WARN)

	Info("hidden")
	Warn("shown")
	Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "also shown")
}

func TestArgumentsAreAppended(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(DEBUG)

	Info("Parsed fixtures", "liga_esp", 380)
	Info("100% literal")
	Debug("Snapshot", map[string]int{"played": 3})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "Parsed fixtures liga_esp 380")
	assert.Contains(t, lines[0], "logger_test.go")
	assert.Contains(t, lines[1], "100% literal")
	assert.Contains(t, buf.String(), `"played": 3`)
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]LogLevel{"debug": DEBUG, "": INFO, "Warning": WARN, "ERROR": ERROR} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestParseOutput(t *testing.T) {
	for name, want := range map[string]rune{"console": 'c', "file": 'f', "both": 'b', "": 'c'} {
		got, err := ParseOutput(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseOutput("syslog")
	assert.Error(t, err)
	assert.Error(t, SetLogOutput('x'))
}
