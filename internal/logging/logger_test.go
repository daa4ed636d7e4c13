package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected LogLevel
		ok       bool
	}{
		{name: "upper case", input: "DEBUG", expected: LevelDebug, ok: true},
		{name: "lower case", input: "warn", expected: LevelWarn, ok: true},
		{name: "padded", input: " trace ", expected: LevelTrace, ok: true},
		{name: "unknown", input: "verbose", expected: LevelInfo, ok: false},
		{name: "empty", input: "", expected: LevelInfo, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := ParseLevel(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("test")
	logger.SetOutput(&buf)
	logger.SetLevel(LevelWarn)

	logger.Info("hidden %d", 1)
	logger.Debug("hidden %d", 2)
	logger.Warn("shown %d", 3)
	logger.Error("shown %d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown 3", entry["message"])
	assert.Equal(t, "test", entry["component"])
}

func TestWithPrefixSharesLevelAndOutput(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger("parent")
	parent.SetOutput(&buf)
	child := parent.WithPrefix("child")

	child.Debug("before")
	assert.Empty(t, buf.String())

	parent.SetLevel(LevelTrace)
	child.Trace("after %s", "raise")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "child", entry["component"])
	assert.Equal(t, "after raise", entry["message"])
	assert.Equal(t, "trace", entry["level"])
}
