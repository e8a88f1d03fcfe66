package logging_test

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/CodexForgeBR/sqlverify/internal/logging"
)

func init() {
	// Disable color output in tests so assertions match plain text.
	color.NoColor = true
}

// capture redirects console output produced by fn.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := logging.SetOutput(&buf)
	defer logging.SetOutput(prev)
	fn()
	return buf.String()
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0s"},
		{45, "45s"},
		{90, "1m 30s"},
		{3661, "1h 1m 1s"},
		{7200, "2h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, logging.FormatDuration(tt.seconds))
		})
	}
}

func TestConsoleLevels(t *testing.T) {
	tests := []struct {
		fn     func(string)
		prefix string
	}{
		{logging.Info, "[INFO]"},
		{logging.Success, "[SUCCESS]"},
		{logging.Warn, "[WARN]"},
		{logging.Error, "[ERROR]"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			out := capture(t, func() { tt.fn("message") })
			assert.Equal(t, tt.prefix+" message\n", out)
		})
	}
}

func TestPhaseWritesSeparators(t *testing.T) {
	out := capture(t, func() {
		logging.Phase("oracle")
	})
	assert.Contains(t, out, "[PHASE] oracle")
	assert.Contains(t, out, "━━━━")
}

func TestDebugRespectsVerbose(t *testing.T) {
	logging.SetVerbose(false)
	assert.Empty(t, capture(t, func() { logging.Debug("hidden") }))

	logging.SetVerbose(true)
	defer logging.SetVerbose(false)
	assert.Contains(t, capture(t, func() { logging.Debug("visible") }), "[DEBUG] visible")
}

func TestNewLoggerLevels(t *testing.T) {
	out := capture(t, func() {
		log := logging.NewLogger(false)
		log.Debug("dropped")
		log.Info("kept", "component", "similarity_test", "empty", "")
	})
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, "component=similarity_test")
	assert.NotContains(t, out, "empty=")

	out = capture(t, func() {
		logging.NewLogger(true).Debug("shown")
	})
	assert.Contains(t, out, "shown")
}
