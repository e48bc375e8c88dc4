package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		format  Format
		enabled zapcore.Level
	}{
		{"debug", FormatConsole, zapcore.DebugLevel},
		{"INFO", FormatJSON, zapcore.InfoLevel},
		{" warn ", "", zapcore.WarnLevel},
		{"error", FormatJSON, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+string(tt.format), func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			require.NoError(t, err)

			core := logger.Desugar().Core()
			assert.True(t, core.Enabled(tt.enabled))
			assert.False(t, core.Enabled(tt.enabled-1))
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", FormatConsole)
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New("info", "xml")
	assert.ErrorContains(t, err, "invalid log format")
}

func TestNop(t *testing.T) {
	logger := Nop()
	assert.False(t, logger.Desugar().Core().Enabled(zapcore.ErrorLevel))
	logger.Infow("discarded", "key", "value")
}
