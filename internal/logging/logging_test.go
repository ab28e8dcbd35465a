package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	tests := []struct {
		mode      string
		wantDebug bool
	}{
		{"dev", false},
		{"", false},
		{"debug", true},
		{"prod", false},
		{"PRODUCTION", false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			l, err := New(tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, l.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("student", "alice").Info("recorded", "key", "u.1")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "recorded", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "alice", ctx["student"])
	assert.Equal(t, "u.1", ctx["key"])
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Warn("ignored", "k", 1)
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zapcore.ErrorLevel))
}
