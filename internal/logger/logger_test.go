package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "Production", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, l.SugaredLogger)
	}
}

func TestWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With("run", "r1")

	l.Debug("skipped record", "reason", "no condition")
	l.Warn("dropped")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "skipped record", entries[0].Message)
	assert.Equal(t, map[string]any{"run": "r1", "reason": "no condition"}, entries[0].ContextMap())
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("nothing")
	l.Sync()
}
