package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	quiet := New(false)
	assert.False(t, quiet.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.WarnLevel))

	verbose := New(true)
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}

func TestInitReplacesGlobals(t *testing.T) {
	before := zap.L()
	restore := Init(true)
	assert.True(t, zap.L().Core().Enabled(zapcore.DebugLevel))
	restore()
	assert.Equal(t, before, zap.L())
}
