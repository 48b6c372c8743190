package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewPicksLevelByEnv(t *testing.T) {
	prod := New("production")
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))

	dev := New("development")
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}
