package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{
		"taskType": "score-loan-risk",
	})

	log.Info("processing job", map[string]interface{}{"jobKey": int64(42)})
	log.WithError(errors.New("boom")).Error("failed", map[string]interface{}{
		"cause": errors.New("inner"),
	})

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "processing job", entries[0].Message)
	assert.Equal(t, "score-loan-risk", entries[0].ContextMap()["taskType"])
	assert.Equal(t, int64(42), entries[0].ContextMap()["jobKey"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.Equal(t, "inner", entries[1].ContextMap()["cause"])
}

func TestNewWithOptions(t *testing.T) {
	l := NewWithOptions(Options{Level: "debug", Format: "json", Output: "stderr", Service: "loan"})
	assert.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
