package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerLevelsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{level: LogLevelInfo, out: log.New(&buf, "", 0)}
	sweep := l.With("SweepService")

	sweep.Info("computed %d curves", 5)
	sweep.Debug("hidden")
	l.Warn("plain")

	assert.Equal(t, "[INFO] [SweepService] computed 5 curves\n[WARN] plain\n", buf.String())
	assert.Equal(t, LogLevelInfo, sweep.GetLevel())
}
