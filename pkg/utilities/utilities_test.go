package utilities

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_FILE_MAX_AGE", "48h")
	t.Setenv("LOG_FILE_ROTATION", "bogus")

	cfg := ConfigFromEnv()
	assert.True(t, cfg.Dev)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, 48*time.Hour, cfg.FileMaxAge)
	assert.Equal(t, 24*time.Hour, cfg.FileRotation)
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("error"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("nonsense"))
}

func TestInitWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enroll.log")
	lg, err := Init(Config{Level: "info", File: path, FileMaxAge: time.Hour, FileRotation: time.Hour})
	require.NoError(t, err)

	lg.Info("hello file")
	_ = lg.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestIDs(t *testing.T) {
	a, b := NewKSUID(), NewKSUID()
	assert.Len(t, a, 27)
	assert.NotEqual(t, a, b)

	s1, s2 := NewSnowflakeID(), NewSnowflakeID()
	n1, err := strconv.ParseInt(s1, 10, 64)
	require.NoError(t, err)
	n2, err := strconv.ParseInt(s2, 10, 64)
	require.NoError(t, err)
	assert.Greater(t, n2, n1)
}
