package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	prevLevel := Level(level.Load())
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
		SetLevel(prevLevel)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := ParseLevel("verbose")
		assert.Error(t, err)
	})
}

func TestLevelFiltering(t *testing.T) {
	t.Run("info hides debug", func(t *testing.T) {
		buf := captureLog(t)
		SetLevel(LevelInfo)

		Debug("TAG", "hidden")
		Debugf("TAG", "hidden %d", 1)
		Info("TAG", "shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "[INFO] [TAG] shown")
	})

	t.Run("debug shows formatted lines", func(t *testing.T) {
		buf := captureLog(t)
		SetLevel(LevelDebug)

		Debugf("Search", "Visiting port %d", 7)

		assert.Contains(t, buf.String(), "[DEBUG] [Search] Visiting port 7")
	})

	t.Run("error level hides warnings", func(t *testing.T) {
		buf := captureLog(t)
		SetLevel(LevelError)

		Warn("TAG", "careful")
		Success("TAG", "done")
		Error("TAG", "broken")

		assert.NotContains(t, buf.String(), "careful")
		assert.NotContains(t, buf.String(), "done")
		assert.Contains(t, buf.String(), "[ERROR] [TAG] broken")
	})

	t.Run("formatted helpers respect the level", func(t *testing.T) {
		buf := captureLog(t)
		SetLevel(LevelError)

		Infof("TAG", "quiet %d", 1)
		Warnf("TAG", "quiet %d", 2)
		Errorf("API", "Request %s: %v", "abc", "boom")

		assert.NotContains(t, buf.String(), "quiet")
		assert.Contains(t, buf.String(), "[ERROR] [API] Request abc: boom")
	})
}

func TestBannerSectionStats_NoPanic(t *testing.T) {
	buf := captureLog(t)
	SetLevel(LevelInfo)

	Banner("v1.0.0")
	Banner("")
	Section("Network")
	Stats("ports", 42)

	assert.Contains(t, buf.String(), "v1.0.0")
	assert.Contains(t, buf.String(), "dev")
	assert.Contains(t, buf.String(), "ports: 42")
}
