package internal

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeveledLogrus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	leveled := NewLeveledLogrus(logger, "gateway-client")

	leveled.Warn("retrying request", "url", "http://localhost/x", "retry", 2, 42, "ignored")
	leveled.Debug("odd pairs", "dangling")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, "retrying request", entries[0].Message)
	assert.Equal(t, logrus.Fields{
		"component": "gateway-client",
		"url":       "http://localhost/x",
		"retry":     2,
	}, entries[0].Data)

	assert.Contains(t, entries[1].Data, "dangling")
	assert.Nil(t, entries[1].Data["dangling"])
}

func TestFormatter(t *testing.T) {
	assert.IsType(t, &logrus.JSONFormatter{}, formatter("JSON"))
	assert.IsType(t, &logrus.TextFormatter{}, formatter("text"))
	assert.IsType(t, &logrus.TextFormatter{}, formatter("unknown"))
}

func TestComponentLogger(t *testing.T) {
	entry := ComponentLogger("cache")
	assert.Equal(t, "cache", entry.Data["component"])
	assert.Same(t, GetLogger(), entry.Logger)
}
