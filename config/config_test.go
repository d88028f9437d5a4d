package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
log:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, int64(DefaultMaxRequestSize), cfg.Server.MaxRequestSize)
	assert.Equal(t, DefaultCacheTTL, cfg.RedisCache.TTL)
	assert.Equal(t, DefaultDeadlineSkew, cfg.RedisCache.DeadlineSkew)
	assert.Equal(t, DefaultRetryDelay, cfg.HealthAnnotator.RetryDelay)
	assert.Equal(t, DefaultMaxAttempts, cfg.HealthAnnotator.MaxAttempts)
	assert.Contains(t, cfg.HealthAnnotator.Concepts, ConceptConfig{
		Type:        "icd10Code",
		Description: "ICD-10 codes of the matched concepts",
	})
}

func TestLoadConfigConceptsReplaceDefaults(t *testing.T) {
	path := writeConfig(t, `
health_annotator:
  concepts:
    - type: umls.Virus
      description: Viruses
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []ConceptConfig{{Type: "umls.Virus", Description: "Viruses"}}, cfg.HealthAnnotator.Concepts)
}

func TestLoadConfigDurations(t *testing.T) {
	path := writeConfig(t, `
redis_cache:
  url: redis://localhost:6379/0
  ttl: 30m
health_annotator:
  retry_delay: 250ms
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.RedisCache.TTL)
	assert.Equal(t, 250*time.Millisecond, cfg.HealthAnnotator.RetryDelay)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisCache.URL)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("NLP_API_HEALTH_ANNOTATOR_API_KEY", "secret-key")
	path := writeConfig(t, "log:\n  level: info\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.HealthAnnotator.APIKey)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"health annotator without url", "health_annotator:\n  enabled: true\n  flow_name: my_flow\n"},
		{"jwt auth without secret", "auth:\n  required: true\n"},
		{"unknown log format", "log:\n  format: xml\n"},
		{"port out of range", "server:\n  port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
