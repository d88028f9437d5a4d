package config

import (
	"encoding/json"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	schemaJSON, err := JSONSchema()
	require.NoError(t, err)

	schema := &jsonschema.Schema{}
	require.NoError(t, schema.UnmarshalJSON(schemaJSON))
	assert.Equal(t, "nlp-annotator-api configuration", schema.Title)

	var raw struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(schemaJSON, &raw))
	for _, section := range []string{
		"server", "log", "auth", "health_annotator", "pipeline", "redis_cache", "metrics", "tracing",
	} {
		assert.Contains(t, raw.Properties, section)
	}
}
