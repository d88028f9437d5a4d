package controller

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getzep/nlp-annotator-api/config"
	"github.com/getzep/nlp-annotator-api/pkg/annotators"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

type fakeRecorder struct {
	operations []string
	bad        int
}

func (r *fakeRecorder) RecordOperation(operation, annotator string, _ time.Duration) {
	r.operations = append(r.operations, operation+"."+annotator)
}

func (r *fakeRecorder) RecordBadAnnotator() {
	r.bad++
}

func newTestController(t *testing.T) (*Controller, *fakeRecorder) {
	t.Helper()
	registry, _, err := annotators.NewRegistry(config.NewDefaultConfig())
	require.NoError(t, err)
	recorder := &fakeRecorder{}
	appState := &models.AppState{
		Annotators: registry,
		Metadata:   models.AnnotatorMetadata{Name: "test", Version: "1.0.0"},
	}
	return NewController(appState, recorder), recorder
}

func run(t *testing.T, c *Controller, name, body string) (map[string]any, error) {
	t.Helper()
	annotator, err := c.Resolve(name)
	require.NoError(t, err)
	out, err := c.Run(context.Background(), annotator, []byte(body))
	if err != nil {
		return nil, err
	}
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	return decoded, nil
}

func TestResolveUnknownAnnotator(t *testing.T) {
	c, recorder := newTestController(t)
	_, err := c.Resolve("NoSuchAnnotator")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 1, recorder.bad)
}

func TestFindEntities(t *testing.T) {
	c, recorder := newTestController(t)

	response, err := run(t, c, "SimpleTextGeographyAnnotator", `{
		"find_entities": {
			"object_type": "text",
			"texts": ["Bern is the capital of Switzerland", ""],
			"entity_names": null
		}
	}`)
	require.NoError(t, err)

	entities := response["entities"].([]any)
	require.Len(t, entities, 2)
	first := entities[0].(map[string]any)
	cities := first["cities"].([]any)
	require.Len(t, cities, 1)
	assert.Equal(t, "Bern", cities[0].(map[string]any)["match"])
	assert.Equal(t, []any{0.0, 4.0}, cities[0].(map[string]any)["range"])
	assert.NotContains(t, cities[0].(map[string]any), "cell_type")

	assert.Equal(t, []string{"find_entities.SimpleTextGeographyAnnotator"}, recorder.operations)
}

func TestFindEntitiesDefaultsToText(t *testing.T) {
	c, _ := newTestController(t)
	response, err := run(t, c, "SimpleTextGeographyAnnotator", `{"find_entities": {"texts": ["Paris"]}}`)
	require.NoError(t, err)
	assert.Len(t, response["entities"], 1)
}

func TestFindEntitiesInTables(t *testing.T) {
	c, _ := newTestController(t)

	response, err := run(t, c, "TextTableGeographyAnnotator", `{
		"find_entities": {
			"object_type": "table",
			"tables": [[[{"text": "Amsterdam", "type": "body", "spans": [[1, 0]]}]]],
			"entity_names": ["cities"]
		}
	}`)
	require.NoError(t, err)

	entities := response["entities"].([]any)
	require.Len(t, entities, 1)
	cities := entities[0].(map[string]any)["cities"].([]any)
	require.Len(t, cities, 1)
	city := cities[0].(map[string]any)
	assert.Equal(t, "body", city["cell_type"])
	assert.Equal(t, []any{[]any{1.0, 0.0}}, city["coords"])
	assert.Equal(t, "table", city["source_field_type"])
}

func TestValidation(t *testing.T) {
	c, _ := newTestController(t)

	tests := []struct {
		name      string
		annotator string
		body      string
		detail    string
	}{
		{
			name:      "invalid object type",
			annotator: "SimpleTextGeographyAnnotator",
			body:      `{"find_entities": {"object_type": "video", "texts": []}}`,
			detail:    "Invalid object type. Expected one of: text, image, table",
		},
		{
			name:      "unsupported object type",
			annotator: "SimpleTextGeographyAnnotator",
			body:      `{"find_entities": {"object_type": "table", "tables": []}}`,
			detail:    "Unsupported object type for this annotator. Supports: text",
		},
		{
			name:      "missing texts",
			annotator: "SimpleTextGeographyAnnotator",
			body:      `{"find_entities": {"object_type": "text"}}`,
			detail:    "Invalid input: Missing 'texts'",
		},
		{
			name:      "texts not a list",
			annotator: "SimpleTextGeographyAnnotator",
			body:      `{"find_entities": {"texts": "Bern"}}`,
			detail:    "Invalid input: Missing 'texts'",
		},
		{
			name:      "missing tables",
			annotator: "TextTableGeographyAnnotator",
			body:      `{"find_entities": {"object_type": "table", "tables": null}}`,
			detail:    "Invalid input: Missing 'tables'",
		},
		{
			name:      "no operation",
			annotator: "SimpleTextGeographyAnnotator",
			body:      `{}`,
		},
		{
			name:      "two operations",
			annotator: "SimpleTextGeographyAnnotator",
			body:      `{"find_entities": {"texts": []}, "features": {}}`,
		},
		{
			name:      "malformed body",
			annotator: "SimpleTextGeographyAnnotator",
			body:      `{"find_entities": `,
		},
		{
			name:      "bad cell spans",
			annotator: "TextTableGeographyAnnotator",
			body:      `{"find_entities": {"object_type": "table", "tables": [[[{"text": "x", "type": "body", "spans": [[1]]}]]]}}`,
		},
		{
			name:      "relationships on tables",
			annotator: "TextTableGeographyAnnotator",
			body:      `{"find_relationships": {"object_type": "table", "tables": []}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, c, tt.annotator, tt.body)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrBadRequest)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, err.Error())
			}
		})
	}
}

func TestFindRelationships(t *testing.T) {
	c, _ := newTestController(t)

	response, err := run(t, c, "SimpleTextGeographyAnnotator", `{
		"find_relationships": {
			"texts": ["Bern, Switzerland", "nothing"],
			"entities": [{
				"cities": [{"type": "cities", "match": "Bern", "original": "Bern", "range": [0, 4]}],
				"countries": [{"type": "countries", "match": "Switzerland", "original": "Switzerland", "range": [6, 17]}]
			}],
			"relationship_names": ["cities-to-countries"]
		}
	}`)
	require.NoError(t, err)

	relationships := response["relationships"].([]any)
	require.Len(t, relationships, 2)
	rel := relationships[0].(map[string]any)["cities-to-countries"].(map[string]any)
	assert.Equal(t, []any{"cities", "countries", "weight", "source"}, rel["header"])
	assert.Equal(t, []any{[]any{"cities.0", "countries.0", 1.0, "entities"}}, rel["data"])

	empty := relationships[1].(map[string]any)["cities-to-countries"].(map[string]any)
	assert.Equal(t, []any{}, empty["data"])
}

func TestFindProperties(t *testing.T) {
	c, _ := newTestController(t)

	response, err := run(t, c, "SimpleTextClassifier", `{
		"find_properties": {"texts": ["tiny"], "property_names": null}
	}`)
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"length": map[string]any{"value": "short"}},
	}, response["properties"])
}

func TestFeatures(t *testing.T) {
	c, _ := newTestController(t)

	t.Run("nothing requested", func(t *testing.T) {
		response, err := run(t, c, "SimpleTextGeographyAnnotator", `{"features": {}}`)
		require.NoError(t, err)
		assert.Equal(t, []any{}, response["entity_names"])
		assert.Equal(t, []any{}, response["relationship_names"])
		assert.Equal(t, []any{}, response["property_names"])
		assert.Equal(t, []any{}, response["labels"])
		assert.Equal(t, []any{"text"}, response["supported_object_types"])
		assert.Equal(t, "test", response["metadata"].(map[string]any)["name"])
	})

	t.Run("everything requested", func(t *testing.T) {
		response, err := run(t, c, "TextTableGeographyAnnotator", `{
			"features": {"entity_names": true, "relationship_names": true, "property_names": true, "labels": true}
		}`)
		require.NoError(t, err)
		assert.Equal(t, []any{"cities", "countries", "provincies"}, response["entity_names"])
		assert.Len(t, response["relationship_names"], 3)
		assert.Equal(t, []any{}, response["property_names"])
		assert.Equal(t, []any{"text", "table"}, response["supported_object_types"])

		labels := response["labels"].(map[string]any)
		assert.Len(t, labels["entities"], 3)
		assert.Len(t, labels["relationships"], 3)
	})
}
