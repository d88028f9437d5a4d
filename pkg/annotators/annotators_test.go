package annotators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getzep/nlp-annotator-api/config"
	"github.com/getzep/nlp-annotator-api/pkg/models"
	"github.com/getzep/nlp-annotator-api/pkg/testutils"
)

func newGeography(t *testing.T) *Composite {
	t.Helper()
	a, err := NewSimpleTextGeographyAnnotator()
	require.NoError(t, err)
	return a
}

func TestGeographyFindsCitiesAndCountries(t *testing.T) {
	a := newGeography(t)

	results := a.AnnotateEntities(
		context.Background(),
		models.ObjectTypeText,
		models.TextItems([]string{"Bern is the capital of Switzerland"}),
		nil,
	)
	require.Len(t, results, 1)

	assert.ElementsMatch(t, []string{"cities", "countries", "provincies"}, keys(results[0]))
	require.Len(t, results[0]["cities"], 1)
	assert.Equal(t, models.Entity{
		Type:     "cities",
		Match:    "Bern",
		Original: "Bern",
		Range:    [2]int{0, 4},
	}, results[0]["cities"][0])

	require.Len(t, results[0]["countries"], 1)
	assert.Equal(t, "Switzerland", results[0]["countries"][0].Match)
	assert.Equal(t, [2]int{23, 34}, results[0]["countries"][0].Range)
	assert.Empty(t, results[0]["provincies"])
}

func TestGeographyRequestedNames(t *testing.T) {
	a := newGeography(t)
	items := models.TextItems([]string{"Bern is the capital of Switzerland", ""})

	t.Run("explicitly empty names", func(t *testing.T) {
		results := a.AnnotateEntities(context.Background(), models.ObjectTypeText, items, models.Names{})
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Empty(t, r)
		}
	})

	t.Run("unsupported names are dropped", func(t *testing.T) {
		results := a.AnnotateEntities(
			context.Background(),
			models.ObjectTypeText,
			items,
			models.Names{"countries", "planets"},
		)
		require.Len(t, results, 2)
		assert.Equal(t, []string{"countries"}, keys(results[0]))
		assert.Equal(t, []string{"countries"}, keys(results[1]))
		assert.Empty(t, results[1]["countries"])
	})
}

func TestDictionaryMatching(t *testing.T) {
	d, err := NewDictionaryEntityAnnotator(Dictionary{
		Key:     "cities",
		Entries: []string{"York", "New York", "Zürich"},
	})
	require.NoError(t, err)

	entities, err := d.AnnotateText("from NEW YORK to zürich via york")
	require.NoError(t, err)
	require.Len(t, entities, 3)

	assert.Equal(t, "New York", entities[0].Match)
	assert.Equal(t, "NEW YORK", entities[0].Original)
	assert.Equal(t, [2]int{5, 13}, entities[0].Range)

	assert.Equal(t, "Zürich", entities[1].Match)
	assert.Equal(t, [2]int{17, 23}, entities[1].Range)

	assert.Equal(t, "York", entities[2].Match)
	assert.Equal(t, [2]int{28, 32}, entities[2].Range)
}

func TestDictionaryRequiresKey(t *testing.T) {
	_, err := NewDictionaryEntityAnnotator(Dictionary{Entries: []string{"x"}})
	assert.Error(t, err)
}

func TestTableEntities(t *testing.T) {
	a, err := NewTextTableGeographyAnnotator()
	require.NoError(t, err)

	table := models.Table{{
		{Text: "Amsterdam", Type: "body", Spans: [][]int{{1, 0}}},
	}}
	results := a.AnnotateEntities(
		context.Background(),
		models.ObjectTypeTable,
		[]models.Item{models.TableItem(table)},
		models.Names{"cities"},
	)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"cities"}, keys(results[0]))
	require.Len(t, results[0]["cities"], 1)

	e := results[0]["cities"][0]
	assert.Equal(t, "Amsterdam", e.Match)
	assert.Equal(t, [2]int{0, 9}, e.Range)
	assert.Equal(t, "body", e.CellType)
	assert.Equal(t, [][]int{{1, 0}}, e.Coords)
	assert.Equal(t, "data", e.Prov)
	assert.Equal(t, "data", e.SourceField)
	assert.Equal(t, "table", e.SourceFieldType)
}

func TestRelationships(t *testing.T) {
	a := newGeography(t)
	texts := []string{"Bern and Basel are in Switzerland", "nothing here"}
	entities := a.AnnotateEntities(context.Background(), models.ObjectTypeText, models.TextItems(texts), nil)

	results := a.AnnotateRelationships(
		context.Background(),
		texts,
		entities,
		models.Names{"cities-to-countries"},
	)
	require.Len(t, results, 2)

	rel := results[0]["cities-to-countries"]
	assert.Equal(t, []string{"cities", "countries", "weight", "source"}, rel.Header)
	assert.Equal(t, [][]any{
		{"cities.0", "countries.0", 1.0, "entities"},
		{"cities.1", "countries.0", 1.0, "entities"},
	}, rel.Data)

	empty := results[1]["cities-to-countries"]
	assert.NotNil(t, empty.Data)
	assert.Empty(t, empty.Data)
}

func TestRelationshipsWithMissingEntityMaps(t *testing.T) {
	a := newGeography(t)
	texts := []string{"Bern", "Basel", "Paris"}

	results := a.AnnotateRelationships(context.Background(), texts, nil, nil)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Len(t, r, 3)
	}
}

func TestTextLengthProperty(t *testing.T) {
	a := NewSimpleTextClassifier()
	texts := []string{
		"short text",
		strings.Repeat("a", 101),
		strings.Repeat("ü", 401),
		strings.Repeat("b", 100),
	}

	results := a.AnnotateProperties(context.Background(), texts, nil, nil)
	require.Len(t, results, 4)
	assert.Equal(t, models.Property{Value: "short"}, results[0]["length"])
	assert.Equal(t, models.Property{Value: "middle"}, results[1]["length"])
	assert.Equal(t, models.Property{Value: "long"}, results[2]["length"])
	assert.Equal(t, models.Property{Value: "short"}, results[3]["length"])

	none := a.AnnotateProperties(context.Background(), texts, nil, models.Names{})
	require.Len(t, none, 4)
	assert.Empty(t, none[0])
}

func TestLabels(t *testing.T) {
	a := newGeography(t)
	labels := a.Labels()

	require.Len(t, labels.Entities, 3)
	assert.Equal(t, "cities", labels.Entities[0].Key)
	assert.Equal(t, "Names of cities", labels.Entities[0].Description)

	require.Len(t, labels.Relationships, 3)
	assert.Equal(t, "cities-to-countries", labels.Relationships[0].Key)
	assert.Equal(t, []models.RelationshipColumn{
		{Key: "cities", Entities: []string{"cities"}},
		{Key: "countries", Entities: []string{"countries"}},
	}, labels.Relationships[0].Columns)

	assert.NotNil(t, labels.Properties)
	assert.Empty(t, labels.Properties)
}

type failingSource struct {
	panicOn string
	failOn  string
}

func (s failingSource) Key() string         { return "things" }
func (s failingSource) Description() string { return "Things" }

func (s failingSource) AnnotateText(text string) ([]models.Entity, error) {
	switch text {
	case s.panicOn:
		panic("boom")
	case s.failOn:
		return nil, errors.New("failed")
	}
	return []models.Entity{{Type: "things", Match: text, Original: text, Range: [2]int{0, len(text)}}}, nil
}

func TestPerItemFailuresAreContained(t *testing.T) {
	a := NewComposite(
		"Test",
		[]models.ObjectType{models.ObjectTypeText},
		WithEntitySources(failingSource{panicOn: "bad", failOn: "worse"}),
	)

	results := a.AnnotateEntities(
		context.Background(),
		models.ObjectTypeText,
		models.TextItems([]string{"ok", "bad", "worse", "fine"}),
		nil,
	)
	require.Len(t, results, 4)
	assert.Len(t, results[0]["things"], 1)
	assert.Equal(t, models.EntityMap{"things": {}}, results[1])
	assert.Equal(t, models.EntityMap{"things": {}}, results[2])
	assert.Len(t, results[3]["things"], 1)
}

func TestCancelledBatchKeepsLength(t *testing.T) {
	a := newGeography(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := a.AnnotateEntities(ctx, models.ObjectTypeText, models.TextItems([]string{"Bern", "Basel"}), nil)
	assert.Len(t, results, 2)
}

func TestGeneratedBatchAlignment(t *testing.T) {
	a := newGeography(t)
	texts := testutils.GenerateTexts(42, 50, 20)
	texts[10] = ""
	texts[20] = "Paris"

	entities := a.AnnotateEntities(context.Background(), models.ObjectTypeText, models.TextItems(texts), nil)
	require.Len(t, entities, len(texts))
	assert.Empty(t, entities[10]["cities"])
	assert.Len(t, entities[20]["cities"], 1)

	properties := NewSimpleTextClassifier().AnnotateProperties(context.Background(), texts, entities, nil)
	require.Len(t, properties, len(texts))
	for i, text := range texts {
		assert.Contains(t, []string{"short", "middle", "long"}, properties[i]["length"].Value, text)
	}
}

type fakeTagger struct {
	spans map[string][]Span
}

func (f *fakeTagger) Labels() []string { return []string{"chemical", "disease"} }
func (f *fakeTagger) Close() error     { return nil }

func (f *fakeTagger) Tag(texts []string) ([][]Span, error) {
	out := make([][]Span, len(texts))
	for i, text := range texts {
		out[i] = f.spans[text]
	}
	return out, nil
}

func TestPipelineAnnotator(t *testing.T) {
	tagger := &fakeTagger{spans: map[string][]Span{
		"Café aspirin for headache": {
			{Label: "chemical", Start: 6, End: 13},
			{Label: "disease", Start: 18, End: 26},
			{Label: "disease", Start: 18, End: 99},
		},
	}}
	a := NewPipelineAnnotator(models.PipelineBiomedAnnotator, tagger)
	assert.Equal(t, []string{"chemical", "disease"}, a.EntityNames())

	results := a.AnnotateEntities(
		context.Background(),
		models.ObjectTypeText,
		models.TextItems([]string{"Café aspirin for headache", ""}),
		models.Names{"chemical", "disease"},
	)
	require.Len(t, results, 2)

	require.Len(t, results[0]["chemical"], 1)
	assert.Equal(t, "aspirin", results[0]["chemical"][0].Original)
	assert.Equal(t, [2]int{5, 12}, results[0]["chemical"][0].Range)
	require.Len(t, results[0]["disease"], 1)
	assert.Equal(t, "headache", results[0]["disease"][0].Match)

	assert.Equal(t, models.EntityMap{"chemical": {}, "disease": {}}, results[1])
	assert.NoError(t, a.Close())
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "chemical", normalizeLabel("B-Chemical"))
	assert.Equal(t, "disease", normalizeLabel("I-DISEASE"))
	assert.Equal(t, "gene", normalizeLabel("gene"))
}

func TestHealthConceptAnnotatorLabels(t *testing.T) {
	cfg := config.NewDefaultConfig().HealthAnnotator
	a := NewHealthConceptAnnotator(cfg)

	assert.Equal(t, models.WatsonHealthAnnotator, a.Key())
	assert.Contains(t, a.EntityNames(), "umls-disease-or-syndrome")
	assert.Contains(t, a.EntityNames(), "icd10-code")
	assert.Len(t, a.Labels().Entities, len(cfg.Concepts))
	assert.Empty(t, a.RelationshipNames())

	results := a.AnnotateEntities(
		context.Background(),
		models.ObjectTypeText,
		models.TextItems([]string{"anything"}),
		models.Names{},
	)
	assert.Equal(t, []models.EntityMap{{}}, results)
}

func TestNewRegistry(t *testing.T) {
	cfg := config.NewDefaultConfig()
	registry, closers, err := NewRegistry(cfg)
	require.NoError(t, err)
	assert.Empty(t, closers)
	assert.Equal(t, []string{
		"SimpleTextGeographyAnnotator",
		"TextTableGeographyAnnotator",
		"SimpleTextClassifier",
	}, registry.Names())
}

func keys(m models.EntityMap) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
