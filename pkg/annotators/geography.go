package annotators

import (
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

var geographyDictionaries = []string{"cities", "countries", "provincies"}

var geographyRelationships = [][2]string{
	{"cities", "countries"},
	{"cities", "provincies"},
	{"provincies", "countries"},
}

func geographyOptions() ([]CompositeOption, error) {
	entities := make([]EntitySource, 0, len(geographyDictionaries))
	for _, name := range geographyDictionaries {
		d, err := LoadDictionary(name)
		if err != nil {
			return nil, err
		}
		entities = append(entities, d)
	}

	relationships := make([]RelationshipSource, 0, len(geographyRelationships))
	for _, pair := range geographyRelationships {
		relationships = append(relationships, NewCooccurrenceRelationshipAnnotator(pair[0], pair[1]))
	}

	return []CompositeOption{
		WithEntitySources(entities...),
		WithRelationshipSources(relationships...),
	}, nil
}

// NewSimpleTextGeographyAnnotator finds cities, countries and provinces in texts and
// relates them to each other.
func NewSimpleTextGeographyAnnotator() (*Composite, error) {
	opts, err := geographyOptions()
	if err != nil {
		return nil, err
	}
	return NewComposite(
		models.SimpleTextGeographyAnnotator,
		[]models.ObjectType{models.ObjectTypeText},
		opts...,
	), nil
}

// NewTextTableGeographyAnnotator is the geography annotator that also accepts tables.
func NewTextTableGeographyAnnotator() (*Composite, error) {
	opts, err := geographyOptions()
	if err != nil {
		return nil, err
	}
	return NewComposite(
		models.TextTableGeographyAnnotator,
		[]models.ObjectType{models.ObjectTypeText, models.ObjectTypeTable},
		opts...,
	), nil
}

// NewSimpleTextClassifier only provides properties.
func NewSimpleTextClassifier() *Composite {
	return NewComposite(
		models.SimpleTextClassifier,
		[]models.ObjectType{models.ObjectTypeText},
		WithPropertySources(TextLengthAnnotator{}),
	)
}
