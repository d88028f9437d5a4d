package annotators

import (
	"fmt"

	"github.com/getzep/nlp-annotator-api/pkg/models"
)

const (
	cooccurrenceWeight = 1.0
	cooccurrenceSource = "entities"
)

var _ RelationshipSource = &CooccurrenceRelationshipAnnotator{}

// CooccurrenceRelationshipAnnotator relates every entity of one type to every entity of
// another type found in the same text.
type CooccurrenceRelationshipAnnotator struct {
	left  string
	right string
}

func NewCooccurrenceRelationshipAnnotator(left, right string) *CooccurrenceRelationshipAnnotator {
	return &CooccurrenceRelationshipAnnotator{left: left, right: right}
}

func (a *CooccurrenceRelationshipAnnotator) Key() string {
	return fmt.Sprintf("%s-to-%s", a.left, a.right)
}

func (a *CooccurrenceRelationshipAnnotator) Description() string {
	return fmt.Sprintf("Pairs of %s and %s mentioned in the same text", a.left, a.right)
}

func (a *CooccurrenceRelationshipAnnotator) Columns() []models.RelationshipColumn {
	return []models.RelationshipColumn{
		{Key: a.left, Entities: []string{a.left}},
		{Key: a.right, Entities: []string{a.right}},
	}
}

func (a *CooccurrenceRelationshipAnnotator) AnnotateText(
	_ string,
	entities models.EntityMap,
) (models.Relationship, error) {
	lefts := entities[a.left]
	rights := entities[a.right]

	data := make([][]any, 0, len(lefts)*len(rights))
	for i := range lefts {
		for j := range rights {
			data = append(data, []any{
				fmt.Sprintf("%s.%d", a.left, i),
				fmt.Sprintf("%s.%d", a.right, j),
				cooccurrenceWeight,
				cooccurrenceSource,
			})
		}
	}

	return models.Relationship{
		Header: []string{a.left, a.right, "weight", "source"},
		Data:   data,
	}, nil
}
