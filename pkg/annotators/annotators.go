// Package annotators contains the annotation backends exposed by the API and the
// building blocks they are composed of.
package annotators

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/getzep/nlp-annotator-api/internal"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

var log = internal.GetLogger()

// EntitySource finds the entities of a single entity name in a text.
type EntitySource interface {
	Key() string
	Description() string
	AnnotateText(text string) ([]models.Entity, error)
}

// RelationshipSource derives one relationship from a text and the entities found in it.
type RelationshipSource interface {
	Key() string
	Description() string
	Columns() []models.RelationshipColumn
	AnnotateText(text string, entities models.EntityMap) (models.Relationship, error)
}

// PropertySource classifies a text.
type PropertySource interface {
	Key() string
	Description() string
	AnnotateText(text string) (models.Property, error)
}

// contain runs fn, turning a panic into an error so that one bad item cannot abort a batch.
func contain[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("annotator panic: %v", r)
		}
	}()
	return fn()
}

// logItemError records a per-item failure together with the offending content.
func logItemError(key models.AnnotatorKey, objectType models.ObjectType, item any, err error) {
	log.WithFields(logrus.Fields{
		"annotator":   key,
		"object_type": objectType,
		"content":     describeItem(item),
	}).WithError(err).Error("error in annotator, returning an empty result for this item")
}

func describeItem(item any) string {
	switch v := item.(type) {
	case string:
		return internal.TextPrefix(v, 200)
	case models.Item:
		if v.Type == models.ObjectTypeText {
			return internal.TextPrefix(v.Text, 200)
		}
		return internal.TextPrefix(fmt.Sprintf("%v", v.Table), 200)
	default:
		return internal.TextPrefix(fmt.Sprintf("%v", v), 200)
	}
}

// groupEntities builds the entity map for one item. Every desired name is present as a
// key, possibly with an empty list.
func groupEntities(entities []models.Entity, desired []string) models.EntityMap {
	entityMap := make(models.EntityMap, len(desired))
	for _, name := range desired {
		entityMap[name] = []models.Entity{}
	}
	for _, e := range entities {
		if list, ok := entityMap[e.Type]; ok {
			entityMap[e.Type] = append(list, e)
		}
	}
	return entityMap
}

// emptyEntityMaps returns n empty entity maps.
func emptyEntityMaps(n int) []models.EntityMap {
	results := make([]models.EntityMap, n)
	for i := range results {
		results[i] = models.EntityMap{}
	}
	return results
}

func emptyRelationshipMaps(n int) []models.RelationshipMap {
	results := make([]models.RelationshipMap, n)
	for i := range results {
		results[i] = models.RelationshipMap{}
	}
	return results
}

func emptyPropertyMaps(n int) []models.PropertyMap {
	results := make([]models.PropertyMap, n)
	for i := range results {
		results[i] = models.PropertyMap{}
	}
	return results
}

// entityMapAt returns the entity map paired with the i-th text, or an empty map when the
// caller sent fewer maps than texts.
func entityMapAt(entities []models.EntityMap, i int) models.EntityMap {
	if i < len(entities) && entities[i] != nil {
		return entities[i]
	}
	return models.EntityMap{}
}

// cancelled reports whether the batch should stop doing work. Remaining items keep their
// empty results so the output length is unchanged.
func cancelled(ctx context.Context) bool {
	return ctx.Err() != nil
}
