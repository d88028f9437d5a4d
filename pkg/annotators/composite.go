package annotators

import (
	"context"
	"errors"
	"fmt"

	"github.com/getzep/nlp-annotator-api/pkg/models"
)

var _ models.Annotator = &Composite{}

// Composite is an annotator assembled from per-name entity, relationship and property
// sources. Sources are kept in registration order, which is the order of the declared names.
type Composite struct {
	key      models.AnnotatorKey
	supports []models.ObjectType

	entityNames       []string
	relationshipNames []string
	propertyNames     []string

	entities      map[string]EntitySource
	relationships map[string]RelationshipSource
	properties    map[string]PropertySource

	labels models.Labels
}

// CompositeOption adds sources to a Composite under construction.
type CompositeOption func(*Composite)

func WithEntitySources(sources ...EntitySource) CompositeOption {
	return func(c *Composite) {
		for _, s := range sources {
			if _, ok := c.entities[s.Key()]; !ok {
				c.entityNames = append(c.entityNames, s.Key())
			}
			c.entities[s.Key()] = s
		}
	}
}

func WithRelationshipSources(sources ...RelationshipSource) CompositeOption {
	return func(c *Composite) {
		for _, s := range sources {
			if _, ok := c.relationships[s.Key()]; !ok {
				c.relationshipNames = append(c.relationshipNames, s.Key())
			}
			c.relationships[s.Key()] = s
		}
	}
}

func WithPropertySources(sources ...PropertySource) CompositeOption {
	return func(c *Composite) {
		for _, s := range sources {
			if _, ok := c.properties[s.Key()]; !ok {
				c.propertyNames = append(c.propertyNames, s.Key())
			}
			c.properties[s.Key()] = s
		}
	}
}

// NewComposite builds a Composite. The labels are derived from the sources once, here.
func NewComposite(
	key models.AnnotatorKey,
	supports []models.ObjectType,
	opts ...CompositeOption,
) *Composite {
	c := &Composite{
		key:               key,
		supports:          supports,
		entityNames:       []string{},
		relationshipNames: []string{},
		propertyNames:     []string{},
		entities:          map[string]EntitySource{},
		relationships:     map[string]RelationshipSource{},
		properties:        map[string]PropertySource{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.labels = c.generateLabels()
	return c
}

func (c *Composite) generateLabels() models.Labels {
	labels := models.Labels{
		Entities:      make([]models.EntityLabel, 0, len(c.entityNames)),
		Relationships: make([]models.RelationshipLabel, 0, len(c.relationshipNames)),
		Properties:    make([]models.PropertyLabel, 0, len(c.propertyNames)),
	}
	for _, name := range c.entityNames {
		labels.Entities = append(labels.Entities, models.EntityLabel{
			Key:         name,
			Description: c.entities[name].Description(),
		})
	}
	for _, name := range c.relationshipNames {
		s := c.relationships[name]
		labels.Relationships = append(labels.Relationships, models.RelationshipLabel{
			Key:         name,
			Description: s.Description(),
			Columns:     s.Columns(),
		})
	}
	for _, name := range c.propertyNames {
		labels.Properties = append(labels.Properties, models.PropertyLabel{
			Key:         name,
			Description: c.properties[name].Description(),
		})
	}
	return labels
}

func (c *Composite) Key() models.AnnotatorKey                 { return c.key }
func (c *Composite) SupportedObjectTypes() []models.ObjectType { return c.supports }
func (c *Composite) EntityNames() []string                     { return c.entityNames }
func (c *Composite) RelationshipNames() []string               { return c.relationshipNames }
func (c *Composite) PropertyNames() []string                   { return c.propertyNames }
func (c *Composite) Labels() models.Labels                     { return c.labels }

func (c *Composite) AnnotateEntities(
	ctx context.Context,
	objectType models.ObjectType,
	items []models.Item,
	names models.Names,
) []models.EntityMap {
	desired := names.Resolve(c.entityNames)
	results := emptyEntityMaps(len(items))

	for i, item := range items {
		if cancelled(ctx) {
			break
		}
		entities, err := contain(func() ([]models.Entity, error) {
			return c.annotateItem(objectType, item, desired)
		})
		if err != nil {
			logItemError(c.key, objectType, item, err)
			entities = nil
		}
		results[i] = groupEntities(entities, desired)
	}

	return results
}

func (c *Composite) annotateItem(
	objectType models.ObjectType,
	item models.Item,
	desired []string,
) ([]models.Entity, error) {
	switch objectType {
	case models.ObjectTypeText:
		return c.annotateText(item.Text, desired)
	case models.ObjectTypeTable:
		return annotateTable(item.Table, func(text string) ([]models.Entity, error) {
			return c.annotateText(text, desired)
		})
	default:
		return nil, fmt.Errorf("object type %q is not supported by %s", objectType, c.key)
	}
}

func (c *Composite) annotateText(text string, desired []string) ([]models.Entity, error) {
	var matched []models.Entity
	var errs []error
	for _, name := range desired {
		entities, err := c.entities[name].AnnotateText(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		matched = append(matched, entities...)
	}
	return matched, errors.Join(errs...)
}

func (c *Composite) AnnotateRelationships(
	ctx context.Context,
	texts []string,
	entities []models.EntityMap,
	names models.Names,
) []models.RelationshipMap {
	desired := names.Resolve(c.relationshipNames)
	results := emptyRelationshipMaps(len(texts))

	for i, text := range texts {
		if cancelled(ctx) {
			break
		}
		entityMap := entityMapAt(entities, i)
		result, err := contain(func() (models.RelationshipMap, error) {
			result := make(models.RelationshipMap, len(desired))
			for _, name := range desired {
				rel, err := c.relationships[name].AnnotateText(text, entityMap)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				result[name] = rel
			}
			return result, nil
		})
		if err != nil {
			logItemError(c.key, models.ObjectTypeText, text, err)
			continue
		}
		results[i] = result
	}

	return results
}

func (c *Composite) AnnotateProperties(
	ctx context.Context,
	texts []string,
	_ []models.EntityMap,
	names models.Names,
) []models.PropertyMap {
	desired := names.Resolve(c.propertyNames)
	results := emptyPropertyMaps(len(texts))

	for i, text := range texts {
		if cancelled(ctx) {
			break
		}
		result, err := contain(func() (models.PropertyMap, error) {
			result := make(models.PropertyMap, len(desired))
			for _, name := range desired {
				prop, err := c.properties[name].AnnotateText(text)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				result[name] = prop
			}
			return result, nil
		})
		if err != nil {
			logItemError(c.key, models.ObjectTypeText, text, err)
			continue
		}
		results[i] = result
	}

	return results
}
