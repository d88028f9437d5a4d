package annotators

import (
	"context"

	"github.com/getzep/nlp-annotator-api/config"
	"github.com/getzep/nlp-annotator-api/pkg/models"
	"github.com/getzep/nlp-annotator-api/pkg/remote"
)

var _ models.Annotator = &HealthConceptAnnotator{}

// HealthConceptAnnotator proxies entity requests to the remote concept annotation API.
// It has no relationships or properties.
type HealthConceptAnnotator struct {
	client      *remote.Client
	entityNames []string
	labels      models.Labels
}

// NewHealthConceptAnnotator builds the annotator from the configured concepts. Entity
// names are the kebab-cased concept types.
func NewHealthConceptAnnotator(
	cfg config.HealthAnnotatorConfig,
	opts ...remote.ClientOption,
) *HealthConceptAnnotator {
	entityNames := make([]string, 0, len(cfg.Concepts))
	labels := models.Labels{
		Entities:      make([]models.EntityLabel, 0, len(cfg.Concepts)),
		Relationships: []models.RelationshipLabel{},
		Properties:    []models.PropertyLabel{},
	}
	for _, c := range cfg.Concepts {
		name := remote.KebabCase(c.Type)
		entityNames = append(entityNames, name)
		labels.Entities = append(labels.Entities, models.EntityLabel{
			Key:         name,
			Description: c.Description,
		})
	}

	return &HealthConceptAnnotator{
		client:      remote.NewClient(cfg, entityNames, opts...),
		entityNames: entityNames,
		labels:      labels,
	}
}

func (a *HealthConceptAnnotator) Key() models.AnnotatorKey {
	return models.WatsonHealthAnnotator
}

func (a *HealthConceptAnnotator) SupportedObjectTypes() []models.ObjectType {
	return []models.ObjectType{models.ObjectTypeText}
}

func (a *HealthConceptAnnotator) EntityNames() []string       { return a.entityNames }
func (a *HealthConceptAnnotator) RelationshipNames() []string { return []string{} }
func (a *HealthConceptAnnotator) PropertyNames() []string     { return []string{} }
func (a *HealthConceptAnnotator) Labels() models.Labels       { return a.labels }

func (a *HealthConceptAnnotator) AnnotateEntities(
	ctx context.Context,
	objectType models.ObjectType,
	items []models.Item,
	names models.Names,
) []models.EntityMap {
	if objectType != models.ObjectTypeText {
		return emptyEntityMaps(len(items))
	}
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}
	return a.client.AnnotateEntities(ctx, texts, names)
}

func (a *HealthConceptAnnotator) AnnotateRelationships(
	_ context.Context,
	texts []string,
	_ []models.EntityMap,
	_ models.Names,
) []models.RelationshipMap {
	return emptyRelationshipMaps(len(texts))
}

func (a *HealthConceptAnnotator) AnnotateProperties(
	_ context.Context,
	texts []string,
	_ []models.EntityMap,
	_ models.Names,
) []models.PropertyMap {
	return emptyPropertyMaps(len(texts))
}
