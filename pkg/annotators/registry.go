package annotators

import (
	"fmt"
	"io"

	"github.com/getzep/nlp-annotator-api/config"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

// NewRegistry builds every annotator enabled by cfg. The returned closers release model
// sessions and must be closed on shutdown.
func NewRegistry(cfg *config.Config) (*models.Registry, []io.Closer, error) {
	simple, err := NewSimpleTextGeographyAnnotator()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create geography annotator: %w", err)
	}
	table, err := NewTextTableGeographyAnnotator()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create table geography annotator: %w", err)
	}

	list := []models.Annotator{simple, table, NewSimpleTextClassifier()}
	var closers []io.Closer

	if cfg.HealthAnnotator.Enabled {
		list = append(list, NewHealthConceptAnnotator(cfg.HealthAnnotator))
		log.WithField("url", cfg.HealthAnnotator.APIURL).Info("health concept annotator enabled")
	}

	if cfg.Pipeline.Enabled {
		tagger, err := NewHugotTagger(cfg.Pipeline)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pipeline annotator: %w", err)
		}
		pipeline := NewPipelineAnnotator(models.PipelineBiomedAnnotator, tagger)
		list = append(list, pipeline)
		closers = append(closers, pipeline)
		log.WithField("labels", tagger.Labels()).Info("pipeline annotator enabled")
	}

	return models.NewRegistry(list...), closers, nil
}
