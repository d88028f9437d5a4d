package annotators

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/getzep/nlp-annotator-api/config"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

// Span is a labelled region of a text, in byte offsets.
type Span struct {
	Label string
	Start int
	End   int
}

// SpanTagger labels spans in a batch of texts. Labels returns every label the tagger can
// produce, already normalized.
type SpanTagger interface {
	Labels() []string
	Tag(texts []string) ([][]Span, error)
	Close() error
}

var _ models.Annotator = &PipelineAnnotator{}

// PipelineAnnotator exposes a token classification model as an entity annotator. Entity
// names are the model labels, lowercased.
type PipelineAnnotator struct {
	*Composite
	tagger SpanTagger
}

func NewPipelineAnnotator(key models.AnnotatorKey, tagger SpanTagger) *PipelineAnnotator {
	labels := tagger.Labels()
	sources := make([]EntitySource, 0, len(labels))
	for _, label := range labels {
		sources = append(sources, &pipelineEntitySource{label: label})
	}
	return &PipelineAnnotator{
		Composite: NewComposite(
			key,
			[]models.ObjectType{models.ObjectTypeText, models.ObjectTypeTable},
			WithEntitySources(sources...),
		),
		tagger: tagger,
	}
}

// AnnotateEntities runs the model once per item and groups the spans by label.
func (a *PipelineAnnotator) AnnotateEntities(
	ctx context.Context,
	objectType models.ObjectType,
	items []models.Item,
	names models.Names,
) []models.EntityMap {
	desired := names.Resolve(a.EntityNames())
	results := emptyEntityMaps(len(items))
	if len(desired) == 0 {
		for i := range results {
			results[i] = groupEntities(nil, desired)
		}
		return results
	}

	for i, item := range items {
		if cancelled(ctx) {
			break
		}
		entities, err := contain(func() ([]models.Entity, error) {
			switch objectType {
			case models.ObjectTypeText:
				return a.tagText(item.Text)
			case models.ObjectTypeTable:
				return annotateTable(item.Table, a.tagText)
			default:
				return nil, fmt.Errorf("object type %q is not supported by %s", objectType, a.Key())
			}
		})
		if err != nil {
			logItemError(a.Key(), objectType, item, err)
			entities = nil
		}
		results[i] = groupEntities(entities, desired)
	}

	return results
}

func (a *PipelineAnnotator) tagText(text string) ([]models.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	spans, err := a.tagger.Tag([]string{text})
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return nil, nil
	}
	entities := make([]models.Entity, 0, len(spans[0]))
	for _, span := range spans[0] {
		if span.Start < 0 || span.End > len(text) || span.Start >= span.End {
			continue
		}
		original := text[span.Start:span.End]
		start := utf8.RuneCountInString(text[:span.Start])
		entities = append(entities, models.Entity{
			Type:     span.Label,
			Match:    strings.TrimSpace(original),
			Original: original,
			Range:    [2]int{start, start + utf8.RuneCountInString(original)},
		})
	}
	return entities, nil
}

func (a *PipelineAnnotator) Close() error {
	return a.tagger.Close()
}

// pipelineEntitySource only carries the label; tagging happens once per item in
// PipelineAnnotator.AnnotateEntities.
type pipelineEntitySource struct {
	label string
}

func (s *pipelineEntitySource) Key() string { return s.label }

func (s *pipelineEntitySource) Description() string {
	return fmt.Sprintf("Entities labelled %q by the model", s.label)
}

func (s *pipelineEntitySource) AnnotateText(string) ([]models.Entity, error) {
	return nil, nil
}

var _ SpanTagger = &HugotTagger{}

// HugotTagger runs an ONNX token classification model through hugot.
type HugotTagger struct {
	session  *hugot.Session
	pipeline *pipelines.TokenClassificationPipeline
	labels   []string
}

func NewHugotTagger(cfg config.PipelineConfig) (*HugotTagger, error) {
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.TokenClassificationConfig{
		ModelPath: cfg.ModelPath,
		Name:      cfg.Name,
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf(
				"failed to create token classification pipeline: %w (cleanup error: %v)",
				err,
				destroyErr,
			)
		}
		return nil, fmt.Errorf("failed to create token classification pipeline: %w", err)
	}

	var labels []string
	for _, label := range pipeline.IDLabelMap {
		normalized := normalizeLabel(label)
		if normalized == "o" || slices.Contains(labels, normalized) {
			continue
		}
		labels = append(labels, normalized)
	}
	slices.Sort(labels)

	return &HugotTagger{session: session, pipeline: pipeline, labels: labels}, nil
}

func (t *HugotTagger) Labels() []string {
	return t.labels
}

func (t *HugotTagger) Tag(texts []string) ([][]Span, error) {
	output, err := t.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to run token classification: %w", err)
	}
	spans := make([][]Span, len(output.Entities))
	for i, entities := range output.Entities {
		for _, e := range entities {
			spans[i] = append(spans[i], Span{
				Label: normalizeLabel(e.Entity),
				Start: int(e.Start),
				End:   int(e.End),
			})
		}
	}
	return spans, nil
}

func (t *HugotTagger) Close() error {
	return t.session.Destroy()
}

// normalizeLabel strips BIO prefixes and lowercases the label.
func normalizeLabel(label string) string {
	label = strings.TrimPrefix(label, "B-")
	label = strings.TrimPrefix(label, "I-")
	return strings.ToLower(label)
}
