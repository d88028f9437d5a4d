// Package controller resolves annotators, validates annotation requests against their
// declared capabilities and shapes the response envelopes.
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/getzep/nlp-annotator-api/internal"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

var log = internal.GetLogger()

// Recorder receives operation metrics.
type Recorder interface {
	RecordOperation(operation, annotator string, duration time.Duration)
	RecordBadAnnotator()
}

type Controller struct {
	annotators *models.Registry
	metadata   models.AnnotatorMetadata
	recorder   Recorder
	validate   *validator.Validate
}

// NewController creates a controller over the annotators of appState. recorder may be nil.
func NewController(appState *models.AppState, recorder Recorder) *Controller {
	return &Controller{
		annotators: appState.Annotators,
		metadata:   appState.Metadata,
		recorder:   recorder,
		validate:   validator.New(),
	}
}

// Names lists the registered annotators.
func (c *Controller) Names() []string {
	return c.annotators.Names()
}

// Resolve returns the annotator registered under name, or a NotFoundError.
func (c *Controller) Resolve(name string) (models.Annotator, error) {
	a, err := c.annotators.Get(name)
	if err != nil {
		if c.recorder != nil {
			c.recorder.RecordBadAnnotator()
		}
		log.WithField("annotator", name).Debug("unknown annotator requested")
		return nil, err
	}
	return a, nil
}

// Run decodes an annotation request body, runs it against the annotator and returns the
// serialized response. Client errors are returned as BadRequestError.
func (c *Controller) Run(ctx context.Context, annotator models.Annotator, body []byte) ([]byte, error) {
	request, err := DecodeRequest(body)
	if err != nil {
		return nil, err
	}
	operation, err := Operation(request)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := c.Dispatch(ctx, annotator, operation, request)
	if err != nil {
		return nil, err
	}
	duration := time.Since(start)
	if c.recorder != nil {
		c.recorder.RecordOperation(string(operation), annotator.Key().String(), duration)
	}
	log.WithFields(logrus.Fields{
		"annotator": annotator.Key(),
		"operation": operation,
		"duration":  duration,
	}).Debug("annotator operation finished")

	encoded, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return encoded, nil
}

// DecodeRequest parses a request body.
func DecodeRequest(body []byte) (*models.AnnotateRequest, error) {
	var request models.AnnotateRequest
	decoder := json.NewDecoder(bytes.NewReader(body))
	if err := decoder.Decode(&request); err != nil {
		return nil, models.NewBadRequestError("Invalid request body: %v", err)
	}
	return &request, nil
}

// Operation returns the single operation of a request.
func Operation(request *models.AnnotateRequest) (models.Operation, error) {
	operations := request.Operations()
	switch len(operations) {
	case 1:
		return operations[0], nil
	case 0:
		return "", models.NewBadRequestError(
			"Invalid input: Expected one of %s, %s, %s or %s",
			models.OperationFindEntities,
			models.OperationFindRelationships,
			models.OperationFindProperties,
			models.OperationFeatures,
		)
	default:
		return "", models.NewBadRequestError(
			"Invalid input: Expected exactly one operation, got %v",
			operations,
		)
	}
}

// Dispatch validates the payload of the operation and runs it.
func (c *Controller) Dispatch(
	ctx context.Context,
	annotator models.Annotator,
	operation models.Operation,
	request *models.AnnotateRequest,
) (any, error) {
	switch operation {
	case models.OperationFindEntities:
		return c.findEntities(ctx, annotator, request.FindEntities)
	case models.OperationFindRelationships:
		return c.findRelationships(ctx, annotator, request.FindRelationships)
	case models.OperationFindProperties:
		return c.findProperties(ctx, annotator, request.FindProperties)
	case models.OperationFeatures:
		return c.features(annotator, request.Features), nil
	default:
		return nil, models.NewBadRequestError("Invalid input: unknown operation %q", operation)
	}
}

func (c *Controller) findEntities(
	ctx context.Context,
	annotator models.Annotator,
	request *models.FindEntitiesRequest,
) (*models.EntitiesResponse, error) {
	objectType, items, err := c.Validate(request.ObjectPayload, annotator)
	if err != nil {
		return nil, err
	}
	entities := annotator.AnnotateEntities(ctx, objectType, items, request.EntityNames)
	return &models.EntitiesResponse{Entities: entities}, nil
}

func (c *Controller) findRelationships(
	ctx context.Context,
	annotator models.Annotator,
	request *models.FindRelationshipsRequest,
) (*models.RelationshipsResponse, error) {
	texts, err := c.validateTexts(request.ObjectPayload, annotator)
	if err != nil {
		return nil, err
	}
	relationships := annotator.AnnotateRelationships(
		ctx,
		texts,
		request.Entities,
		request.RelationshipNames,
	)
	return &models.RelationshipsResponse{Relationships: relationships}, nil
}

func (c *Controller) findProperties(
	ctx context.Context,
	annotator models.Annotator,
	request *models.FindPropertiesRequest,
) (*models.PropertiesResponse, error) {
	texts, err := c.validateTexts(request.ObjectPayload, annotator)
	if err != nil {
		return nil, err
	}
	properties := annotator.AnnotateProperties(ctx, texts, request.Entities, request.PropertyNames)
	return &models.PropertiesResponse{Properties: properties}, nil
}

// features reports the parts of the annotator's self-description selected by the request.
func (c *Controller) features(
	annotator models.Annotator,
	request *models.FeaturesRequest,
) *models.FeaturesResponse {
	response := &models.FeaturesResponse{
		EntityNames:          []string{},
		RelationshipNames:    []string{},
		PropertyNames:        []string{},
		SupportedObjectTypes: annotator.SupportedObjectTypes(),
		Labels:               []any{},
	}
	if request.EntityNames {
		response.EntityNames = annotator.EntityNames()
	}
	if request.RelationshipNames {
		response.RelationshipNames = annotator.RelationshipNames()
	}
	if request.PropertyNames {
		response.PropertyNames = annotator.PropertyNames()
	}
	if request.Labels {
		response.Labels = annotator.Labels()
	}
	if c.metadata.Name != "" {
		metadata := c.metadata
		response.Metadata = &metadata
	}
	return response
}
