// Package client is a Go client of the annotation API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getzep/nlp-annotator-api/config"
	"github.com/getzep/nlp-annotator-api/pkg/cache"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

// Client calls a running annotation API. Every POST carries a fresh transaction id and a
// deadline, so a retried request can be answered from the server cache.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

type Option func(*Client)

func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client for the API at baseURL, e.g. http://localhost:8000.
func NewClient(baseURL string, retryMax int, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: NewRetryableHTTPClient(retryMax, timeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-200 answer of the API.
type APIError struct {
	StatusCode int
	Problem    models.ProblemDetail
}

func (e *APIError) Error() string {
	if e.Problem.Detail != "" {
		return fmt.Sprintf("annotation API returned %d: %s", e.StatusCode, e.Problem.Detail)
	}
	return fmt.Sprintf("annotation API returned %d", e.StatusCode)
}

// Annotators lists the annotators of the API.
func (c *Client) Annotators(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, "/api/v1/annotators", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Features returns the full self-description of an annotator.
func (c *Client) Features(ctx context.Context, annotator string) (*models.FeaturesResponse, error) {
	request := models.AnnotateRequest{Features: &models.FeaturesRequest{
		EntityNames:       true,
		RelationshipNames: true,
		PropertyNames:     true,
		Labels:            true,
	}}
	var response models.FeaturesResponse
	if err := c.post(ctx, annotator, request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) FindEntities(
	ctx context.Context,
	annotator string,
	texts []string,
	names models.Names,
) ([]models.EntityMap, error) {
	payload, err := textPayload(texts)
	if err != nil {
		return nil, err
	}
	request := models.AnnotateRequest{FindEntities: &models.FindEntitiesRequest{
		ObjectPayload: payload,
		EntityNames:   names,
	}}
	var response models.EntitiesResponse
	if err := c.post(ctx, annotator, request, &response); err != nil {
		return nil, err
	}
	return response.Entities, nil
}

func (c *Client) FindRelationships(
	ctx context.Context,
	annotator string,
	texts []string,
	entities []models.EntityMap,
	names models.Names,
) ([]models.RelationshipMap, error) {
	payload, err := textPayload(texts)
	if err != nil {
		return nil, err
	}
	request := models.AnnotateRequest{FindRelationships: &models.FindRelationshipsRequest{
		ObjectPayload:     payload,
		Entities:          entities,
		RelationshipNames: names,
	}}
	var response models.RelationshipsResponse
	if err := c.post(ctx, annotator, request, &response); err != nil {
		return nil, err
	}
	return response.Relationships, nil
}

func (c *Client) FindProperties(
	ctx context.Context,
	annotator string,
	texts []string,
	names models.Names,
) ([]models.PropertyMap, error) {
	payload, err := textPayload(texts)
	if err != nil {
		return nil, err
	}
	request := models.AnnotateRequest{FindProperties: &models.FindPropertiesRequest{
		ObjectPayload: payload,
		PropertyNames: names,
	}}
	var response models.PropertiesResponse
	if err := c.post(ctx, annotator, request, &response); err != nil {
		return nil, err
	}
	return response.Properties, nil
}

func textPayload(texts []string) (models.ObjectPayload, error) {
	if texts == nil {
		texts = []string{}
	}
	raw, err := json.Marshal(texts)
	if err != nil {
		return models.ObjectPayload{}, fmt.Errorf("failed to encode texts: %w", err)
	}
	return models.ObjectPayload{ObjectType: models.ObjectTypeText, Texts: raw}, nil
}

func (c *Client) post(ctx context.Context, annotator string, request any, response any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/api/v1/annotators/"+url.PathEscape(annotator), body, response)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, response any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", config.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(cache.TransactionIDHeader, uuid.NewString())
		if c.timeout > 0 {
			deadline := time.Now().Add(c.timeout).UTC()
			req.Header.Set(cache.DeadlineHeader, deadline.Format(time.RFC3339Nano))
		}
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Problem)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
