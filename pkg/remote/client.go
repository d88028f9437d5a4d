// Package remote is the client of the third-party biomedical concept annotation API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/getzep/nlp-annotator-api/config"
	"github.com/getzep/nlp-annotator-api/internal"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

var log = internal.ComponentLogger("remote")

const (
	apiVersion    = "2019-04-02"
	maxErrorBody  = 1024
	apiKeyUser    = "apikey"
	analyzePrefix = "/v1/analyze/"
)

// Client annotates texts through the provider's analyze endpoint. It is safe for
// concurrent use.
type Client struct {
	baseURL     string
	flowName    string
	apiKey      string
	maxAttempts int
	retryDelay  time.Duration
	entityNames []string
	httpClient  *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// NewClient creates a client for the configured provider. entityNames are the names the
// client may return, derived from the configured concepts.
func NewClient(cfg config.HealthAnnotatorConfig, entityNames []string, opts ...ClientOption) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	c := &Client{
		baseURL:     strings.TrimRight(cfg.APIURL, "/"),
		flowName:    cfg.FlowName,
		apiKey:      cfg.APIKey,
		maxAttempts: maxAttempts,
		retryDelay:  cfg.RetryDelay,
		entityNames: entityNames,
		httpClient: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnnotateEntities returns one entity map per text, in input order. Upstream failures
// degrade to empty maps and are never returned as errors.
func (c *Client) AnnotateEntities(
	ctx context.Context,
	texts []string,
	names models.Names,
) []models.EntityMap {
	desired := names.Resolve(c.entityNames)
	if len(desired) == 0 {
		return emptyResults(len(texts))
	}

	results := make([]models.EntityMap, 0, len(texts))
	for i, chunk := range chunkBySize(texts) {
		results = append(results, c.annotateChunk(ctx, i, chunk, desired)...)
	}
	return results
}

// annotateChunk sends the non-empty texts of a chunk and scatters the results back to
// their positions. Empty texts get empty maps.
func (c *Client) annotateChunk(
	ctx context.Context,
	chunkIndex int,
	chunk []string,
	desired []string,
) []models.EntityMap {
	results := emptyResults(len(chunk))

	var indexes []int
	var payload []unstructuredText
	for i, text := range chunk {
		if text == "" {
			continue
		}
		indexes = append(indexes, i)
		payload = append(payload, unstructuredText{Text: text})
	}
	if len(payload) == 0 {
		log.WithField("chunk", chunkIndex).Debug("no non-empty texts in chunk, skipping the API call")
		return results
	}

	response, err := c.analyzeWithRetry(ctx, chunkIndex, payload)
	if err != nil {
		log.WithFields(logrus.Fields{
			"chunk":    chunkIndex,
			"attempts": c.maxAttempts,
		}).WithError(err).Error("annotate endpoint did not produce valid data")
		return results
	}

	annotations := reconcile(response.Unstructured, len(payload))
	for i, index := range indexes {
		results[index] = toEntityMap(annotations[i], desired)
	}
	return results
}

// reconcile truncates or pads the provider results to the expected count.
func reconcile(annotations []unstructuredResult, expected int) []unstructuredResult {
	if len(annotations) == expected {
		return annotations
	}
	log.WithFields(logrus.Fields{
		"received": len(annotations),
		"expected": expected,
	}).Warn("unexpected number of results from the API, filling or truncating to match")

	if len(annotations) > expected {
		return annotations[:expected]
	}
	padded := make([]unstructuredResult, expected)
	copy(padded, annotations)
	return padded
}

func (c *Client) analyzeWithRetry(
	ctx context.Context,
	chunkIndex int,
	payload []unstructuredText,
) (*analyzeResponse, error) {
	policy := retrypolicy.Builder[*analyzeResponse]().
		HandleIf(func(_ *analyzeResponse, err error) bool {
			return err != nil && ctx.Err() == nil
		}).
		WithMaxAttempts(c.maxAttempts).
		WithDelay(c.retryDelay).
		OnRetry(func(e failsafe.ExecutionEvent[*analyzeResponse]) {
			log.WithFields(logrus.Fields{
				"chunk":   chunkIndex,
				"attempt": e.Attempts(),
			}).WithError(e.LastError()).Warn("annotate request failed, retrying")
		}).
		Build()

	attempt := 0
	return failsafe.NewExecutor[*analyzeResponse](policy).
		WithContext(ctx).
		Get(func() (*analyzeResponse, error) {
			attempt++
			return c.analyze(ctx, chunkIndex, attempt, payload)
		})
}

// analyze performs a single call of the analyze endpoint.
func (c *Client) analyze(
	ctx context.Context,
	chunkIndex int,
	attempt int,
	payload []unstructuredText,
) (*analyzeResponse, error) {
	endpoint := c.baseURL + analyzePrefix + url.PathEscape(c.flowName)
	log.WithFields(logrus.Fields{
		"chunk":   chunkIndex,
		"attempt": attempt,
		"url":     endpoint,
		"texts":   len(payload),
	}).Debug("calling annotate endpoint")

	body, err := json.Marshal(analyzeRequest{Unstructured: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	query := url.Values{}
	query.Set("version", apiVersion)
	query.Set("return_analyzed_text", "false")
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", config.UserAgent())
	req.SetBasicAuth(apiKeyUser, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("annotate endpoint did not produce valid JSON: %w", err)
	}
	if decoded.Unstructured == nil {
		log.WithField("chunk", chunkIndex).Debug("no 'unstructured' object in the response")
	}
	return &decoded, nil
}

// StatusError is returned for non-2xx responses of the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("annotate endpoint failed with status %d: %s", e.StatusCode, e.Body)
}

// IsStatusError reports whether err is a provider status error.
func IsStatusError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

func emptyResults(n int) []models.EntityMap {
	results := make([]models.EntityMap, n)
	for i := range results {
		results[i] = models.EntityMap{}
	}
	return results
}
