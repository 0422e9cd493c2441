package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/studio-interiors/site-server/pkg/circuitbreaker"
	"github.com/studio-interiors/site-server/pkg/errors"
	"github.com/studio-interiors/site-server/pkg/httpclient"
	"github.com/studio-interiors/site-server/pkg/logger"
	"github.com/studio-interiors/site-server/pkg/metrics"
	"github.com/studio-interiors/site-server/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	serviceName = "cms"

	// maxResponseBytes bounds how much of a CMS response is read
	maxResponseBytes = 10 << 20
)

// Client talks to the Payload-style REST API of the content service
type Client struct {
	baseURL    string
	httpClient httpclient.Client
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds every request made by the client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCircuitBreaker routes every request through cb
func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// NewClient creates a CMS client rooted at baseURL (e.g. https://cms.example.com/api)
func NewClient(baseURL string, httpClient httpclient.Client, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EndpointURL joins endpoint and query onto the API root
func (c *Client) EndpointURL(endpoint, rawQuery string) string {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

// GetRaw fetches endpoint with an already-encoded query string and returns
// the body of a 2xx response. Any other outcome is an error wrapping ErrUpstream.
func (c *Client) GetRaw(ctx context.Context, endpoint, rawQuery string) ([]byte, error) {
	operation := "get:" + strings.Trim(endpoint, "/")
	if circuitbreaker.IsCircuitOpen(c.breaker) {
		metrics.CMSRequestTotal.WithLabelValues(operation, "circuit_open").Inc()
	}
	return circuitbreaker.Execute(c.breaker, func() ([]byte, error) {
		return c.get(ctx, operation, c.EndpointURL(endpoint, rawQuery))
	})
}

// GetJSON fetches endpoint with query and decodes the body into out
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	body, err := c.GetRaw(ctx, endpoint, query.Encode())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, operation, target string) ([]byte, error) {
	start := time.Now()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := tracing.StartClientSpan(ctx, "cms."+operation,
		attribute.String("http.request.method", http.MethodGet),
		attribute.String("url.full", target))
	defer span.End()

	body, status, err := c.do(ctx, target)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		tracing.RecordError(span, err)
		metrics.CMSRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.CMSRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall(ctx, serviceName, operation, "error", duration,
			zap.String("url", target),
			zap.Int("status_code", status),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	metrics.CMSRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.CMSRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.Debug("CMS request completed",
		zap.String("operation", operation),
		zap.String("url", target),
		zap.Float64("duration", duration))

	return body, nil
}

func (c *Client) do(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build CMS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.UpstreamTransportError(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, errors.UpstreamTransportError(serviceName, err)
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, resp.StatusCode, errors.UpstreamStatusError(serviceName, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return body, resp.StatusCode, nil
}

// FindDocuments queries a collection and returns its docs
func (c *Client) FindDocuments(ctx context.Context, collection string, query url.Values) ([]Document, error) {
	var resp CollectionResponse
	if err := c.GetJSON(ctx, collection, query, &resp); err != nil {
		return nil, err
	}
	return resp.Docs, nil
}

// FindBySlug returns the first published document of collection whose slug
// equals slug, or nil when none matches.
func (c *Client) FindBySlug(ctx context.Context, collection, slug string) (*Document, error) {
	docs, err := c.FindDocuments(ctx, collection, SlugQuery(slug))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

// GetGlobal fetches a singleton document. When key is set and present in the
// response, the document nested under it is returned instead of the root.
func (c *Client) GetGlobal(ctx context.Context, endpoint, key string) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := c.GetJSON(ctx, endpoint, PublishedQuery(), &raw); err != nil {
		return nil, err
	}

	doc := &Document{}
	if key != "" {
		if nested, ok := raw[key]; ok {
			if err := json.Unmarshal(nested, doc); err != nil {
				return nil, fmt.Errorf("failed to decode %s.%s: %w", endpoint, key, err)
			}
			return doc, nil
		}
	}

	if err := doc.fromFields(raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}
	return doc, nil
}

// ListCollection returns up to limit published documents of collection
func (c *Client) ListCollection(ctx context.Context, collection string, limit int) ([]Document, error) {
	query := url.Values{}
	query.Set("depth", "0")
	query.Set("draft", "false")
	query.Set("limit", strconv.Itoa(limit))
	return c.FindDocuments(ctx, collection, query)
}

// PublishedQuery is the base query for page-time reads
func PublishedQuery() url.Values {
	query := url.Values{}
	query.Set("depth", "1")
	query.Set("draft", "false")
	return query
}

// SlugQuery filters a collection by slug equality
func SlugQuery(slug string) url.Values {
	query := PublishedQuery()
	query.Set("where[slug][equals]", slug)
	query.Set("limit", "1")
	return query
}
