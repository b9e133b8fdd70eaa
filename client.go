package quercle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/quercle/quercle-go/metrics"
)

// Version is reported in the User-Agent header of every request.
const Version = "1.0.0"

const (
	// DefaultBaseURL is the fixed base host of the Quercle API.
	DefaultBaseURL = "https://api.quercle.ai"

	// EnvAPIKey names the environment variable consulted when no explicit
	// API key is configured.
	EnvAPIKey = "QUERCLE_API_KEY"

	// DefaultTimeout bounds a single request when Config.Timeout is zero.
	DefaultTimeout = 60 * time.Second

	apiPrefix = "/v1/"
)

// Config configures a Client. The zero value plus a QUERCLE_API_KEY
// environment variable is a working configuration.
type Config struct {
	// APIKey is the Quercle credential. Falls back to the QUERCLE_API_KEY
	// environment variable when empty.
	APIKey string

	// BaseURL overrides the API host, mainly for tests.
	BaseURL string

	// Timeout bounds each request including body read. Zero means
	// DefaultTimeout; a negative value disables the client-side bound.
	Timeout time.Duration

	// HTTPClient, when set, is used as-is and Timeout is ignored.
	HTTPClient *http.Client

	// Logger defaults to zap.NewNop().
	Logger *zap.Logger

	// Metrics, when set, records per-operation counters and latencies.
	Metrics *metrics.Collector

	// RequestsPerSecond enables a client-side outbound rate limit when
	// positive. Burst defaults to 1.
	RequestsPerSecond float64
	Burst             int
}

// Client issues calls to the five Quercle operations. All fields are fixed
// at construction; a Client is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Collector
	limiter    *rate.Limiter
	tracer     trace.Tracer
}

// NewClient resolves the credential and builds an immutable Client.
// Resolution order: explicit Config.APIKey, then QUERCLE_API_KEY; if neither
// is set the constructor fails with ErrConfiguration.
func NewClient(cfg Config) (*Client, error) {
	key, err := resolveAPIKey(cfg.APIKey)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		switch {
		case timeout == 0:
			timeout = DefaultTimeout
		case timeout < 0:
			timeout = 0 // caller explicitly asked for no bound
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		apiKey:     key,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		metrics:    cfg.Metrics,
		limiter:    limiter,
		tracer:     otel.Tracer("github.com/quercle/quercle-go"),
	}, nil
}

// resolveAPIKey applies the credential precedence exactly once, at
// construction. It is never re-read afterwards.
func resolveAPIKey(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key, nil
	}
	return "", configurationError("no API key: pass Config.APIKey or set %s", EnvAPIKey)
}

// Search returns an AI-synthesized answer with citations.
func (c *Client) Search(ctx context.Context, req SearchRequest) (string, error) {
	if err := validateRequired(OpSearch, "query", req.Query); err != nil {
		return "", err
	}
	return c.textOp(ctx, OpSearch, req)
}

// Fetch retrieves the URL, has the remote AI process it per req.Prompt and
// returns the output text.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) (string, error) {
	if err := validateURL(OpFetch, req.URL); err != nil {
		return "", err
	}
	if err := validateRequired(OpFetch, "prompt", req.Prompt); err != nil {
		return "", err
	}
	return c.textOp(ctx, OpFetch, req)
}

// RawSearch returns unsynthesized search results.
func (c *Client) RawSearch(ctx context.Context, req RawSearchRequest) (*Document, error) {
	if err := validateRequired(OpRawSearch, "query", req.Query); err != nil {
		return nil, err
	}
	if err := validateFormat(OpRawSearch, req.Format); err != nil {
		return nil, err
	}
	return c.documentOp(ctx, OpRawSearch, req, req.Format)
}

// RawFetch returns raw page content with no AI step.
func (c *Client) RawFetch(ctx context.Context, req RawFetchRequest) (*Document, error) {
	if err := validateURL(OpRawFetch, req.URL); err != nil {
		return nil, err
	}
	if err := validateFormat(OpRawFetch, req.Format); err != nil {
		return nil, err
	}
	return c.documentOp(ctx, OpRawFetch, req, req.Format)
}

// Extract returns the page chunks relevant to req.Query.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*Document, error) {
	if err := validateURL(OpExtract, req.URL); err != nil {
		return nil, err
	}
	if err := validateRequired(OpExtract, "query", req.Query); err != nil {
		return nil, err
	}
	if err := validateFormat(OpExtract, req.Format); err != nil {
		return nil, err
	}
	return c.documentOp(ctx, OpExtract, req, req.Format)
}

func (c *Client) textOp(ctx context.Context, op string, payload any) (string, error) {
	raw, err := c.post(ctx, op, payload)
	if err != nil {
		return "", err
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", responseFormatError(op, fmt.Errorf("expected text result: %w", err))
	}
	return text, nil
}

func (c *Client) documentOp(ctx context.Context, op string, payload any, f Format) (*Document, error) {
	raw, err := c.post(ctx, op, payload)
	if err != nil {
		return nil, err
	}
	return &Document{Format: f, Raw: raw}, nil
}

// envelope is the fixed response shape of every Quercle endpoint.
type envelope struct {
	Result json.RawMessage `json:"result"`
}

// post performs exactly one outbound request. No retries, no fallback.
func (c *Client) post(ctx context.Context, op string, payload any) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "quercle."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("quercle.operation", op)))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return nil, transportError(op, err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, validationError(op, "cannot encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+op, bytes.NewReader(body))
	if err != nil {
		return nil, transportError(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "quercle-go/"+Version)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Warn("request failed", zap.String("operation", op), zap.Error(err))
		if c.metrics != nil {
			c.metrics.ObserveRequest(op, 0, time.Since(start))
		}
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if c.metrics != nil {
		c.metrics.ObserveRequest(op, resp.StatusCode, elapsed)
	}
	if err != nil {
		span.RecordError(err)
		return nil, transportError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("endpoint returned error status",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode))
		apiErr := apiError(op, resp.StatusCode, string(data))
		span.RecordError(apiErr)
		return nil, apiErr
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		span.RecordError(err)
		return nil, responseFormatError(op, err)
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return nil, responseFormatError(op, fmt.Errorf("missing result field"))
	}

	c.logger.Debug("request completed",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed))
	return env.Result, nil
}
