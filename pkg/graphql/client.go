// Package graphql provides the HTTP client for the catalogue GraphQL API with
// request pacing, rate limit tracking, optional retries and error normalization.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Sternrassler/thoth-catalogue/pkg/ratelimit"
)

// Prometheus metrics for GraphQL client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogue_graphql_requests_total",
		Help: "Total GraphQL requests by operation and status",
	}, []string{"operation", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalogue_graphql_request_duration_seconds",
		Help:    "GraphQL request duration in seconds by operation",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogue_graphql_errors_total",
		Help: "Total GraphQL errors by kind",
	}, []string{"kind"})
)

// maxResponseBytes bounds the response body read into memory.
const maxResponseBytes = 32 << 20

// Request is a GraphQL operation.
type Request struct {
	Query         string `json:"query"`
	Variables     any    `json:"variables,omitempty"`
	OperationName string `json:"operationName,omitempty"`
}

// Response is the GraphQL response envelope.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorMessage  `json:"errors,omitempty"`
}

// Config holds the client configuration.
type Config struct {
	// Endpoint is the GraphQL URL, e.g. "https://api.thoth.pub/graphql".
	Endpoint string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration

	// RateLimit is the client-side pace in requests per second (0 = unlimited).
	RateLimit float64

	// Burst is the number of requests allowed at once when RateLimit is set.
	Burst int

	// Retry controls retries of transport and 5xx failures.
	// The default performs a single attempt.
	Retry RetryConfig

	// Tracker gates requests on the budget reported by the API (optional).
	Tracker *ratelimit.Tracker
}

// DefaultConfig returns the interactive configuration: no retry, 30s timeout.
func DefaultConfig(endpoint, userAgent string) Config {
	return Config{
		Endpoint:  endpoint,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		RateLimit: 10,
		Burst:     5,
		Retry:     NoRetry(),
	}
}

// Client executes GraphQL operations against one endpoint.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     Config
	logger     zerolog.Logger
}

// New creates a client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", cfg.Endpoint)
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry = NoRetry()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		config:     cfg,
		logger:     log.With().Str("component", "graphql-client").Logger(),
	}, nil
}

// Endpoint returns the configured GraphQL URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Do executes req and decodes the data member of the response into out.
// Every failure is returned as *Error.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	operation := req.OperationName
	if operation == "" {
		operation = "anonymous"
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return c.fail(operation, &Error{Kind: KindTransport, Err: err})
	}

	if c.config.Tracker != nil {
		allowed, err := c.config.Tracker.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Rate limit check failed")
		} else if !allowed {
			requestsTotal.WithLabelValues(operation, "rate_limited").Inc()
			return c.fail(operation, &Error{Kind: KindTransport, Err: ErrRateLimited})
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return c.fail(operation, &Error{Kind: KindDecode, Err: fmt.Errorf("encode request: %w", err)})
	}

	c.logger.Debug().
		Str("operation", operation).
		RawJSON("variables", variablesJSON(req.Variables)).
		Msg("Executing GraphQL request")

	var resp *Response
	var errClass ErrorClass

	err = retryWithBackoff(ctx, c.config.Retry, func() error {
		var attemptErr error
		resp, errClass, attemptErr = c.attempt(ctx, operation, body)
		return attemptErr
	}, func(error) ErrorClass {
		return errClass
	})
	if err != nil {
		return c.fail(operation, err)
	}

	if len(resp.Errors) > 0 {
		return c.fail(operation, &Error{Kind: KindGraphQL, StatusCode: http.StatusOK, Messages: messages(resp.Errors)})
	}

	if out != nil {
		if len(resp.Data) == 0 || string(resp.Data) == "null" {
			return c.fail(operation, &Error{Kind: KindDecode, Err: errors.New("response has no data")})
		}
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return c.fail(operation, &Error{Kind: KindDecode, Err: err})
		}
	}

	c.logger.Info().
		Str("operation", operation).
		Dur("duration", time.Since(startTime)).
		Msg("GraphQL request completed")

	return nil
}

// attempt performs one HTTP round trip.
func (c *Client) attempt(ctx context.Context, operation string, body []byte) (*Response, ErrorClass, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", &Error{Kind: KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.config.UserAgent)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("operation", operation).Msg("HTTP request failed")
		requestsTotal.WithLabelValues(operation, "network_error").Inc()
		return nil, ErrorClassNetwork, &Error{Kind: KindTransport, Err: err}
	}
	defer httpResp.Body.Close()

	if c.config.Tracker != nil {
		if err := c.config.Tracker.UpdateFromHeaders(ctx, httpResp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	requestsTotal.WithLabelValues(operation, strconv.Itoa(httpResp.StatusCode)).Inc()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, ErrorClassNetwork, &Error{Kind: KindTransport, StatusCode: httpResp.StatusCode, Err: err}
	}

	var envelope Response
	decodeErr := json.Unmarshal(raw, &envelope)

	if httpResp.StatusCode >= 400 {
		class := classifyStatus(httpResp.StatusCode)
		c.logger.Warn().
			Str("operation", operation).
			Int("status", httpResp.StatusCode).
			Str("error_class", string(class)).
			Msg("GraphQL request error")

		// The API reports validation and authorization failures as an error list.
		if decodeErr == nil && len(envelope.Errors) > 0 {
			return nil, ErrorClassClient, &Error{
				Kind:       KindGraphQL,
				StatusCode: httpResp.StatusCode,
				Messages:   messages(envelope.Errors),
			}
		}
		return nil, class, &Error{
			Kind:       KindTransport,
			StatusCode: httpResp.StatusCode,
			Err:        errors.New(httpResp.Status),
		}
	}

	if decodeErr != nil {
		return nil, "", &Error{Kind: KindDecode, StatusCode: httpResp.StatusCode, Err: decodeErr}
	}

	return &envelope, "", nil
}

// fail records err and returns it normalized.
func (c *Client) fail(operation string, err error) error {
	gqlErr := Normalize(err)
	errorsTotal.WithLabelValues(string(gqlErr.Kind)).Inc()

	event := c.logger.Warn()
	if gqlErr.Kind == KindTransport {
		event = c.logger.Error()
	}
	event.Err(err).
		Str("operation", operation).
		Str("kind", string(gqlErr.Kind)).
		Msg("GraphQL request failed")

	return gqlErr
}

// classifyStatus categorizes an HTTP status for retry decisions.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

func variablesJSON(v any) []byte {
	if v == nil {
		return []byte("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}
