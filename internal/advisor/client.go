package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"etf-advisor/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxErrorBody = 4096

// Health is the body of GET /health.
type Health struct {
	Status string `json:"status"`
}

// Client talks to the recommendation service. It holds no state besides its
// configuration: every call is a fresh request with no caching or retries.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	log     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport client.
// A nil client is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport default (none).
// The timeout is set on a copy, so a shared client is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.client
		hc.Timeout = d
		c.client = &hc
	}
}

// WithAPIKey sends key in the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log.With().Str("component", "advisor-client").Logger()
	}
}

func NewClient(baseURL string, tracer trace.Tracer, opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListModels returns the catalog in service order. An empty catalog is not an error.
func (c *Client) ListModels(ctx context.Context) ([]domain.LLMModel, error) {
	ctx, span := c.tracer.Start(ctx, "advisor-client.list-models")
	defer span.End()

	var models []domain.LLMModel
	err := c.do(ctx, http.MethodGet, "/models", nil, &models)
	if errors.Is(err, errEmptyBody) {
		err = nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list models failed")
		return nil, fmt.Errorf("list models: %w", err)
	}
	if models == nil {
		models = []domain.LLMModel{}
	}
	span.SetAttributes(attribute.Int("advisor.model_count", len(models)))
	return models, nil
}

// CheckHealth is a liveness probe; failures are returned, never retried.
func (c *Client) CheckHealth(ctx context.Context) (Health, error) {
	ctx, span := c.tracer.Start(ctx, "advisor-client.check-health")
	defer span.End()

	var health Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "health check failed")
		return Health{}, fmt.Errorf("check health: %w", err)
	}
	if health.Status == "" {
		err := &ServiceUnavailableError{StatusCode: http.StatusOK, Err: errors.New("health status missing")}
		span.RecordError(err)
		span.SetStatus(codes.Error, "health check failed")
		return Health{}, fmt.Errorf("check health: %w", err)
	}
	span.SetAttributes(attribute.String("advisor.health", health.Status))
	return health, nil
}

// RunAnalysis issues one analysis request. Re-issuing starts a new remote
// computation.
func (c *Client) RunAnalysis(ctx context.Context, req domain.AdvisorRequest) (domain.AdvisorResult, error) {
	ctx, span := c.tracer.Start(ctx, "advisor-client.run-analysis")
	defer span.End()
	span.SetAttributes(
		attribute.String("advisor.goal", string(req.Preferences.Goal)),
		attribute.String("advisor.investment_model", req.InvestmentModel),
		attribute.String("advisor.portfolio_model", req.PortfolioModel),
		attribute.String("advisor.analyst_model", req.AnalystModel),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return domain.AdvisorResult{}, fmt.Errorf("encode analysis request: %w", err)
	}

	var result domain.AdvisorResult
	if err := c.do(ctx, http.MethodPost, "/analyze", body, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		return domain.AdvisorResult{}, fmt.Errorf("run analysis: %w", err)
	}
	span.SetAttributes(attribute.Int("advisor.holding_count", len(result.Portfolio.Holdings)))
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return ctxErr
		}
		c.log.Warn().Err(err).Str("path", path).Dur("elapsed", elapsed).Msg("advisor request failed")
		return &ServiceUnavailableError{TimedOut: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("advisor request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyStatus(resp.StatusCode, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &ServiceUnavailableError{StatusCode: resp.StatusCode, Err: errEmptyBody}
		}
		return &ServiceUnavailableError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func classifyStatus(status int, body []byte) error {
	msg := errorMessage(body)
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return &ServiceUnavailableError{StatusCode: status, TimedOut: true, Err: bodyErr(msg)}
	case status == http.StatusTooManyRequests:
		return &ServiceUnavailableError{StatusCode: status, Err: bodyErr(msg)}
	case status >= 400 && status < 500:
		return &InvalidRequestError{StatusCode: status, Message: msg}
	default:
		return &ServiceUnavailableError{StatusCode: status, Err: bodyErr(msg)}
	}
}

// errorMessage prefers the {"error": "..."} envelope and falls back to the raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(body))
}

func bodyErr(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
