package gateway

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

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxResponseBody = 1 << 20 // 1MB

// TokenSource yields the bearer token of the active session, empty when anonymous.
type TokenSource interface {
	Token() string
}

type Config struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HTTPClient       *http.Client
}

// Client talks to the food-ordering REST API. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	breaker *gobreaker.CircuitBreaker[*response]
	tracer  trace.Tracer
	log     logrus.FieldLogger
}

type response struct {
	status int
	body   []byte
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func New(cfg Config, tokens TokenSource, log logrus.FieldLogger) *Client {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        "food-api",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !countsAsFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		breaker: breaker,
		tracer:  otel.Tracer("github.com/fjod/go_cart/storefront/internal/gateway"),
		log:     log,
	}
}

// only transport failures and 5xx responses trip the breaker
func countsAsFailure(err error) bool {
	if errors.Is(err, domain.ErrNetwork) {
		return true
	}
	var se *domain.ServerError
	return errors.As(err, &se) && se.Status >= http.StatusInternalServerError
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	token, ok := ctx.Value(tokenKey{}).(string)
	if !ok && c.tokens != nil {
		token = c.tokens.Token()
	}
	if cl.auth && token == "" {
		return fmt.Errorf("%s: %w", cl.op, domain.ErrUnauthenticated)
	}

	ctx, span := c.tracer.Start(ctx, "gateway."+cl.op,
		trace.WithAttributes(attribute.String("http.method", cl.method), attribute.String("http.path", cl.path)))
	defer span.End()

	var payload []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: marshal request failed: %w", cl.op, err)
		}
		payload = b
	}

	resp, err := c.breaker.Execute(func() (*response, error) {
		return c.send(ctx, cl, token, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", cl.op, err)
	}

	if out == nil || resp.status == http.StatusNoContent || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%s: %w: %v", cl.op, domain.ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, cl call, token string, payload []byte) (*response, error) {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrNetwork, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.log.WithFields(logging.TraceFields(ctx)).WithFields(logrus.Fields{
			"op":         cl.op,
			"status":     res.StatusCode,
			"request_id": requestID,
		}).Debug("api returned non-success status")
		return nil, statusError(res.StatusCode, data)
	}
	return &response{status: res.StatusCode, body: data}, nil
}

func statusError(status int, body []byte) error {
	se := &domain.ServerError{Status: status}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		se.Message = eb.Message
		if se.Message == "" {
			se.Message = eb.Error
		}
	}
	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", domain.ErrUnauthenticated, se)
	}
	return se
}

func pathID(id domain.ID) string {
	return url.PathEscape(id.String())
}

type requestIDKey struct{}

// WithRequestID makes outgoing calls reuse id instead of generating one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

type tokenKey struct{}

// WithToken overrides the session token for calls made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}
