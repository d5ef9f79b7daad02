package federation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/httpclient"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ResponseError `json:"errors,omitempty"`
}

type ResponseError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

func (e ResponseError) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

// Client talks to one subgraph. Every attempt runs under its own timeout and
// through the subgraph's circuit breaker; only transport failures and 5xx
// responses count against the breaker. A 4xx body is decoded like any other
// GraphQL result.
type Client struct {
	name       string
	url        string
	http       *httpclient.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

type ClientOptions struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

func CreateClient(name, url string, hc *httpclient.Client, breaker *gobreaker.CircuitBreaker[[]byte], opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 100 * time.Millisecond
	}

	return &Client{
		name:       name,
		url:        url,
		http:       hc,
		breaker:    breaker,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
	}
}

func (c *Client) Name() string { return c.name }

// Query runs a read. Transient failures are retried up to MaxRetries times
// with a linearly growing pause.
func (c *Client) Query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	return c.do(ctx, Request{Query: query, Variables: variables}, c.maxRetries, out)
}

// Mutate runs a write exactly once.
func (c *Client) Mutate(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	return c.do(ctx, Request{Query: query, Variables: variables}, 0, out)
}

const entitiesQuery = `query($representations: [_Any!]!) { _entities(representations: $representations) { %s } }`

// Entities resolves stubs against the subgraph in one request. selection is
// the inline fragment selecting the wanted fields, out receives the decoded
// _entities list in the order of reps.
func (c *Client) Entities(ctx context.Context, reps []Representation, selection string, out interface{}) error {
	raw := make([]interface{}, len(reps))
	for i, rep := range reps {
		raw[i] = rep.Map()
	}

	var data struct {
		Entities json.RawMessage `json:"_entities"`
	}
	err := c.Query(ctx, fmt.Sprintf(entitiesQuery, selection), map[string]interface{}{"representations": raw}, &data)
	if err != nil {
		return err
	}

	return json.Unmarshal(data.Entities, out)
}

func (c *Client) SDL(ctx context.Context) (string, error) {
	var data struct {
		Service Service `json:"_service"`
	}
	if err := c.Query(ctx, `{ _service { sdl } }`, nil, &data); err != nil {
		return "", err
	}
	return data.Service.SDL, nil
}

func (c *Client) do(ctx context.Context, req Request, retries int, out interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	var raw []byte
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &errs.DownstreamError{Service: c.name, Err: ctx.Err()}
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		raw, err = c.send(ctx, body)
		if err == nil || !retryable(ctx, err) {
			break
		}

		log.Ctx(ctx).Warn().Err(err).Str("component", "federation.Client").Str("service", c.name).
			Int("attempt", attempt+1).Int("max_attempts", retries+1).Msg("subgraph call failed")
	}
	if err != nil {
		subgraphRequests.WithLabelValues(c.name, "unavailable").Inc()
		return &errs.DownstreamError{Service: c.name, Err: err}
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		subgraphRequests.WithLabelValues(c.name, "invalid").Inc()
		return &errs.DownstreamError{Service: c.name, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if len(resp.Errors) > 0 {
		subgraphRequests.WithLabelValues(c.name, "error").Inc()
		first := resp.Errors[0]
		return &errs.RemoteError{Service: c.name, Message: first.Message, Code: first.Code()}
	}

	subgraphRequests.WithLabelValues(c.name, "ok").Inc()
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Data, out)
}

func (c *Client) send(ctx context.Context, body []byte) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		start := time.Now()
		defer func() {
			subgraphLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
		}()

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		status, respBody, err := c.http.SendRequest(callCtx, httpclient.HttpRequest{
			URL:    c.url,
			Method: http.MethodPost,
			Body:   body,
			Headers: map[string]string{
				"Content-Type": "application/json",
				"Accept":       "application/json",
			},
		})
		if err != nil {
			return nil, err
		}
		if status >= http.StatusInternalServerError {
			return nil, &statusError{status: status}
		}
		return respBody, nil
	})
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var status *statusError
	if errors.As(err, &status) {
		return status.status >= http.StatusInternalServerError
	}
	return true
}
