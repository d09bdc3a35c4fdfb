package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danyQe/codedash/pkg/bus"
	"github.com/danyQe/codedash/pkg/logging"
	"github.com/danyQe/codedash/pkg/telemetry"
	"github.com/danyQe/codedash/pkg/util"
)

// RequestInterceptor transforms the outgoing request config. Interceptors
// run in registration order; each receives the previous one's output.
type RequestInterceptor func(RequestConfig) RequestConfig

// ResponseInterceptor transforms the call outcome. Interceptors run in
// registration order over the Result.
type ResponseInterceptor func(Result) Result

// Config holds client configuration.
type Config struct {
	// BaseURL is the control-plane address, e.g. "http://localhost:8000/api/v1".
	BaseURL string

	// Headers are added to every request.
	Headers map[string]string

	// HTTPClient overrides the transport. Defaults to a plain
	// http.Client with no pipeline-enforced timeout.
	HTTPClient *http.Client

	// Telemetry receives one entry per completed call. Required for
	// instrumentation; nil disables it.
	Telemetry *telemetry.Engine

	// Bus receives connectivity transition events. Optional.
	Bus *bus.Bus
}

// Options customizes a single request.
type Options struct {
	// Body is JSON-serialized into the request body.
	Body any

	// Params are appended to the path as query parameters.
	Params url.Values

	// Headers are merged over the client-level headers.
	Headers map[string]string

	// UserAction labels the triggering action for telemetry.
	UserAction string

	// Context carries call-site metadata for telemetry.
	Context map[string]any
}

// Client issues instrumented calls against the control-plane API.
type Client struct {
	baseURL    string
	headers    map[string]string
	http       *http.Client
	telemetry  *telemetry.Engine
	instanceID string

	mu               sync.Mutex
	reqInterceptors  []RequestInterceptor
	respInterceptors []ResponseInterceptor

	connectivity *Connectivity
	log          *slog.Logger
}

// New creates a client and installs the built-in response interceptors:
// the failure logger and the connectivity tracker.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		headers:    cfg.Headers,
		http:       httpClient,
		telemetry:  cfg.Telemetry,
		instanceID: uuid.NewString(),
		log:        logging.Nop(),
	}
	c.connectivity = NewConnectivity(cfg.Bus, c.log)

	c.UseResponse(c.logFailures)
	c.UseResponse(func(r Result) Result {
		c.connectivity.Observe(r)
		return r
	})
	return c
}

// SetLogger sets the operational logger for the client.
func (c *Client) SetLogger(log *slog.Logger) {
	if log == nil {
		log = logging.Nop()
	}
	c.mu.Lock()
	c.log = log
	c.mu.Unlock()
	c.connectivity.SetLogger(log)
}

// Connectivity returns the connectivity tracker.
func (c *Client) Connectivity() *Connectivity {
	return c.connectivity
}

// InstanceID returns the id sent with every request for call correlation.
func (c *Client) InstanceID() string {
	return c.instanceID
}

// UseRequest appends a request interceptor.
func (c *Client) UseRequest(fn RequestInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqInterceptors = append(c.reqInterceptors, fn)
}

// UseResponse appends a response interceptor.
func (c *Client) UseResponse(fn ResponseInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.respInterceptors = append(c.respInterceptors, fn)
}

// Get issues a GET with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, params url.Values) Result {
	return c.Request(ctx, http.MethodGet, path, &Options{Params: params})
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) Result {
	return c.Request(ctx, http.MethodPost, path, &Options{Body: body})
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) Result {
	return c.Request(ctx, http.MethodPut, path, &Options{Body: body})
}

// Delete issues a DELETE with optional query parameters.
func (c *Client) Delete(ctx context.Context, path string, params url.Values) Result {
	return c.Request(ctx, http.MethodDelete, path, &Options{Params: params})
}

// Request issues one call through the pipeline: builds the canonical
// config, runs request interceptors, dispatches, runs response
// interceptors, and records exactly one telemetry entry regardless of
// outcome.
func (c *Client) Request(ctx context.Context, method, path string, opts *Options) Result {
	if opts == nil {
		opts = &Options{}
	}

	cfg := RequestConfig{
		Method:     method,
		Path:       path,
		Query:      opts.Params,
		Headers:    c.buildHeaders(opts.Headers),
		Body:       opts.Body,
		UserAction: opts.UserAction,
		Context:    opts.Context,
	}
	cfg = c.applyRequestInterceptors(cfg)

	start := time.Now()
	result := c.dispatch(ctx, cfg)
	result.DurationMs = time.Since(start).Milliseconds()
	result.Route = cfg.Path
	result.Method = cfg.Method

	result = c.applyResponseInterceptors(result)

	c.record(cfg, result)
	return result
}

// buildHeaders merges per-request headers over the client defaults.
func (c *Client) buildHeaders(extra map[string]string) map[string]string {
	headers := map[string]string{
		"Accept":            "application/json",
		"X-Client-Instance": c.instanceID,
	}
	for k, v := range c.headers {
		headers[k] = v
	}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}

// dispatch performs the network call and normalizes the outcome.
func (c *Client) dispatch(ctx context.Context, cfg RequestConfig) Result {
	target := c.baseURL + cfg.Path
	if len(cfg.Query) > 0 {
		target += "?" + cfg.Query.Encode()
	}

	var bodyReader io.Reader
	if cfg.Body != nil {
		raw, err := json.Marshal(cfg.Body)
		if err != nil {
			return Result{Error: "failed to encode request body: " + err.Error(), Status: 0}
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, target, bodyReader)
	if err != nil {
		return Result{Error: "failed to build request: " + err.Error(), Status: 0}
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if cfg.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Error: err.Error(), Status: 0}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Error: "failed to read response: " + err.Error(), Status: resp.StatusCode}
	}

	result := Result{
		Status: resp.StatusCode,
		Raw:    raw,
	}
	var data any
	if len(raw) > 0 && json.Unmarshal(raw, &data) == nil {
		result.Data = data
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Success = true
	} else {
		result.Error = errorMessage(raw, http.StatusText(resp.StatusCode))
	}
	return result
}

// applyRequestInterceptors runs the request chain. A panicking interceptor
// is logged and skipped; the chain continues from the last good config.
func (c *Client) applyRequestInterceptors(cfg RequestConfig) RequestConfig {
	c.mu.Lock()
	chain := make([]RequestInterceptor, len(c.reqInterceptors))
	copy(chain, c.reqInterceptors)
	log := c.log
	c.mu.Unlock()

	for _, fn := range chain {
		cfg = runRequestInterceptor(log, fn, cfg)
	}
	return cfg
}

func runRequestInterceptor(log *slog.Logger, fn RequestInterceptor, cfg RequestConfig) (out RequestConfig) {
	out = cfg
	defer func() {
		if r := recover(); r != nil {
			log.Error("request interceptor panicked", "panic", r)
			out = cfg
		}
	}()
	return fn(cfg.clone())
}

// applyResponseInterceptors runs the response chain with the same fault
// isolation as the request chain.
func (c *Client) applyResponseInterceptors(result Result) Result {
	c.mu.Lock()
	chain := make([]ResponseInterceptor, len(c.respInterceptors))
	copy(chain, c.respInterceptors)
	log := c.log
	c.mu.Unlock()

	for _, fn := range chain {
		result = runResponseInterceptor(log, fn, result)
	}
	return result
}

func runResponseInterceptor(log *slog.Logger, fn ResponseInterceptor, result Result) (out Result) {
	out = result
	defer func() {
		if r := recover(); r != nil {
			log.Error("response interceptor panicked", "panic", r)
			out = result
		}
	}()
	return fn(result)
}

// logFailures is the built-in interceptor that logs failed outcomes.
func (c *Client) logFailures(r Result) Result {
	if !r.Success {
		c.log.Warn("request failed",
			"route", r.Route,
			"method", r.Method,
			"status", r.Status,
			"error", util.TruncateBody(r.Error, 0))
	}
	return r
}

// record hands the outcome to the telemetry engine.
func (c *Client) record(cfg RequestConfig, result Result) {
	if c.telemetry == nil {
		return
	}

	status := telemetry.StatusSuccess
	if !result.Success {
		status = telemetry.StatusError
	}
	c.telemetry.Log(telemetry.Call{
		Route:        cfg.Path,
		Method:       cfg.Method,
		Request:      cfg.Body,
		Response:     result.Data,
		DurationMs:   result.DurationMs,
		Status:       status,
		StatusCode:   result.Status,
		ErrorMessage: result.Error,
		UserAction:   cfg.UserAction,
		Context:      cfg.Context,
	})
}
