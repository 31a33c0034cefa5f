package client

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
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/logging"
	"github.com/google/uuid"
)

// Config configures an HTTPClient.
type Config struct {
	// BaseURL is the API root including the /api prefix,
	// e.g. "https://nt-shopping-list.onrender.com/api".
	BaseURL string

	// Timeout bounds a single request. Zero leaves it to the transport.
	Timeout time.Duration

	// HTTPClient overrides the underlying client; Timeout is ignored then.
	HTTPClient *http.Client

	Logger  logging.Logger
	Metrics *Metrics
}

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logging.Logger
	metrics    *Metrics

	mu      sync.RWMutex
	session SessionHooks
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: base URL is required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("client: base URL %q must be http or https", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
		log:        log,
		metrics:    metrics,
	}, nil
}

// UseSession attaches the token source and 401 handler. Until it is called
// requests go out unauthenticated.
func (c *HTTPClient) UseSession(s SessionHooks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

func (c *HTTPClient) Metrics() *Metrics { return c.metrics }

func (c *HTTPClient) hooks() SessionHooks {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// request describes one call. route is the path template used as a metrics
// label, path the concrete escaped path.
type request struct {
	method string
	route  string
	path   string
	query  url.Values
	body   any
	out    any
}

func (c *HTTPClient) do(ctx context.Context, r request) error {
	requestURL := c.baseURL + r.path
	if len(r.query) > 0 {
		requestURL += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", r.method, r.route, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", r.method, r.route, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeader, requestID)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hooks := c.hooks()
	var token string
	if hooks != nil {
		token = hooks.Token()
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerValue(token))
		req.Header.Set(common.AuthTokenHeader, token)
	}

	log := c.log.With("request_id", requestID, "method", r.method, "route", r.route)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(r.method, r.route, "error", time.Since(start))
		log.Warn(ctx, "request failed", "error", err)
		return fmt.Errorf("%s %s: %w: %w", r.method, r.route, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.metrics.observe(r.method, r.route, strconv.Itoa(resp.StatusCode), time.Since(start))
	log.Debug(ctx, "request done", "status", resp.StatusCode, "duration", time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w: %w", r.method, r.route, ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     r.method,
			Path:       r.path,
			Message:    errorMessage(respBody),
		}
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			log.Warn(ctx, "session rejected by server")
			hooks.Unauthorized(ctx, token)
		}
		return apiErr
	}

	if r.out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, r.out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", r.method, r.route, err)
	}
	return nil
}
