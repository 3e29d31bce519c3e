// Package client is the single point of HTTP egress to the storefront API.
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
	"sync"
	"time"

	"craft-storefront/internal/metrics"
	"craft-storefront/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	DefaultTimeout = 10 * time.Second

	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 8 << 20
)

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Storage holds the persisted session; the bearer token is read from it per request.
	Storage session.Storage
	// HTTPClient is optional; its Transport becomes the base transport.
	HTTPClient *http.Client
	// OnUnauthorized runs once for every 401 received on an authenticated request,
	// after the persisted session has been cleared.
	OnUnauthorized func()
	Logger         *logrus.Entry
	// Metrics receives per-call measurements. Nil reports to the process-wide
	// collectors in internal/metrics.
	Metrics Recorder
}

// Recorder is told about every finished call and every session invalidation.
type Recorder interface {
	ObserveRequest(resource, outcome string, d time.Duration)
	Unauthorized()
}

// Client exposes the API grouped by resource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	storage    session.Storage
	log        *logrus.Entry
	metrics    Recorder

	mu             sync.RWMutex
	onUnauthorized func()

	auth     *AuthAPI
	products *ProductsAPI
	cart     *CartAPI
	orders   *OrdersAPI
}

// New creates a storefront API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("client: BaseURL is required")
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("client: Storage is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := http.DefaultTransport
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		base = cfg.HTTPClient.Transport
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.ClientRecorder{}
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: base},
		},
		storage:        cfg.Storage,
		log:            logger.WithField("component", "client"),
		metrics:        recorder,
		onUnauthorized: cfg.OnUnauthorized,
	}
	c.auth = &AuthAPI{c: c}
	c.products = &ProductsAPI{c: c}
	c.cart = &CartAPI{c: c}
	c.orders = &OrdersAPI{c: c}
	return c, nil
}

// SetOnUnauthorized replaces the 401 hook. The composition root uses it when the
// stores that the hook talks to are built after the client.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) Auth() *AuthAPI         { return c.auth }
func (c *Client) Products() *ProductsAPI { return c.products }
func (c *Client) Cart() *CartAPI         { return c.cart }
func (c *Client) Orders() *OrdersAPI     { return c.orders }

// Storage returns the session storage the client reads its token from.
func (c *Client) Storage() session.Storage { return c.storage }

type tokenKey struct{}

// bearerTransport attaches the bearer token carried in the request context.
type bearerTransport struct {
	base http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, _ := req.Context().Value(tokenKey{}).(string)
	if tok == "" {
		return t.base.RoundTrip(req)
	}
	rt := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return rt.RoundTrip(req)
}

// do performs one JSON call. resource labels logs and metrics.
func (c *Client) do(ctx context.Context, resource, method, path string, query url.Values, in, out any) error {
	start := time.Now()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	token := session.Token(ctx, c.storage)
	req, err := http.NewRequestWithContext(context.WithValue(ctx, tokenKey{}, token), method, endpoint, body)
	if err != nil {
		return fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	log := c.log.WithFields(logrus.Fields{
		"resource":   resource,
		"method":     method,
		"path":       path,
		"request_id": reqID,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(resource, KindNetwork.String(), time.Since(start))
		log.WithError(err).Warn("request failed")
		return &APIError{Kind: KindNetwork, Message: MsgNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.ObserveRequest(resource, KindNetwork.String(), time.Since(start))
		return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Message: MsgNetwork, Err: err}
	}

	if resp.StatusCode >= 400 {
		apiErr := parseError(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			apiErr.sessionExpired = true
			c.invalidateSession(ctx, log)
		}
		c.metrics.ObserveRequest(resource, apiErr.Kind.String(), time.Since(start))
		log.WithFields(logrus.Fields{"status": resp.StatusCode, "kind": apiErr.Kind.String()}).Debug(apiErr.Message)
		return apiErr
	}

	c.metrics.ObserveRequest(resource, "ok", time.Since(start))
	log.WithField("status", resp.StatusCode).Debug("request completed")

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Kind: KindDecode, Status: resp.StatusCode, Message: MsgServer, Body: data, Err: err}
	}
	return nil
}

// invalidateSession is the global 401 side effect: wipe persisted session data and
// hand control to whoever owns navigation.
func (c *Client) invalidateSession(ctx context.Context, log *logrus.Entry) {
	// The caller's context may already be done; clearing must still happen.
	if err := session.Clear(context.WithoutCancel(ctx), c.storage); err != nil {
		log.WithError(err).Error("failed to clear session after 401")
	}
	c.metrics.Unauthorized()
	log.Warn("session rejected by API, signing out")

	c.mu.RLock()
	hook := c.onUnauthorized
	c.mu.RUnlock()
	if hook != nil {
		hook()
	}
}

func escape(id string) string {
	return url.PathEscape(id)
}
