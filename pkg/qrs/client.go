// Package qrs is a client for the Qlik Sense Repository Service API.
//
// Every request is authenticated with a client certificate over mutual TLS
// and carries the per-client XRF key both as the xrfkey query parameter and
// the X-Qlik-XrfKey header, together with an X-Qlik-User identity header.
//
// The client never retries. Callers decide what a failure means.
package qrs

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	basePath     = "/qrs/"
	xrfKeyLength = 16
	xrfAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	HeaderXrfKey = "X-Qlik-XrfKey"
	HeaderUser   = "X-Qlik-User"

	DefaultTimeout = 30 * time.Second
)

// Entity is a raw repository entity. Unknown fields survive a GET/PUT cycle.
type Entity map[string]any

type Config struct {
	ServerURL     string
	CertPath      string
	KeyPath       string
	RootCertPath  string // empty disables server certificate verification
	UserDirectory string
	UserID        string
	Timeout       time.Duration
}

// RequestObserver is notified after every remote call. Status is 0 when the
// request never produced a response.
type RequestObserver interface {
	ObserveRequest(method, entityType string, status int, elapsed time.Duration)
}

type Option func(*Client)

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithObserver(o RequestObserver) Option {
	return func(c *Client) { c.observer = o }
}

type Client struct {
	baseURL    string
	xrfKey     string
	userHeader string
	http       *http.Client
	now        func() time.Time
	logger     *zap.Logger
	observer   RequestObserver
	insecure   bool
}

// NewClient loads the client certificate and prepares a client bound to one
// server. A fresh XRF key is generated for the lifetime of the client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server url is required")
	}
	u, err := url.Parse(cfg.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", cfg.ServerURL)
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertPath, cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("loading client certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	insecure := cfg.RootCertPath == ""
	if insecure {
		tlsConfig.InsecureSkipVerify = true
	} else {
		pem, err := os.ReadFile(cfg.RootCertPath)
		if err != nil {
			return nil, fmt.Errorf("reading root certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.RootCertPath)
		}
		tlsConfig.RootCAs = pool
	}

	xrf, err := generateXrfKey()
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.ServerURL, "/"),
		xrfKey:     xrf,
		userHeader: fmt.Sprintf("UserDirectory=%s;UserId=%s", cfg.UserDirectory, cfg.UserID),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{TLSClientConfig: tlsConfig, Proxy: http.ProxyFromEnvironment},
		},
		now:      time.Now,
		logger:   zap.NewNop(),
		insecure: insecure,
	}
	for _, opt := range opts {
		opt(c)
	}

	if insecure {
		c.logger.Warn("server certificate verification disabled, no root certificate configured",
			zap.String("server_url", c.baseURL))
	}

	return c, nil
}

// XrfKey returns the key sent with every request.
func (c *Client) XrfKey() string {
	return c.xrfKey
}

// Insecure reports whether server certificates are accepted unverified.
func (c *Client) Insecure() bool {
	return c.insecure
}

func generateXrfKey() (string, error) {
	limit := big.NewInt(int64(len(xrfAlphabet)))
	b := make([]byte, xrfKeyLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generating xrf key: %w", err)
		}
		b[i] = xrfAlphabet[n.Int64()]
	}
	return string(b), nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("xrfkey", c.xrfKey)
	return c.baseURL + basePath + path + "?" + query.Encode()
}

// do performs one request and decodes a JSON response into out when non-nil.
// A 404 is reported as *APIError; callers that treat absence as a value
// check for it.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Method: method, Path: path, Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderXrfKey, c.xrfKey)
	req.Header.Set(HeaderUser, c.userHeader)

	start := time.Now()
	resp, err := c.http.Do(req)
	entityType := strings.SplitN(path, "/", 2)[0]
	if err != nil {
		c.observe(method, entityType, 0, time.Since(start))
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	c.observe(method, entityType, resp.StatusCode, time.Since(start))

	c.logger.Debug("qrs request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	// keep numeric fields exact so a whole-entity PUT sends back what it read
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func (c *Client) observe(method, entityType string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, entityType, status, elapsed)
	}
}

// ListAll returns every entity of a type from the bulk /full endpoint.
// The service does not paginate. filter is an optional QRS filter expression.
func (c *Client) ListAll(ctx context.Context, entityType, filter string) ([]Entity, error) {
	var query url.Values
	if filter != "" {
		query = url.Values{"filter": []string{filter}}
	}
	var out []Entity
	if err := c.do(ctx, http.MethodGet, entityType+"/full", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOne fetches a single entity. A 404 yields a *NotFoundError.
func (c *Client) GetOne(ctx context.Context, entityType, id string) (Entity, error) {
	var out Entity
	err := c.do(ctx, http.MethodGet, entityType+"/"+url.PathEscape(id), nil, nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{EntityType: entityType, ID: id}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put replaces an entity with body.
func (c *Client) Put(ctx context.Context, entityType, id string, body Entity) error {
	return c.do(ctx, http.MethodPut, entityType+"/"+url.PathEscape(id), nil, body, nil)
}

// About returns the service self description.
func (c *Client) About(ctx context.Context) (Entity, error) {
	var out Entity
	if err := c.do(ctx, http.MethodGet, "about", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TestConnection probes /about and reports only whether it succeeded.
func (c *Client) TestConnection(ctx context.Context) bool {
	if _, err := c.About(ctx); err != nil {
		c.logger.Info("qrs connection test failed", zap.String("server_url", c.baseURL), zap.Error(err))
		return false
	}
	return true
}
