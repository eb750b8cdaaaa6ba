// Package api is the client for the remote products resource. Responses are
// JSend envelopes: a success is unwrapped into its payload, a fail or error
// becomes an *errors.APIError, and anything else is an *errors.TransportError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/productconsole/internal/domain"
	"github.com/utafrali/productconsole/internal/session"
	apperrors "github.com/utafrali/productconsole/pkg/errors"
	"github.com/utafrali/productconsole/pkg/httpclient"
	"github.com/utafrali/productconsole/pkg/jsend"
	"github.com/utafrali/productconsole/pkg/logger"
)

// CorrelationIDHeader is sent with every request.
const CorrelationIDHeader = "X-Correlation-ID"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Navigator sends an interactive user to the login location. It is only
// injected where such a user exists.
type Navigator interface {
	RedirectToLogin(ctx context.Context)
}

// Option configures a Client.
type Option func(*Client)

// WithNavigator sets the capability invoked after a 401.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout records the transport timeout so that timeouts are reported
// with it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Client talks to the products API. It is safe for concurrent use.
type Client struct {
	baseURL   string
	doer      httpclient.Doer
	sessions  session.Store
	navigator Navigator
	logger    *slog.Logger
	timeout   time.Duration
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, doer httpclient.Doer, sessions session.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}
	if doer == nil {
		return nil, errors.New("api client requires an HTTP doer")
	}
	if sessions == nil {
		sessions = session.NewMemory("")
	}

	c := &Client{
		baseURL:  strings.TrimRight(u.String(), "/"),
		doer:     doer,
		sessions: sessions,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListProducts returns every product.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if _, err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, apperrors.Wrap(err, "list products")
	}
	return products, nil
}

// GetProduct returns one product. The product is nil when the backend
// answered without content.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return c.product(ctx, http.MethodGet, productPath(id), nil, "get product")
}

// CreateProduct sends a validated create request.
func (c *Client) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	return c.product(ctx, http.MethodPost, "/products", req, "create product")
}

// UpdateProduct sends a validated partial update.
func (c *Client) UpdateProduct(ctx context.Context, id string, req domain.UpdateProductRequest) (*domain.Product, error) {
	return c.product(ctx, http.MethodPatch, productPath(id), req, "update product")
}

// UpdateStock sets the stock quantity of a product.
func (c *Client) UpdateStock(ctx context.Context, id string, s domain.StockUpdate) (*domain.Product, error) {
	return c.product(ctx, http.MethodPatch, productPath(id), s.Request(), "update stock")
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, productPath(id), nil, nil); err != nil {
		return apperrors.Wrap(err, "delete product")
	}
	return nil
}

func (c *Client) product(ctx context.Context, method, path string, body any, op string) (*domain.Product, error) {
	var p domain.Product
	ok, err := c.do(ctx, method, path, body, &p)
	if err != nil {
		return nil, apperrors.Wrap(err, op)
	}
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func productPath(id string) string {
	return "/products/" + url.PathEscape(id)
}

// do sends one request and decodes its envelope into out. It reports false
// when the response carried no content to decode.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (bool, error) {
	correlationID := uuid.New().String()
	ctx = logger.WithCorrelationID(ctx, correlationID)
	log := logger.WithContext(ctx, c.logger)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(CorrelationIDHeader, correlationID)

	token, err := c.sessions.Get(ctx)
	if err != nil {
		log.WarnContext(ctx, "read session credential", slog.String("error", err.Error()))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		log.DebugContext(ctx, "request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return false, c.transportFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, apperrors.NewTransportError("Network Error: "+err.Error(), resp.StatusCode, err)
	}

	log.DebugContext(ctx, "request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return c.decode(ctx, resp.StatusCode, raw, out)
}

// decode interprets one response. Every failure arriving with a 401 clears
// the session first.
func (c *Client) decode(ctx context.Context, status int, body []byte, out any) (bool, error) {
	decoded, err := interpret(status, body, out)
	if err != nil && status == http.StatusUnauthorized {
		c.unauthorized(ctx)
	}
	return decoded, err
}

// interpret applies the envelope rules. A 2xx response without content, or a
// success envelope without data, passes through undecoded.
func interpret(status int, body []byte, out any) (bool, error) {
	ok := status >= 200 && status < 300
	empty := len(bytes.TrimSpace(body)) == 0

	if ok && (status == http.StatusNoContent || empty) {
		return false, nil
	}
	if empty {
		return false, statusFailure(status, nil)
	}

	env, err := jsend.Decode(body)
	if err != nil {
		if ok {
			return false, apperrors.NewTransportError("invalid response envelope", status, err)
		}
		return false, statusFailure(status, err)
	}

	success, isSuccess := env.(*jsend.Success)
	switch {
	case !isSuccess:
		return false, apperrors.FromEnvelope(env, status)
	case !ok:
		return false, statusFailure(status, nil)
	case success.Empty():
		return false, nil
	}

	if err := success.Decode(out); err != nil {
		return false, apperrors.NewTransportError("invalid response payload", status, err)
	}
	return true, nil
}

func statusFailure(status int, cause error) error {
	return apperrors.NewTransportError(fmt.Sprintf("Request failed with status code %d", status), status, cause)
}

// unauthorized drops the cached credential and, when an interactive user is
// present, sends them to log in again.
func (c *Client) unauthorized(ctx context.Context) {
	if err := c.sessions.Clear(ctx); err != nil {
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "clear session credential", slog.String("error", err.Error()))
	}
	if c.navigator != nil {
		c.navigator.RedirectToLogin(ctx)
	}
}

// transportFailure converts an error that produced no response.
func (c *Client) transportFailure(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return apperrors.NewTransportError("Request canceled", 0, err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return apperrors.NewTransportError(fmt.Sprintf("timeout of %dms exceeded", c.timeout.Milliseconds()), 0, err)
	case httpclient.IsRejected(err):
		return apperrors.NewTransportError("Network Error: products API circuit breaker is open", 0, err)
	}

	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}
	return apperrors.NewTransportError("Network Error: "+cause.Error(), 0, err)
}
