package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/cryptox"
	"github.com/dmitrijs2005/drawersync/internal/netx"
	"github.com/dmitrijs2005/drawersync/internal/shared"
	"github.com/google/uuid"
)

// DefaultTimeout bounds each request when no other timeout is configured.
const DefaultTimeout = 5 * time.Second

type HTTPClient struct {
	baseURL  string
	token    string
	clientID string
	timeout  time.Duration
	http     *http.Client
	sealer   *cryptox.Sealer
}

var _ Remote = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

func WithToken(token string) Option {
	return func(c *HTTPClient) { c.token = token }
}

func WithClientID(id string) Option {
	return func(c *HTTPClient) { c.clientID = id }
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) {
		if h != nil {
			c.http = h
		}
	}
}

// WithSealer enables end-to-end encryption of values. A nil sealer is a
// no-op.
func WithSealer(s *cryptox.Sealer) Option {
	return func(c *HTTPClient) { c.sealer = s }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: uuid.NewString(),
		timeout:  DefaultTimeout,
		http:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) keyURL(key string) string {
	return c.baseURL + "/kv/" + url.PathEscape(key)
}

// do sends the request and maps transport failures. The caller owns the
// response body when err is nil.
func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.token)
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	req.Header.Set(common.ClientIDHeaderName, c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if netx.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %s %s: timed out after %s", common.ErrUnavailable, req.Method, req.URL.Path, c.timeout)
		}
		return nil, fmt.Errorf("%w: %s %s: %v", common.ErrUnavailable, req.Method, req.URL.Path, err)
	}
	return resp, nil
}

// mapStatus converts a non-2xx response into a sentinel-wrapped error.
func mapStatus(resp *http.Response) error {
	body := netx.ErrorBody(resp)
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, body)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, body)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrInvalidPayload, body)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", common.ErrUnavailable, resp.StatusCode, body)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
}

func (c *HTTPClient) Fetch(ctx context.Context, key string) (RemoteValue, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := netx.NewJSONRequest(ctx, http.MethodGet, c.keyURL(key), nil)
	if err != nil {
		return RemoteValue{}, false, err
	}

	resp, err := c.do(req)
	if err != nil {
		return RemoteValue{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return RemoteValue{}, true, nil
	}
	if resp.StatusCode != http.StatusOK {
		return RemoteValue{}, false, mapStatus(resp)
	}

	var item shared.Item
	if err := netx.DecodeJSON(resp, &item); err != nil {
		return RemoteValue{}, false, fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
	}

	value, err := c.open(key, item.Value)
	if err != nil {
		return RemoteValue{}, false, err
	}
	return RemoteValue{Value: value, UpdatedAt: item.UpdatedAt}, false, nil
}

func (c *HTTPClient) Put(ctx context.Context, key, value string, updatedAt int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.sealer != nil {
		sealed, err := c.sealer.Seal(value)
		if err != nil {
			return 0, err
		}
		value = sealed
	}

	body := shared.PutRequest{Value: value}
	if updatedAt > 0 {
		body.UpdatedAt = &updatedAt
	}

	req, err := netx.NewJSONRequest(ctx, http.MethodPut, c.keyURL(key), body)
	if err != nil {
		return 0, err
	}

	resp, err := c.do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, mapStatus(resp)
	}

	var out shared.PutResponse
	if err := netx.DecodeJSON(resp, &out); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
	}
	return out.UpdatedAt, nil
}

func (c *HTTPClient) List(ctx context.Context) ([]shared.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := netx.NewJSONRequest(ctx, http.MethodGet, c.baseURL+"/kv", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, mapStatus(resp)
	}

	var out shared.ListResponse
	if err := netx.DecodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
	}

	for i := range out.Items {
		v, err := c.open(out.Items[i].Key, out.Items[i].Value)
		if err != nil {
			return nil, err
		}
		out.Items[i].Value = v
	}
	return out.Items, nil
}

// Health calls GET /health. Any answer other than 200 counts as offline.
func (c *HTTPClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mapStatus(resp)
	}
	return nil
}

func (c *HTTPClient) open(key, value string) (string, error) {
	if c.sealer == nil {
		if cryptox.IsSealed(value) {
			return "", fmt.Errorf("%w: %s is encrypted and no passphrase is configured", common.ErrInvalidPayload, key)
		}
		return value, nil
	}
	v, err := c.sealer.Open(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrInvalidPayload, key, err)
	}
	return v, nil
}
